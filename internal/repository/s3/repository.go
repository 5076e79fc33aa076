package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"
	"go.uber.org/zap"

	envConfig "github.com/LeoulGirma/EventAnalytics-100M/internal/config"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/repository"
)

const (
	contentType     = "application/x-ndjson"
	contentEncoding = "snappy"
)

// batchKeyPattern extracts the event count from keys written by objectKey
var batchKeyPattern = regexp.MustCompile(`/batch-\d+-n(\d+)\.ndjson\.snappy$`)

// record is the NDJSON line layout, one field per domain.EventColumns entry
type record struct {
	Time       string          `json:"time"`
	UserID     string          `json:"user_id"`
	SessionID  string          `json:"session_id"`
	EventType  string          `json:"event_type"`
	EventData  json.RawMessage `json:"event_data"`
	PageURL    string          `json:"page_url"`
	Referrer   *string         `json:"referrer"`
	DeviceType string          `json:"device_type"`
	Browser    string          `json:"browser"`
	OS         string          `json:"os"`
	Country    string          `json:"country"`
	City       string          `json:"city"`
	IPAddress  string          `json:"ip_address"`
}

// Repository archives each batch as one snappy-compressed NDJSON object.
// A PUT is atomic, so a batch is either fully visible or absent.
type Repository struct {
	api    ObjectAPI
	bucket string
	prefix string
	region string
	runID  string
	seq    int
	buf    bytes.Buffer
	log    *zap.Logger
}

// NewRepository creates an archive sink writing under <prefix>/<runID>/
func NewRepository(api ObjectAPI, cfg envConfig.S3, runID string, log *zap.Logger) *Repository {
	return &Repository{
		api:    api,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		region: cfg.Region,
		runID:  runID,
		log:    log,
	}
}

// InitSchema makes sure the bucket exists
func (r *Repository) InitSchema(ctx context.Context) error {
	_, err := r.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	if err == nil {
		r.log.Info("S3 bucket ready", zap.String("bucket", r.bucket))
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(r.bucket)}
	if r.region != "" && r.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(r.region),
		}
	}
	if _, err := r.api.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}

	r.log.Info("S3 bucket created", zap.String("bucket", r.bucket), zap.String("region", r.region))
	return nil
}

// InsertBatch uploads the batch as a single object
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	r.buf.Reset()
	enc := json.NewEncoder(&r.buf)
	for _, e := range events {
		rec, err := toRecord(e)
		if err != nil {
			return 0, err
		}
		if err := enc.Encode(rec); err != nil {
			return 0, fmt.Errorf("failed to encode event: %w", err)
		}
	}

	body := snappy.Encode(nil, r.buf.Bytes())
	key := r.objectKey(r.seq+1, len(events))

	_, err := r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(r.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(body),
		ContentLength:   aws.Int64(int64(len(body))),
		ContentType:     aws.String(contentType),
		ContentEncoding: aws.String(contentEncoding),
		Metadata: map[string]string{
			"event-count": strconv.Itoa(len(events)),
			"run-id":      r.runID,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put object %s: %w", key, err)
	}
	r.seq++

	r.log.Debug("Batch archived",
		zap.String("key", key),
		zap.Int("events", len(events)),
		zap.Int("compressed_bytes", len(body)))

	return len(events), nil
}

// Stats sums event counts and object sizes of every archived batch under the prefix
func (r *Repository) Stats(ctx context.Context) (*repository.Stats, error) {
	var stats repository.Stats

	paginator := s3.NewListObjectsV2Paginator(r.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix + "/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in %s: %w", r.bucket, err)
		}
		for _, obj := range page.Contents {
			match := batchKeyPattern.FindStringSubmatch(aws.ToString(obj.Key))
			if match == nil {
				continue
			}
			n, err := strconv.ParseInt(match[1], 10, 64)
			if err != nil {
				continue
			}
			stats.EventCount += n
			stats.StorageBytes += aws.ToInt64(obj.Size)
		}
	}

	return &stats, nil
}

// Analyze is a no-op: object storage keeps no planner statistics
func (r *Repository) Analyze(ctx context.Context) error {
	return nil
}

// Ping checks that the bucket is reachable
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)}); err != nil {
		return fmt.Errorf("failed to reach bucket %s: %w", r.bucket, err)
	}
	return nil
}

// Close is a no-op for the S3 sink
func (r *Repository) Close() error {
	return nil
}

func (r *Repository) objectKey(seq, count int) string {
	return path.Join(r.prefix, r.runID, fmt.Sprintf("batch-%06d-n%d.ndjson.snappy", seq, count))
}

func toRecord(e *domain.Event) (record, error) {
	data, err := domain.PayloadJSON(e.Payload)
	if err != nil {
		return record{}, fmt.Errorf("failed to encode %s payload: %w", e.EventType, err)
	}

	var referrer *string
	if e.HasReferrer() {
		ref := e.Referrer
		referrer = &ref
	}

	return record{
		Time:       e.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UserID:     e.UserID,
		SessionID:  e.SessionID,
		EventType:  string(e.EventType),
		EventData:  json.RawMessage(data),
		PageURL:    e.PageURL,
		Referrer:   referrer,
		DeviceType: e.DeviceType,
		Browser:    e.Browser,
		OS:         e.OS,
		Country:    e.Country,
		City:       e.City,
		IPAddress:  e.IPAddress,
	}, nil
}
