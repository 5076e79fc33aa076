package s3

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	envConfig "github.com/LeoulGirma/EventAnalytics-100M/internal/config"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/domain"
)

// MockObjectAPI is a mock implementation of ObjectAPI
type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

func (m *MockObjectAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CreateBucketOutput), args.Error(1)
}

func (m *MockObjectAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func testConfig() envConfig.S3 {
	return envConfig.S3{Bucket: "analytics-events", Prefix: "events", Region: "eu-west-1"}
}

func testEvents() []*domain.Event {
	ts := time.Date(2024, 5, 6, 14, 0, 0, 0, time.UTC)
	return []*domain.Event{
		{
			Time: ts, UserID: "u1", SessionID: "s1", EventType: domain.EventDownload,
			Payload: domain.DownloadPayload{FileName: "report.pdf", SizeBytes: 2048},
			PageURL: "https://shop.example.com/docs", Referrer: "https://www.bing.com/",
			DeviceType: "desktop", Browser: "Firefox", OS: "Linux", Country: "DE", City: "Berlin", IPAddress: "10.1.1.1",
		},
		{
			Time: ts.Add(time.Second), UserID: "u1", SessionID: "s1", EventType: domain.EventScroll,
			Payload: domain.EmptyPayload{}, PageURL: "https://shop.example.com/docs",
			DeviceType: "desktop", Browser: "Firefox", OS: "Linux", Country: "DE", City: "Berlin", IPAddress: "10.1.1.1",
		},
	}
}

func decodeBody(t *testing.T, body io.Reader) []map[string]interface{} {
	t.Helper()

	compressed, err := io.ReadAll(body)
	require.NoError(t, err)
	raw, err := snappy.Decode(nil, compressed)
	require.NoError(t, err)

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestRepository_InsertBatch(t *testing.T) {
	api := new(MockObjectAPI)
	repo := NewRepository(api, testConfig(), "run-1", zap.NewNop())

	var puts []*s3.PutObjectInput
	api.On("PutObject", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { puts = append(puts, args.Get(1).(*s3.PutObjectInput)) }).
		Return(&s3.PutObjectOutput{}, nil)

	n, err := repo.InsertBatch(context.Background(), testEvents())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.InsertBatch(context.Background(), testEvents()[:1])
	require.NoError(t, err)

	require.Len(t, puts, 2)
	assert.Equal(t, "events/run-1/batch-000001-n2.ndjson.snappy", aws.ToString(puts[0].Key))
	assert.Equal(t, "events/run-1/batch-000002-n1.ndjson.snappy", aws.ToString(puts[1].Key))
	assert.Equal(t, "2", puts[0].Metadata["event-count"])

	lines := decodeBody(t, puts[0].Body)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], len(domain.EventColumns))
	for _, column := range domain.EventColumns {
		assert.Contains(t, lines[0], column)
	}
	assert.Equal(t, "download", lines[0]["event_type"])
	assert.Equal(t, "report.pdf", lines[0]["event_data"].(map[string]interface{})["file_name"])
	assert.Nil(t, lines[1]["referrer"])
	assert.Empty(t, lines[1]["event_data"])
}

func TestRepository_InsertBatch_PutFails(t *testing.T) {
	api := new(MockObjectAPI)
	repo := NewRepository(api, testConfig(), "run-1", zap.NewNop())

	putErr := errors.New("slow down")
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, putErr).Once()
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Key) == "events/run-1/batch-000001-n2.ndjson.snappy"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	n, err := repo.InsertBatch(context.Background(), testEvents())
	assert.ErrorIs(t, err, putErr)
	assert.Zero(t, n)

	// a failed batch does not consume a sequence number
	n, err = repo.InsertBatch(context.Background(), testEvents())
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	api.AssertExpectations(t)
}

func TestRepository_Stats(t *testing.T) {
	api := new(MockObjectAPI)
	repo := NewRepository(api, testConfig(), "run-2", zap.NewNop())

	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("events/run-1/batch-000001-n50000.ndjson.snappy"), Size: aws.Int64(1000)},
			{Key: aws.String("events/run-1/_manifest.json"), Size: aws.Int64(99)},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("page-2"),
	}, nil).Once()
	api.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "page-2"
	})).Return(&s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("events/run-2/batch-000001-n1234.ndjson.snappy"), Size: aws.Int64(24)},
		},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(51234), stats.EventCount)
	assert.Equal(t, int64(1024), stats.StorageBytes)
	api.AssertExpectations(t)
}

func TestRepository_InitSchema(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		api := new(MockObjectAPI)
		repo := NewRepository(api, testConfig(), "run-1", zap.NewNop())
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)

		assert.NoError(t, repo.InitSchema(context.Background()))
		api.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("missing bucket is created in region", func(t *testing.T) {
		api := new(MockObjectAPI)
		repo := NewRepository(api, testConfig(), "run-1", zap.NewNop())
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
		api.On("CreateBucket", mock.Anything, mock.MatchedBy(func(in *s3.CreateBucketInput) bool {
			return in.CreateBucketConfiguration != nil &&
				in.CreateBucketConfiguration.LocationConstraint == types.BucketLocationConstraint("eu-west-1")
		})).Return(&s3.CreateBucketOutput{}, nil)

		assert.NoError(t, repo.InitSchema(context.Background()))
		api.AssertExpectations(t)
	})

	t.Run("access denied is not treated as missing", func(t *testing.T) {
		api := new(MockObjectAPI)
		repo := NewRepository(api, testConfig(), "run-1", zap.NewNop())
		api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, errors.New("forbidden"))

		assert.Error(t, repo.InitSchema(context.Background()))
		api.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})
}

func TestRepository_Ping(t *testing.T) {
	api := new(MockObjectAPI)
	repo := NewRepository(api, testConfig(), "run-1", zap.NewNop())
	api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, errors.New("no route to host"))

	assert.Error(t, repo.Ping(context.Background()))
	assert.NoError(t, repo.Analyze(context.Background()))
	assert.NoError(t, repo.Close())
}
