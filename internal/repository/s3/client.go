package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/awsconfig"
	envConfig "github.com/LeoulGirma/EventAnalytics-100M/internal/config"
)

// ObjectAPI is the subset of the S3 client the archive sink uses
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	s3.ListObjectsV2APIClient
}

// NewClient creates an S3 client. A configured endpoint (MinIO, LocalStack) implies
// path-style addressing.
func NewClient(ctx context.Context, s3Config envConfig.S3, log *zap.Logger) (*s3.Client, error) {
	cfg, err := awsconfig.Load(ctx, s3Config.Region, s3Config.Endpoint, log)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s3Config.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Config.Endpoint)
			o.UsePathStyle = true
		}
	})

	log.Info("S3 client created",
		zap.String("region", s3Config.Region),
		zap.String("bucket", s3Config.Bucket))

	return client, nil
}
