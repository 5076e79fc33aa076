// Package awsconfig loads the shared AWS configuration used by the S3 sink and the SQS publisher.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"go.uber.org/zap"
)

// localAccessKey is accepted by MinIO, LocalStack and ElasticMQ
const localAccessKey = "dummy"

// Load resolves the AWS configuration for region. A non-empty endpoint marks a local
// emulator and switches to static credentials; callers still set BaseEndpoint on their client.
func Load(ctx context.Context, region, endpoint string, log *zap.Logger) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if endpoint != "" {
		log.Info("Using local AWS endpoint", zap.String("endpoint", endpoint))
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(localAccessKey, localAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
