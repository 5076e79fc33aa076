package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/LeoulGirma/EventAnalytics-100M/internal/awsconfig"
	envConfig "github.com/LeoulGirma/EventAnalytics-100M/internal/config"
	"github.com/LeoulGirma/EventAnalytics-100M/internal/dto"
)

// SendMessageAPI is the subset of the SQS client used for publishing
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Client represents an SQS client
type Client struct {
	client SendMessageAPI
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient creates an SQS publisher, pointing at ElasticMQ when an endpoint is configured
func NewClient(ctx context.Context, sqsConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	cfg, err := awsconfig.Load(ctx, sqsConfig.Region, sqsConfig.Endpoint, log)
	if err != nil {
		return nil, err
	}

	api := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if sqsConfig.Endpoint != "" {
			o.BaseEndpoint = aws.String(sqsConfig.Endpoint)
		}
	})

	log.Info("SQS client created",
		zap.String("region", sqsConfig.Region),
		zap.String("queue_url", sqsConfig.QueueURL))

	return NewClientWithAPI(api, sqsConfig, log), nil
}

// NewClientWithAPI wraps an existing SQS API implementation
func NewClientWithAPI(api SendMessageAPI, sqsConfig envConfig.SQS, log *zap.Logger) *Client {
	return &Client{
		client: api,
		config: sqsConfig,
		log:    log,
	}
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.config.QueueURL
}

// PublishRunSummary publishes a finished run to SQS
func (c *Client) PublishRunSummary(ctx context.Context, summary *dto.RunSummary) error {
	bodyJSON, err := json.Marshal(summary)
	if err != nil {
		c.log.Error("Failed to marshal run summary",
			zap.String("run_id", summary.RunID),
			zap.Error(err))
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.config.QueueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Sink": {
				DataType:    aws.String("String"),
				StringValue: aws.String(summary.Sink),
			},
			"Status": {
				DataType:    aws.String("String"),
				StringValue: aws.String(summary.Status),
			},
			"Transferred": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.FormatInt(summary.Transferred, 10)),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send message to SQS",
			zap.String("run_id", summary.RunID),
			zap.Error(err))
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Info("Run summary published to SQS",
		zap.String("run_id", summary.RunID),
		zap.String("status", summary.Status))

	return nil
}
