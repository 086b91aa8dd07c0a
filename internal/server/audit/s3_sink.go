package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/passvault/internal/server/config"
)

// putObjectAPI is the slice of *s3.Client the sink needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// S3Sink stores every event as its own JSON object in an S3-compatible
// bucket (MinIO in development).
type S3Sink struct {
	client putObjectAPI
	bucket string
}

// NewS3Sink builds a client from the S3 settings in cfg using static
// credentials and a custom base endpoint.
func NewS3Sink(ctx context.Context, cfg *config.Config) (*S3Sink, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Sink(client, cfg.S3Bucket), nil
}

func newS3Sink(client putObjectAPI, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket}
}

// ObjectKey is audit/<yyyy>/<mm>/<dd>/<event id>.json.
func ObjectKey(e Event) string {
	t := e.Timestamp.UTC()
	return fmt.Sprintf("audit/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), e.ID)
}

func (s *S3Sink) Record(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to serialize audit event: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ObjectKey(e)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put audit object: %w", err)
	}
	return nil
}

func (s *S3Sink) Close() error { return nil }
