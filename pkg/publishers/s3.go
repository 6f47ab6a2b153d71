package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client defines the minimal subset of the S3 client used by s3Publisher.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Publisher archives each event as a JSON object in a bucket.
type s3Publisher struct {
	id     string
	typ    string
	bucket string
	prefix string
	client s3Client
	log    Logger
}

func newS3Publisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.S3 == nil {
		return nil, fmt.Errorf("publisher %q missing s3 configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.S3.Region, cfg.S3.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := cfg.S3.Endpoint
	pathStyle := cfg.S3.PathStyle
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
	})

	return &s3Publisher{
		id:     cfg.ID,
		typ:    TypeS3,
		bucket: cfg.S3.Bucket,
		prefix: cfg.S3.Prefix,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (s *s3Publisher) ID() string   { return s.id }
func (s *s3Publisher) Type() string { return s.typ }

// objectKey lays objects out as <prefix>/<yyyy>/<mm>/<dd>/<submission id>.json.
func (s *s3Publisher) objectKey(evt Event) string {
	day := evt.Submission.SubmittedAt.UTC()
	if day.IsZero() {
		day = evt.PublishedAt.UTC()
	}
	return path.Join(s.prefix, day.Format("2006/01/02"), evt.Submission.ID+".json")
}

// Publish uploads the event to the configured bucket.
func (s *s3Publisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := s.objectKey(evt)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
		Metadata:    evt.attributes(),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.log.ErrorObj("s3 publisher upload failed", "publisher_s3_error", map[string]any{
			"publisher_id": s.id,
			"key":          key,
			"error":        err.Error(),
		})
		return fmt.Errorf("put object to s3: %w", err)
	}
	s.log.DebugObj("s3 publisher archived event", "publisher_s3_delivery", map[string]any{
		"publisher_id": s.id,
		"key":          key,
	})
	return nil
}
