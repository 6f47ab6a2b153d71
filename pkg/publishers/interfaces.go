package publishers

import "context"

// Publisher sends events to a downstream sink (SQS, SNS, S3, Pub/Sub, RabbitMQ, HTTP).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
