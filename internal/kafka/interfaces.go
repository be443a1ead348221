package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// MessageHandler processes one record. Errors are logged and counted; the
// record is committed either way.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg kafka.Message) error
}

// ReplyWriter is the subset of *kafka.Writer the handler needs.
type ReplyWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
