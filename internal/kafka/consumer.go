package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/pkg/logger"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/smart-cart/pkg/util"
)

type kafkaConsumer struct {
	reader         *kafka.Reader
	metrics        *prometheus.HistogramVec
	consumeTimeout time.Duration
	handler        MessageHandler
	workerPool     *workerpool.WorkerPool
	stop           chan struct{}
	stopped        chan struct{}
	started        atomic.Bool
	stopOnce       sync.Once
	stopErr        error
}

func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) (Consumer, error) {
	if !cfg.Enabled {
		return &noopConsumer{}, nil
	}

	metrics, err := util.GetHistogramVec("kafka_messages_consumed", "code", "topic", "group")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{cfg.Topic},
		StartOffset: kafka.LastOffset,
	})

	return &kafkaConsumer{
		reader:         reader,
		metrics:        metrics,
		consumeTimeout: 30 * time.Second,
		handler:        handler,
		workerPool:     workerpool.New(max(1, cfg.Workers)),
		stop:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}, nil
}

// Start fetches records until ctx ends or Stop is called. Records are handled
// on the worker pool and committed once handled, whatever the outcome.
func (c *kafkaConsumer) Start(ctx context.Context) error {
	c.started.Store(true)
	defer close(c.stopped)

	conf := c.reader.Config()
	log.Infow(ctx, "Starting Kafka consumer", "topics", conf.GroupTopics, "group", conf.GroupID)

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-fetchCtx.Done():
		}
	}()

	// in-flight records finish and commit after the fetch loop is cancelled
	workCtx := context.WithoutCancel(ctx)
	for {
		msg, err := c.reader.FetchMessage(fetchCtx)
		if err != nil {
			if fetchCtx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorw(ctx, "Error fetching message", "error", err)
			continue
		}

		c.workerPool.Submit(func() {
			c.processMessage(workCtx, msg, conf.GroupID)
			if err := c.reader.CommitMessages(workCtx, msg); err != nil {
				log.Errorw(workCtx, "Failed to commit message", "error", err, "offset", msg.Offset)
			}
		})
	}
}

// Stop ends the fetch loop, drains the worker pool and closes the reader.
// Later calls return the result of the first.
func (c *kafkaConsumer) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() {
		log.Infow(ctx, "Stopping Kafka consumer")
		close(c.stop)
		if c.started.Load() {
			select {
			case <-c.stopped:
			case <-ctx.Done():
			}
		}
		c.workerPool.StopWait()
		c.stopErr = c.reader.Close()
	})
	return c.stopErr
}

func (c *kafkaConsumer) processMessage(ctx context.Context, msg kafka.Message, groupID string) {
	lagMs := time.Since(msg.Time).Milliseconds()

	duration, err := c.handle(ctx, msg)

	code := getCode(err)
	content := "success"
	if err != nil {
		content = err.Error()
	}

	log.Logw(ctx, getLogLevel(code), content,
		"code", code.String(),
		"duration_ms", duration.Milliseconds(),
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"lag_ms", lagMs,
		"key", string(msg.Key),
	)

	c.metrics.
		WithLabelValues(code.String(), msg.Topic, groupID).
		Observe(duration.Seconds())
}

func (c *kafkaConsumer) handle(ctx context.Context, msg kafka.Message) (duration time.Duration, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PANIC RECOVER: %+v", r)
		}
		duration = time.Since(start)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.consumeTimeout)
	defer cancel()

	return 0, c.handler.HandleMessage(ctx, msg)
}

func getCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus().Code()
	}
	return codes.Unknown
}

func getLogLevel(code codes.Code) logger.Level {
	switch code {
	case codes.OK:
		return logger.InfoLevel
	case codes.Canceled,
		codes.InvalidArgument,
		codes.NotFound,
		codes.AlreadyExists,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.ResourceExhausted,
		codes.FailedPrecondition,
		codes.Aborted,
		codes.Unimplemented,
		codes.OutOfRange:
		return logger.WarnLevel
	default:
		return logger.ErrorLevel
	}
}

// noopConsumer is used when Kafka is disabled
type noopConsumer struct{}

func (n *noopConsumer) Start(ctx context.Context) error {
	log.Infof(ctx, "Kafka consumer is disabled")
	return nil
}

func (n *noopConsumer) Stop(ctx context.Context) error {
	return nil
}
