package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

func newReplyWriter(conf config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(conf.Brokers...),
		Topic:                  conf.ReplyTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// StartConsumeTurns runs the dialog-turn consumer for the app lifetime when
// KAFKA_ENABLED is set.
func StartConsumeTurns(
	sd fx.Shutdowner,
	lc fx.Lifecycle,
	conf *config.Config,
	dialog usecase.DialogUsecase,
) error {
	if !conf.Kafka.Enabled {
		log.Warnf(context.Background(), "Kafka consumer is disabled in configuration")
		return nil
	}

	writer := newReplyWriter(conf.Kafka)
	consumer, err := NewConsumer(conf.Kafka, NewTurnHandler(dialog, writer))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Errorw(ctx, "Kafka consumer stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			return errors.Join(consumer.Stop(stopCtx), writer.Close())
		},
	})
	return nil
}
