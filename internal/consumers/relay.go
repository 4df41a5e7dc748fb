package consumers

import (
	"context"
	"encoding/json"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mq"
	"go.uber.org/zap"
)

type RelayConsumer interface {
	Consume(ctx context.Context) error
}

type relayConsumer struct {
	service  service.RelayService
	consumer mq.Consumer
	logger   *zap.Logger
}

func NewRelayConsumer(service service.RelayService, consumer mq.Consumer, logger *zap.Logger) RelayConsumer {
	return &relayConsumer{service: service, consumer: consumer, logger: logger}
}

func (r *relayConsumer) Consume(ctx context.Context) error {
	return r.consumer.Consume(ctx, 1, service.RelayQueue, r.handleMessage)
}

func (r *relayConsumer) handleMessage(ctx context.Context, body []byte) error {
	r.logger.Info("received relay command", zap.ByteString("body", body))

	var cmd service.RelayOrderCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		r.logger.Warn("invalid relay command", zap.Error(err))
		return err
	}

	return r.service.ProcessOrder(ctx, cmd)
}
