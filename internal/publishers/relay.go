package publishers

import (
	"context"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"go.uber.org/zap"
)

type RelayPublisher interface {
	Publish(ctx context.Context) error
}

type relayPublisher struct {
	service service.QueueService
	logger  *zap.Logger
}

func NewRelayPublisher(service service.QueueService, logger *zap.Logger) RelayPublisher {
	return &relayPublisher{service: service, logger: logger}
}

func (r *relayPublisher) Publish(ctx context.Context) error {
	r.service.EnqueueFulfillable(ctx)
	return nil
}
