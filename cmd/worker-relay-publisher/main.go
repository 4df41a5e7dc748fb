package main

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/config"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/publishers"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mq"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mysql"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,

			NewConnectionDB,
			NewMQConnection,
			NewMQPublisher,

			repository.NewOrderRepository,

			service.NewQueueService,

			publishers.NewRelayPublisher,
		),
		fx.Invoke(runRelayPublisher),
	).Run()
}

func runRelayPublisher(cfg *config.Config, publisher publishers.RelayPublisher, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{service.RelayQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			logger.Info("queue declared", zap.String("queue", service.RelayQueue))

			go func() {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := publisher.Publish(appCtx); err != nil {
							logger.Error("failed to publish relay orders", zap.Error(err))
						}
					case <-appCtx.Done():
						logger.Info("publisher context cancelled")
						return
					}
				}
			}()

			logger.Info("relay publisher started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping relay publisher")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}
