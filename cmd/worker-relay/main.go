package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/config"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/consumers"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/httpclient"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mq"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mysql"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/relayer"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewConnectionDB,
			NewMQConnection,
			NewMQConsumer,

			repository.NewOrderRepository,
			NewDispatcher,
			service.NewRelayService,

			consumers.NewRelayConsumer,
		),
		fx.Invoke(runRelayConsumer),
	).Run()
}

func runRelayConsumer(cfg *config.Config, relayConsumer consumers.RelayConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{service.RelayQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}
			logger.Info("queue declared", zap.String("queue", service.RelayQueue))

			go func() {
				if err := relayConsumer.Consume(appCtx); err != nil {
					logger.Error("consumer exited", zap.Error(err))
				}
			}()

			logger.Info("relay consumer started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping relay consumer")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewDispatcher(cfg *config.Config) relayer.Dispatcher {
	client := httpclient.NewHTTPClient(cfg.Relayer.Timeout)
	return relayer.NewDispatcher(cfg.Relayer, client)
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQConsumer(rabbitMQ *mq.RabbitMQ) (mq.Consumer, error) {
	return rabbitMQ.CreateConsumer()
}
