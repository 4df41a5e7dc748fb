package main

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api"
	v1 "github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/v1"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/v1/middleware"
	xvalidator "github.com/linlin946883-stack/qingyusuchuan-sub000/internal/api/validator"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/config"
	apierrors "github.com/linlin946883-stack/qingyusuchuan-sub000/internal/errors"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/metrics"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/repository"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/service"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/httpclient"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/moderation"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mysql"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/redis"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/wechatpay"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,

			NewConnectionDB,
			NewRedisClient,
			NewSnowflakeNode,
			NewPaymentGateway,

			repository.NewOrderRepository,
			repository.NewPaymentRepository,
			repository.NewUserRepository,
			repository.NewTransactionManager,
			NewTokenStore,

			service.NewPricingService,
			service.NewTokenService,
			NewModerationService,
			service.NewOrderService,
			service.NewPaymentService,
			service.NewUserService,

			metrics.NewMetrics,
			NewXValidator,
			NewFiberApp,
			v1.NewHandler,
		),
		fx.Invoke(startServer, startMetricsServer, startJobs),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, m *metrics.Metrics, cfg *config.Config,
	logger *zap.Logger, lc fx.Lifecycle) {
	app.Use(middleware.HTTPMetricsMiddleware(m, logger))
	api.SetupRoutes(app, handler)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func startMetricsServer(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.API.MetricsPort, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

// startJobs schedules the token sweep and the payment reconciliation poll.
func startJobs(tokens service.TokenService, payments service.PaymentService,
	logger *zap.Logger, lc fx.Lifecycle) {
	scheduler := cron.New()
	appCtx, cancel := context.WithCancel(context.Background())

	scheduler.AddFunc("@every 5m", func() {
		tokens.PurgeExpired(appCtx)
	})
	scheduler.AddFunc("@every 1m", func() {
		payments.ReconcilePending(appCtx)
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			logger.Info("background jobs started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			<-scheduler.Stop().Done()
			return nil
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, error) {
	return redis.NewClient(cfg.Redis, logger)
}

func NewSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func NewPaymentGateway(cfg *config.Config) (wechatpay.Gateway, error) {
	client := httpclient.NewHTTPClient(cfg.WechatPay.Timeout)
	return wechatpay.NewGateway(cfg.WechatPay, client)
}

func NewTokenStore(cfg *config.Config, db *gorm.DB, client *goredis.Client) repository.TokenStore {
	if cfg.TokenStore.Backend == "mysql" {
		return repository.NewMySQLTokenStore(db)
	}
	return repository.NewRedisTokenStore(client)
}

func NewModerationService(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) service.ModerationService {
	client := httpclient.NewHTTPClient(cfg.Moderation.Timeout)
	classifier := moderation.NewClassifier(cfg.Moderation, client)
	return service.NewModerationService(classifier, cfg.Moderation.Enable, logger, m)
}

func NewXValidator(m *metrics.Metrics) xvalidator.IXValidator {
	return xvalidator.NewXValidator(validator.New(), m)
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: apierrors.ErrorHandler()})
}
