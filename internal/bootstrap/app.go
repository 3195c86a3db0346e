package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"isu-photo-board/internal/config"
	"isu-photo-board/internal/model"
	mysqlClient "isu-photo-board/internal/platform/mysql"
	rabbitmqClient "isu-photo-board/internal/platform/rabbitmq"
	redisClient "isu-photo-board/internal/platform/redis"
	"isu-photo-board/internal/worker"
)

// App owns every external handle. It is constructed once in main and
// passed down; no package reaches for a global.
type App struct {
	Config           *config.Config
	Log              *logrus.Logger
	MySQL            *gorm.DB
	Redis            *redis.Client
	MQConn           *amqp.Connection
	InvalidateWorker *worker.CacheInvalidateWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logrus.New()
	if cfg.App.Env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Post{}, &model.Comment{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	// The app works without the broker: invalidations then happen inline.
	var mqConn *amqp.Connection
	var invalidateWorker *worker.CacheInvalidateWorker
	mqConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq unavailable, cache invalidation runs inline")
		mqConn = nil
	} else {
		invalidateWorker = worker.NewCacheInvalidateWorker(mqConn, redisCli, cfg.RabbitMQ.InvalidateQueue, log)
		if err := invalidateWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start invalidate worker failed: %w", err)
		}
	}

	return &App{
		Config:           cfg,
		Log:              log,
		MySQL:            mysqlDB,
		Redis:            redisCli,
		MQConn:           mqConn,
		InvalidateWorker: invalidateWorker,
		StartedAt:        time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.InvalidateWorker != nil {
		a.InvalidateWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
