package cli

import (
	"context"
	"fmt"
	"time"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/config"
	"exam-grading-service/internal/infra/blob"
	"exam-grading-service/internal/infra/kafka"
	"exam-grading-service/internal/infra/memory"
	pgloader "exam-grading-service/internal/infra/postgres"
	rediscache "exam-grading-service/internal/infra/redis"
	"exam-grading-service/internal/infra/sqlstore"
	"exam-grading-service/internal/logging"
	"go.uber.org/zap"
)

type closer func() error

// components holds everything built from config; close releases it in reverse order.
type components struct {
	cfg     config.Config
	log     *zap.Logger
	store   *sqlstore.Store
	cache   app.AnswerKeyCache
	blobs   app.BlobStore
	events  app.EventPublisher
	closers []closer
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.log.Warn("close component failed", zap.Error(err))
		}
	}
	_ = c.log.Sync()
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func openStore(cfg config.Config) (*sqlstore.Store, error) {
	opTimeout := config.TTLDuration(cfg.Database.OpTimeout, 5*time.Second)
	return sqlstore.Open(cfg.Database.Driver, cfg.Database.URL, opTimeout)
}

// buildComponents connects the store, cache, blob storage and event producer.
func buildComponents(ctx context.Context, cfg config.Config, log *zap.Logger) (*components, error) {
	c := &components{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			c.close()
		}
	}()

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	c.closers = append(c.closers, store.Close)
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	var loader app.AnswerKeyLoader = store
	if cfg.Database.Driver == sqlstore.DriverPostgres {
		pool, err := pgloader.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
		loader = pgloader.NewAnswerKeyLoader(pool)
	}

	cacheTTL := config.TTLDuration(cfg.AnswerKeyCache.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := rediscache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c.closers = append(c.closers, client.Close)
		c.cache = rediscache.NewAnswerKeyCache(client, loader, cacheTTL)
		log.Info("answer key cache in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		c.cache = memory.NewAnswerKeyCache(loader, cacheTTL)
	}

	switch cfg.Storage.Driver {
	case "s3":
		s3cfg := cfg.Storage.S3
		s3store, err := blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:        s3cfg.Endpoint,
			Region:          s3cfg.Region,
			Bucket:          s3cfg.Bucket,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		if err := s3store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		c.blobs = s3store
	default:
		fsstore, err := blob.NewFSStore(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		c.blobs = fsstore
	}

	c.events = app.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, producer.Close)
		c.events = producer
		log.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	ok = true
	return c, nil
}
