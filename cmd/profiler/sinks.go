package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"browserperf/internal/adapters/http"
	"browserperf/internal/adapters/logsink"
	"browserperf/internal/adapters/postgres"
	"browserperf/internal/adapters/redis"
	"browserperf/internal/adapters/ws"
	"browserperf/internal/config"
	"browserperf/internal/core/auth"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

func newResultsSink(ctx context.Context, cfg *config.Config, runID uuid.UUID, log logger.Logger) (domain.ResultsSink, func(), error) {
	signer := auth.NewSigner(cfg.ResultsJWTSecret, cfg.ResultsJWTExpiry, runID.String())

	switch cfg.ResultsSink {
	case config.SinkHTTP:
		return http.NewResultsClient(cfg.ResultsURL, signer, log), func() {}, nil

	case config.SinkWS:
		client := ws.NewResultsClient(cfg.ResultsWsURL, signer, log)
		return client, func() { _ = client.Close() }, nil

	case config.SinkRedis:
		client, err := redis.Init(ctx, &redis.ClientOptions{
			Address:  cfg.RedisAddress,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis connected")
		sink := redis.NewResultsSink(redis.NewRegistry(client), cfg.ResultsStream, runID)
		return sink, func() { _ = client.Close() }, nil

	case config.SinkPostgres:
		pool, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewResultsRepository(pool, runID), pool.Close, nil

	case config.SinkLog:
		return logsink.New(log), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown results sink %q", cfg.ResultsSink)
	}
}
