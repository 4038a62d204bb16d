package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/dashboard/fixtures"
	"github.com/webhooks-analytics/console/internal/dashboard/pgstore"
	"github.com/webhooks-analytics/console/internal/platform/db"
)

// DashboardService builds the cached dashboard service over the configured data source.
// The returned cleanup releases the database pool, if one was opened.
func DashboardService(ctx context.Context, cfg *Config, client *redis.Client, logger *slog.Logger, observer dashboard.FailureObserver) (*dashboard.Service, func(), error) {
	provider, cleanup, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	service := dashboard.NewService(provider, dashboard.NewCache(client, cfg.CacheTTL), logger)
	if observer != nil {
		service = service.WithObserver(observer)
	}
	return service, cleanup, nil
}

func newProvider(ctx context.Context, cfg *Config, logger *slog.Logger) (dashboard.Provider, func(), error) {
	switch cfg.DataSource {
	case DataSourcePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, ApplicationName: "webhooks-console"})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("dashboard data source", slog.String("source", DataSourcePostgres))
		return pgstore.New(pool), pool.Close, nil
	case DataSourceFixtures, "":
		logger.Info("dashboard data source", slog.String("source", DataSourceFixtures))
		return fixtures.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown data source %q", cfg.DataSource)
	}
}
