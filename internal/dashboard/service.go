package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// View names used for cache keys, metrics labels and last-known-good storage.
const (
	ViewOverview      = "overview"
	ViewIngestion     = "ingestion"
	ViewRegistry      = "registry"
	ViewSubscriptions = "subscriptions"
	ViewDelivery      = "delivery"
	ViewRetries       = "retries"
	ViewAudit         = "audit"
	ViewAlerts        = "alerts"
)

// Views lists every cacheable view in display order.
var Views = []string{ViewOverview, ViewIngestion, ViewRegistry, ViewSubscriptions, ViewDelivery, ViewRetries, ViewAudit, ViewAlerts}

// FailureObserver is notified whenever a provider call fails.
type FailureObserver interface {
	ObserveProviderFailure(view string, err error)
}

// Result carries a view payload. Stale results come from the last-known-good copy after the
// provider failed; Cause holds that failure.
type Result[T any] struct {
	Value T
	Stale bool
	Cause error
}

// Service coordinates provider reads with the cache layer.
type Service struct {
	provider Provider
	cache    *Cache
	logger   *slog.Logger
	observer FailureObserver
	group    singleflight.Group
}

// NewService wires a Provider with an optional Cache helper.
func NewService(provider Provider, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, cache: cache, logger: logger}
}

// WithObserver registers a provider failure observer.
func (s *Service) WithObserver(observer FailureObserver) *Service {
	s.observer = observer
	return s
}

// Cache exposes the cache helper for maintenance jobs.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Overview returns KPIs, the ingestion series and partner performance.
func (s *Service) Overview(ctx context.Context) (Result[Overview], error) {
	return fetch(ctx, s, ViewOverview, func(ctx context.Context) (Overview, error) {
		value, err := s.provider.Overview(ctx)
		if err != nil {
			return Overview{}, err
		}
		return value, ValidateValue(ViewOverview, value)
	})
}

// Ingestion returns the ingress health detail.
func (s *Service) Ingestion(ctx context.Context) (Result[IngestionDetail], error) {
	return fetch(ctx, s, ViewIngestion, func(ctx context.Context) (IngestionDetail, error) {
		value, err := s.provider.Ingestion(ctx)
		if err != nil {
			return IngestionDetail{}, err
		}
		return value, ValidateValue(ViewIngestion, value)
	})
}

// Registry returns the schema catalog.
func (s *Service) Registry(ctx context.Context) (Result[[]SchemaEntry], error) {
	return fetch(ctx, s, ViewRegistry, rowsLoader(ViewRegistry, s.provider.Registry))
}

// Subscriptions returns partner subscriptions.
func (s *Service) Subscriptions(ctx context.Context) (Result[[]Subscription], error) {
	return fetch(ctx, s, ViewSubscriptions, rowsLoader(ViewSubscriptions, s.provider.Subscriptions))
}

// DeliveryPerformance returns per-partner delivery rates.
func (s *Service) DeliveryPerformance(ctx context.Context) (Result[[]PartnerPerformance], error) {
	return fetch(ctx, s, ViewDelivery, rowsLoader(ViewDelivery, s.provider.DeliveryPerformance))
}

// Retries returns retry pipeline stage counts.
func (s *Service) Retries(ctx context.Context) (Result[[]RetryStage], error) {
	return fetch(ctx, s, ViewRetries, rowsLoader(ViewRetries, s.provider.Retries))
}

// AuditLog returns recent operator actions.
func (s *Service) AuditLog(ctx context.Context) (Result[[]AuditEntry], error) {
	return fetch(ctx, s, ViewAudit, rowsLoader(ViewAudit, s.provider.AuditLog))
}

// Alerts returns alert rule states.
func (s *Service) Alerts(ctx context.Context) (Result[[]Alert], error) {
	return fetch(ctx, s, ViewAlerts, rowsLoader(ViewAlerts, s.provider.Alerts))
}

// Snapshot gathers every collection concurrently for the JSON endpoint.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.Overview(ctx)
		if err != nil {
			return err
		}
		snap.OverviewKpis = res.Value.Kpis
		snap.IngestionSeries = res.Value.IngestionSeries
		snap.PartnerPerformance = res.Value.PartnerPerformance
		return nil
	})
	g.Go(func() error {
		res, err := s.Registry(ctx)
		snap.SchemaCatalog = res.Value
		return err
	})
	g.Go(func() error {
		res, err := s.Subscriptions(ctx)
		snap.SubscriptionRows = res.Value
		return err
	})
	g.Go(func() error {
		res, err := s.Retries(ctx)
		snap.RetryPipeline = res.Value
		return err
	})
	g.Go(func() error {
		res, err := s.AuditLog(ctx)
		snap.AuditLog = res.Value
		return err
	})
	g.Go(func() error {
		res, err := s.Alerts(ctx)
		snap.Alerts = res.Value
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Warm loads every view through the cache so subsequent page loads are cache hits. A failing
// view does not stop the pass; failures are joined and the count covers the views that loaded.
func (s *Service) Warm(ctx context.Context) (int, error) {
	loaders := []func(context.Context) error{
		func(ctx context.Context) error { _, err := s.Overview(ctx); return err },
		func(ctx context.Context) error { _, err := s.Ingestion(ctx); return err },
		func(ctx context.Context) error { _, err := s.Registry(ctx); return err },
		func(ctx context.Context) error { _, err := s.Subscriptions(ctx); return err },
		func(ctx context.Context) error { _, err := s.DeliveryPerformance(ctx); return err },
		func(ctx context.Context) error { _, err := s.Retries(ctx); return err },
		func(ctx context.Context) error { _, err := s.AuditLog(ctx); return err },
		func(ctx context.Context) error { _, err := s.Alerts(ctx); return err },
	}
	warmed := 0
	var errs []error
	for i, load := range loaders {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := load(ctx); err != nil {
			errs = append(errs, fmt.Errorf("warm %s: %w", Views[i], err))
			continue
		}
		warmed++
	}
	return warmed, errors.Join(errs...)
}

func rowsLoader[T any](view string, call func(context.Context) ([]T, error)) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		rows, err := call(ctx)
		if err != nil {
			return nil, err
		}
		if err := ValidateRows(view, rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
}

func fetch[T any](ctx context.Context, s *Service, view string, load func(context.Context) (T, error)) (Result[T], error) {
	value, err := loadCached(ctx, s, view, load)
	if err == nil {
		return Result[T]{Value: value}, nil
	}
	if s.observer != nil {
		s.observer.ObserveProviderFailure(view, err)
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		return Result[T]{}, err
	}
	var stale T
	found, lgErr := s.cache.LastGood(ctx, view, &stale)
	if lgErr != nil {
		s.logger.Warn("read last known good", slog.String("view", view), slog.Any("error", lgErr))
	}
	if !found {
		return Result[T]{}, err
	}
	s.logger.Warn("serving stale dashboard view", slog.String("view", view), slog.Any("error", err))
	return Result[T]{Value: stale, Stale: true, Cause: err}, nil
}

// loadCached resolves a view through the versioned cache. Concurrent misses for the same key
// share one provider call. Redis failures are logged and degrade to a direct provider read.
func loadCached[T any](ctx context.Context, s *Service, view string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	key, err := s.cache.BuildKey(ctx, "dashboard", view)
	if err != nil {
		s.logger.Warn("build cache key", slog.String("view", view), slog.Any("error", err))
		return load(ctx)
	}

	fresh := false
	val, err, _ := singleflightDo(ctx, &s.group, key, func(ctx context.Context) (any, error) {
		var out T
		fetchErr := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			value, err := load(ctx)
			if err != nil {
				return nil, err
			}
			fresh = true
			return value, nil
		})
		if errors.Is(fetchErr, ErrCacheWrite) {
			s.logger.Warn("write dashboard cache", slog.String("view", view), slog.Any("error", fetchErr))
		} else if fetchErr != nil {
			return nil, fetchErr
		}
		if fresh {
			if err := s.cache.StoreLastGood(ctx, view, out); err != nil {
				s.logger.Warn("store last known good", slog.String("view", view), slog.Any("error", err))
			}
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	out, ok := val.(T)
	if !ok {
		return zero, errors.New("dashboard: unexpected cached value type")
	}
	return out, nil
}

func singleflightDo(ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	resultChan := group.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
