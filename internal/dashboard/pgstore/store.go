// Package pgstore reads dashboard views from the platform metrics database.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/platform/db"
)

// Querier is the subset of pgxpool.Pool used by the store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements dashboard.Provider on PostgreSQL.
type Store struct {
	db Querier
}

// New constructs a Store.
func New(db Querier) *Store {
	return &Store{db: db}
}

const (
	qKpis = `SELECT title, value, delta, trend FROM dashboard_kpis ORDER BY position`
	// last 24 hourly buckets, oldest first
	qIngestion = `SELECT label, events_per_sec FROM (
		SELECT to_char(bucket_at, 'FMHH24:MI') AS label, events_per_sec, bucket_at
		FROM ingestion_samples ORDER BY bucket_at DESC LIMIT 24
	) recent ORDER BY bucket_at`
	qIngestionHealth   = `SELECT p95_latency_ms, consumer_lag FROM ingestion_health ORDER BY observed_at DESC LIMIT 1`
	qValidationFailure = `SELECT schema_ref, failure_rate, reason FROM validation_failures ORDER BY failure_rate DESC`
	qPartners          = `SELECT partner, success_pct, failure_pct FROM partner_delivery_stats ORDER BY partner`
	qSchemas           = `SELECT domain, event, version, status, events_per_day FROM schema_catalog ORDER BY domain, event`
	qSubscriptions     = `SELECT partner, event, status, delivery_url FROM subscriptions ORDER BY partner, event`
	qRetryStages       = `SELECT stage, pending FROM retry_stages ORDER BY position`
	qAudit             = `SELECT actor, action, to_char(occurred_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"') FROM audit_log ORDER BY occurred_at DESC LIMIT 100`
	qAlerts            = `SELECT name, status, severity FROM alerts ORDER BY raised_at DESC`
)

// Overview implements dashboard.Provider. KPIs, the ingestion series and partner stats are
// read from one snapshot when the database can begin transactions.
func (s *Store) Overview(ctx context.Context) (dashboard.Overview, error) {
	return inSnapshot(ctx, s, "overview tx", overview)
}

func overview(ctx context.Context, q Querier) (dashboard.Overview, error) {
	kpis, err := queryRows(ctx, q, "kpis", qKpis, func(row pgx.CollectableRow) (dashboard.KpiCard, error) {
		var card dashboard.KpiCard
		var trend string
		err := row.Scan(&card.Title, &card.Value, &card.Delta, &trend)
		card.Trend = dashboard.ParseTrend(trend)
		return card, err
	})
	if err != nil {
		return dashboard.Overview{}, err
	}
	series, err := querySeries(ctx, q)
	if err != nil {
		return dashboard.Overview{}, err
	}
	partners, err := partnerStats(ctx, q)
	if err != nil {
		return dashboard.Overview{}, err
	}
	return dashboard.Overview{Kpis: kpis, IngestionSeries: series, PartnerPerformance: partners}, nil
}

// Ingestion implements dashboard.Provider. The series, health row and validation failures
// share one snapshot like Overview.
func (s *Store) Ingestion(ctx context.Context) (dashboard.IngestionDetail, error) {
	return inSnapshot(ctx, s, "ingestion tx", ingestion)
}

// inSnapshot runs read inside a read-only transaction when the database supports one and
// directly otherwise.
func inSnapshot[T any](ctx context.Context, s *Store, op string, read func(context.Context, Querier) (T, error)) (T, error) {
	beginner, ok := s.db.(db.Beginner)
	if !ok {
		return read(ctx, s.db)
	}
	var out T
	err := db.ReadOnly(ctx, beginner, func(tx pgx.Tx) error {
		var err error
		out, err = read(ctx, tx)
		return err
	})
	if err != nil {
		var zero T
		if errors.Is(err, dashboard.ErrProviderUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		return zero, classify(op, err)
	}
	return out, nil
}

func ingestion(ctx context.Context, q Querier) (dashboard.IngestionDetail, error) {
	series, err := querySeries(ctx, q)
	if err != nil {
		return dashboard.IngestionDetail{}, err
	}
	detail := dashboard.IngestionDetail{Series: series}
	err = q.QueryRow(ctx, qIngestionHealth).Scan(&detail.P95LatencyMillis, &detail.ConsumerLag)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return dashboard.IngestionDetail{}, classify("ingestion health", err)
	}
	failures, err := queryRows(ctx, q, "validation failures", qValidationFailure, func(row pgx.CollectableRow) (dashboard.ValidationFailure, error) {
		var f dashboard.ValidationFailure
		err := row.Scan(&f.Schema, &f.Rate, &f.Reason)
		return f, err
	})
	if err != nil {
		return dashboard.IngestionDetail{}, err
	}
	detail.ValidationFailures = failures
	return detail, nil
}

// Registry implements dashboard.Provider.
func (s *Store) Registry(ctx context.Context) ([]dashboard.SchemaEntry, error) {
	return queryRows(ctx, s.db, "schema catalog", qSchemas, func(row pgx.CollectableRow) (dashboard.SchemaEntry, error) {
		var e dashboard.SchemaEntry
		err := row.Scan(&e.Domain, &e.Event, &e.Version, &e.Status, &e.EventsPerDay)
		return e, err
	})
}

// Subscriptions implements dashboard.Provider.
func (s *Store) Subscriptions(ctx context.Context) ([]dashboard.Subscription, error) {
	return queryRows(ctx, s.db, "subscriptions", qSubscriptions, func(row pgx.CollectableRow) (dashboard.Subscription, error) {
		var sub dashboard.Subscription
		err := row.Scan(&sub.Partner, &sub.Event, &sub.Status, &sub.DeliveryURL)
		return sub, err
	})
}

// DeliveryPerformance implements dashboard.Provider.
func (s *Store) DeliveryPerformance(ctx context.Context) ([]dashboard.PartnerPerformance, error) {
	return partnerStats(ctx, s.db)
}

func partnerStats(ctx context.Context, q Querier) ([]dashboard.PartnerPerformance, error) {
	return queryRows(ctx, q, "partner stats", qPartners, func(row pgx.CollectableRow) (dashboard.PartnerPerformance, error) {
		var p dashboard.PartnerPerformance
		err := row.Scan(&p.Partner, &p.Success, &p.Failure)
		return p, err
	})
}

// Retries implements dashboard.Provider.
func (s *Store) Retries(ctx context.Context) ([]dashboard.RetryStage, error) {
	return queryRows(ctx, s.db, "retry stages", qRetryStages, func(row pgx.CollectableRow) (dashboard.RetryStage, error) {
		var st dashboard.RetryStage
		err := row.Scan(&st.Stage, &st.Count)
		return st, err
	})
}

// AuditLog implements dashboard.Provider.
func (s *Store) AuditLog(ctx context.Context) ([]dashboard.AuditEntry, error) {
	return queryRows(ctx, s.db, "audit log", qAudit, func(row pgx.CollectableRow) (dashboard.AuditEntry, error) {
		var e dashboard.AuditEntry
		err := row.Scan(&e.Actor, &e.Action, &e.Timestamp)
		return e, err
	})
}

// Alerts implements dashboard.Provider.
func (s *Store) Alerts(ctx context.Context) ([]dashboard.Alert, error) {
	return queryRows(ctx, s.db, "alerts", qAlerts, func(row pgx.CollectableRow) (dashboard.Alert, error) {
		var a dashboard.Alert
		err := row.Scan(&a.Name, &a.Status, &a.Severity)
		return a, err
	})
}

func querySeries(ctx context.Context, q Querier) ([]dashboard.ChartPoint, error) {
	return queryRows(ctx, q, "ingestion samples", qIngestion, func(row pgx.CollectableRow) (dashboard.ChartPoint, error) {
		var p dashboard.ChartPoint
		err := row.Scan(&p.Timestamp, &p.Value)
		return p, err
	})
}

func queryRows[T any](ctx context.Context, q Querier, what, sql string, scan pgx.RowToFunc[T]) ([]T, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: database not configured", dashboard.ErrProviderUnavailable)
	}
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, classify(what, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, classify(what, err)
	}
	return out, nil
}

// classify keeps context errors intact and reports every other failure as an unavailable
// provider so views can fall back to their last known good copy.
func classify(what string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("pgstore: %s: %w", what, err)
	}
	return fmt.Errorf("pgstore: %s: %w: %v", what, dashboard.ErrProviderUnavailable, err)
}
