package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhooks-analytics/console/internal/dashboard"
)

type failingQuerier struct {
	err error
}

func (f failingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, f.err
}

func (f failingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: f.err}
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func TestQueryFailureIsProviderUnavailable(t *testing.T) {
	store := New(failingQuerier{err: errors.New("connection refused")})

	_, err := store.Registry(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = store.Overview(context.Background())
	assert.ErrorIs(t, err, dashboard.ErrProviderUnavailable)
}

func TestContextErrorsAreNotReclassified(t *testing.T) {
	store := New(failingQuerier{err: context.DeadlineExceeded})

	_, err := store.Alerts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, dashboard.ErrProviderUnavailable)
}

func TestMissingDatabase(t *testing.T) {
	_, err := New(nil).AuditLog(context.Background())
	assert.ErrorIs(t, err, dashboard.ErrProviderUnavailable)
}

// TestStoreAgainstPostgres runs only when PG_DSN points at a database seeded with
// migrations/0001_dashboard.sql.
func TestStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := New(pool)
	overview, err := store.Overview(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateValue(dashboard.ViewOverview, overview))

	subs, err := store.Subscriptions(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateRows(dashboard.ViewSubscriptions, subs))
}

// refusingBeginner supports transactions but cannot open one.
type refusingBeginner struct {
	failingQuerier
	begins int
}

func (b *refusingBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.begins++
	return nil, errors.New("too many connections")
}

func TestMultiQueryViewsUseSnapshot(t *testing.T) {
	conn := &refusingBeginner{failingQuerier: failingQuerier{err: errors.New("direct query")}}
	store := New(conn)

	_, err := store.Overview(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dashboard.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "too many connections")
	assert.NotContains(t, err.Error(), "direct query")

	_, err = store.Ingestion(context.Background())
	assert.ErrorIs(t, err, dashboard.ErrProviderUnavailable)
	assert.Equal(t, 2, conn.begins)
}

func TestIngestionWithoutTransactions(t *testing.T) {
	_, err := New(failingQuerier{err: errors.New("boom")}).Ingestion(context.Background())
	assert.ErrorIs(t, err, dashboard.ErrProviderUnavailable)
}

func TestIngestionAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	detail, err := New(pool).Ingestion(ctx)
	require.NoError(t, err)
	assert.NoError(t, dashboard.ValidateValue(dashboard.ViewIngestion, detail))
}
