package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	partners      []PartnerPerformance
	subscriptions []Subscription
	err           error
	failing       map[string]error
	calls         map[string]int
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		partners: []PartnerPerformance{{Partner: "Acme CRM", Success: 99, Failure: 1}},
		subscriptions: []Subscription{
			{Partner: "Acme CRM", Event: "CustomerUpdated", Status: "Approved", DeliveryURL: "https://hooks.acmecrm.com/customer"},
		},
		calls: make(map[string]int),
	}
}

func (p *stubProvider) record(view string) error {
	p.calls[view]++
	if err, ok := p.failing[view]; ok {
		return err
	}
	return p.err
}

func (p *stubProvider) Overview(ctx context.Context) (Overview, error) {
	if err := p.record(ViewOverview); err != nil {
		return Overview{}, err
	}
	return Overview{
		Kpis:               []KpiCard{{Title: "Delivery Success", Value: "99.2%", Delta: "+0.4%", Trend: TrendUp}},
		IngestionSeries:    []ChartPoint{{Timestamp: "0:00", Value: 500}},
		PartnerPerformance: p.partners,
	}, nil
}

func (p *stubProvider) Ingestion(ctx context.Context) (IngestionDetail, error) {
	if err := p.record(ViewIngestion); err != nil {
		return IngestionDetail{}, err
	}
	return IngestionDetail{Series: []ChartPoint{{Timestamp: "0:00", Value: 1}}}, nil
}

func (p *stubProvider) Registry(ctx context.Context) ([]SchemaEntry, error) {
	if err := p.record(ViewRegistry); err != nil {
		return nil, err
	}
	return []SchemaEntry{{Domain: "crm.accounts", Event: "CustomerUpdated", Version: "v3", Status: "ACTIVE", EventsPerDay: 12000}}, nil
}

func (p *stubProvider) Subscriptions(ctx context.Context) ([]Subscription, error) {
	if err := p.record(ViewSubscriptions); err != nil {
		return nil, err
	}
	return p.subscriptions, nil
}

func (p *stubProvider) DeliveryPerformance(ctx context.Context) ([]PartnerPerformance, error) {
	if err := p.record(ViewDelivery); err != nil {
		return nil, err
	}
	return p.partners, nil
}

func (p *stubProvider) Retries(ctx context.Context) ([]RetryStage, error) {
	if err := p.record(ViewRetries); err != nil {
		return nil, err
	}
	return []RetryStage{{Stage: "DLQ", Count: 8}}, nil
}

func (p *stubProvider) AuditLog(ctx context.Context) ([]AuditEntry, error) {
	if err := p.record(ViewAudit); err != nil {
		return nil, err
	}
	return []AuditEntry{{Actor: "alice", Action: "Approved", Timestamp: "2024-05-02T11:00:00Z"}}, nil
}

func (p *stubProvider) Alerts(ctx context.Context) ([]Alert, error) {
	if err := p.record(ViewAlerts); err != nil {
		return nil, err
	}
	return []Alert{{Name: "Retry queue spike", Status: "firing", Severity: "high"}}, nil
}

type recordingObserver struct {
	views []string
}

func (o *recordingObserver) ObserveProviderFailure(view string, err error) {
	o.views = append(o.views, view)
}

func newTestService(t *testing.T, provider Provider) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(provider, NewCache(client, time.Minute), nil)
}

func TestDeliveryPerformanceCaches(t *testing.T) {
	provider := newStubProvider()
	svc := newTestService(t, provider)
	ctx := context.Background()

	res, err := svc.DeliveryPerformance(ctx)
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Acme CRM", res.Value[0].Partner)
	assert.False(t, res.Stale)

	_, err = svc.DeliveryPerformance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls[ViewDelivery], "second read should hit cache")

	_, err = svc.Cache().Bump(ctx)
	require.NoError(t, err)
	provider.partners = []PartnerPerformance{{Partner: "PaymentsCo", Success: 94, Failure: 6}}
	res, err = svc.DeliveryPerformance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls[ViewDelivery])
	assert.Equal(t, "PaymentsCo", res.Value[0].Partner)
}

func TestUnavailableProviderServesLastKnownGood(t *testing.T) {
	provider := newStubProvider()
	svc := newTestService(t, provider)
	observer := &recordingObserver{}
	svc.WithObserver(observer)
	ctx := context.Background()

	_, err := svc.Subscriptions(ctx)
	require.NoError(t, err)

	_, err = svc.Cache().Bump(ctx)
	require.NoError(t, err)
	provider.err = fmt.Errorf("query subscriptions: %w", ErrProviderUnavailable)

	res, err := svc.Subscriptions(ctx)
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.ErrorIs(t, res.Cause, ErrProviderUnavailable)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "CustomerUpdated", res.Value[0].Event)
	assert.Equal(t, []string{ViewSubscriptions}, observer.views)
}

func TestUnavailableProviderWithoutHistoryFails(t *testing.T) {
	provider := newStubProvider()
	provider.err = ErrProviderUnavailable
	svc := newTestService(t, provider)

	_, err := svc.Alerts(context.Background())
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestMalformedRowIsNotServedStale(t *testing.T) {
	provider := newStubProvider()
	provider.subscriptions = []Subscription{{Partner: "Acme CRM", Event: "CustomerUpdated", Status: "Approved"}}
	svc := newTestService(t, provider)

	_, err := svc.Subscriptions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRow))
	assert.Contains(t, err.Error(), "DeliveryURL")
}

func TestServiceWithoutCache(t *testing.T) {
	provider := newStubProvider()
	svc := NewService(provider, nil, nil)

	res, err := svc.Registry(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Value, 1)

	_, err = svc.Registry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls[ViewRegistry])
}

func TestSnapshotGathersEveryCollection(t *testing.T) {
	svc := newTestService(t, newStubProvider())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.OverviewKpis, 1)
	assert.Len(t, snap.IngestionSeries, 1)
	assert.Len(t, snap.PartnerPerformance, 1)
	assert.Len(t, snap.SchemaCatalog, 1)
	assert.Len(t, snap.SubscriptionRows, 1)
	assert.Len(t, snap.RetryPipeline, 1)
	assert.Len(t, snap.AuditLog, 1)
	assert.Len(t, snap.Alerts, 1)
}

func TestWarmLoadsEveryView(t *testing.T) {
	provider := newStubProvider()
	svc := newTestService(t, provider)

	warmed, err := svc.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(Views), warmed)
	for _, view := range Views {
		assert.Equal(t, 1, provider.calls[view], view)
	}
}

func TestWarmContinuesPastFailingView(t *testing.T) {
	provider := newStubProvider()
	provider.failing = map[string]error{ViewRegistry: fmt.Errorf("registry rows: %w", ErrMalformedRow)}
	svc := newTestService(t, provider)

	warmed, err := svc.Warm(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "warm registry")
	assert.Equal(t, len(Views)-1, warmed)
	for _, view := range Views {
		assert.Equal(t, 1, provider.calls[view], view)
	}
}

// failingHook rejects commands for which reject returns true.
type failingHook struct {
	reject func(cmd redis.Cmder) bool
}

func (h failingHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h failingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if h.reject(cmd) {
			err := errors.New("OOM command not allowed when used memory > 'maxmemory'")
			cmd.SetErr(err)
			return err
		}
		return next(ctx, cmd)
	}
}

func (h failingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newHookedService(t *testing.T, provider Provider, reject func(cmd redis.Cmder) bool) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client.AddHook(failingHook{reject: reject})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(provider, NewCache(client, time.Minute), nil)
}

func commandKey(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return ""
	}
	key, _ := args[1].(string)
	return key
}

func TestCacheWriteFailureServesProviderData(t *testing.T) {
	provider := newStubProvider()
	svc := newHookedService(t, provider, func(cmd redis.Cmder) bool {
		return cmd.Name() == "set" && commandKey(cmd) != cacheVersionKey
	})

	res, err := svc.DeliveryPerformance(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Stale)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Acme CRM", res.Value[0].Partner)
	assert.Equal(t, 1, provider.calls[ViewDelivery])
}

func TestCacheReadFailureFallsThroughToProvider(t *testing.T) {
	provider := newStubProvider()
	svc := newHookedService(t, provider, func(cmd redis.Cmder) bool {
		return cmd.Name() == "get" && commandKey(cmd) != cacheVersionKey
	})

	res, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Value, 1)
	assert.Equal(t, "Retry queue spike", res.Value[0].Name)
}

func TestFetchJSONReportsWriteFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client.AddHook(failingHook{reject: func(cmd redis.Cmder) bool { return cmd.Name() == "set" }})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	var out []string
	err := cache.FetchJSON(context.Background(), "dashboard:test:1", &out, func(context.Context) (any, error) {
		return []string{"a", "b"}, nil
	})
	assert.ErrorIs(t, err, ErrCacheWrite)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestParseTrend(t *testing.T) {
	assert.Equal(t, TrendUp, ParseTrend("up"))
	assert.Equal(t, TrendDown, ParseTrend(" DOWN "))
	assert.Equal(t, TrendFlat, ParseTrend("flat"))
	assert.Equal(t, TrendFlat, ParseTrend("sideways"))
	assert.Equal(t, TrendFlat, ParseTrend(""))
}
