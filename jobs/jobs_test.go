package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/webhooks-analytics/console/internal/jobs"
)

type fakeWarmer struct {
	views int
	err   error
	calls int
}

func (f *fakeWarmer) Warm(context.Context) (int, error) {
	f.calls++
	return f.views, f.err
}

type fakeBumper struct {
	calls int
}

func (f *fakeBumper) Bump(context.Context) (int64, error) {
	f.calls++
	return int64(f.calls + 1), nil
}

func newTestMetrics(t *testing.T) (*jobmetrics.Metrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	return jobmetrics.NewMetrics(registry), registry
}

func TestWarmupJobWarmsEveryView(t *testing.T) {
	metrics, registry := newTestMetrics(t)
	warmer := &fakeWarmer{views: 8}
	bumper := &fakeBumper{}
	job := NewWarmupJob(warmer, bumper, nil, metrics)

	task, err := NewWarmupTask(WarmupPayload{Reason: "deploy", Bump: true})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, warmer.calls)
	assert.Equal(t, 1, bumper.calls)

	count, err := testutil.GatherAndCount(registry, "console_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWarmupJobSkipsBumpByDefault(t *testing.T) {
	metrics, _ := newTestMetrics(t)
	warmer := &fakeWarmer{views: 8}
	bumper := &fakeBumper{}
	job := NewWarmupJob(warmer, bumper, nil, metrics)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)))
	assert.Zero(t, bumper.calls)
}

func TestWarmupJobReportsFailures(t *testing.T) {
	metrics, registry := newTestMetrics(t)
	boom := errors.New("provider down")
	job := NewWarmupJob(&fakeWarmer{views: 3, err: boom}, nil, nil, metrics)

	err := job.Run(context.Background(), WarmupPayload{Reason: "test"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	count, err := testutil.GatherAndCount(registry, "console_jobs_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWarmupJobRejectsBadPayload(t *testing.T) {
	job := NewWarmupJob(&fakeWarmer{}, nil, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWarmupJobRequiresWarmer(t *testing.T) {
	var job *WarmupJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)))
}

func TestNewWarmupTaskEncodesPayload(t *testing.T) {
	task, err := NewWarmupTask(WarmupPayload{Reason: "manual", Bump: true})
	require.NoError(t, err)
	assert.Equal(t, TaskDashboardWarmup, task.Type())

	var decoded WarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, WarmupPayload{Reason: "manual", Bump: true}, decoded)
}

func TestHealthWithoutInspector(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"retry":0}`, rr.Body.String())
}
