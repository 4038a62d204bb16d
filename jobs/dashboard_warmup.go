package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/webhooks-analytics/console/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer loads every dashboard view and reports how many were refreshed.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// Bumper invalidates cached dashboard views.
type Bumper interface {
	Bump(ctx context.Context) (int64, error)
}

// WarmupJob pre-populates the dashboard cache so page loads hit Redis.
type WarmupJob struct {
	Warmer  Warmer
	Bumper  Bumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(warmer Warmer, bumper Bumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Warmer:  warmer,
		Bumper:  bumper,
		Logger:  logger,
		Metrics: metrics,
		Timeout: time.Minute,
	}
}

// Handle processes dashboard warmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}
	return j.Run(ctx, payload)
}

// Run performs one warmup pass outside the queue.
func (j *WarmupJob) Run(ctx context.Context, payload WarmupPayload) (resultErr error) {
	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	start := time.Now()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	if payload.Bump && j.Bumper != nil {
		version, err := j.Bumper.Bump(ctx)
		if err != nil {
			logger.Error("bump dashboard cache", slog.Any("error", err))
			return fmt.Errorf("dashboard warmup: bump: %w", err)
		}
		logger.Info("dashboard cache bumped", slog.Int64("version", version))
	}

	warmed, err := j.Warmer.Warm(ctx)
	j.metrics().SetWarmedViews(warmed)
	if err != nil {
		logger.Error("warm dashboard views", slog.Int("warmed", warmed), slog.Any("error", err))
		return fmt.Errorf("dashboard warmup: %w", err)
	}
	logger.Info("completed dashboard warmup", slog.Int("views", warmed), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
