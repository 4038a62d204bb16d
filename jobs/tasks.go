package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup refreshes every dashboard view through the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// WarmupPayload describes a dashboard warmup request.
type WarmupPayload struct {
	Reason string `json:"reason"`
	// Bump invalidates every cached view before warming.
	Bump bool `json:"bump"`
}

// NewWarmupTask constructs an Asynq task for the dashboard warmup.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
