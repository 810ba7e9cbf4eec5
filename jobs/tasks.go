package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAlertsScan evaluates stock and expiry alerts.
	TaskAlertsScan = "alerts:scan"
	// TaskReportsRefresh invalidates cached reports.
	TaskReportsRefresh = "reports:refresh"
)

// AlertsScanPayload is the alerts:scan body.
type AlertsScanPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// ReportsRefreshPayload is the reports:refresh body.
type ReportsRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewAlertsScanTask constructs an alerts:scan task.
func NewAlertsScanTask() (*asynq.Task, error) {
	body, err := json.Marshal(AlertsScanPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertsScan, body, asynq.Queue(QueueDefault)), nil
}

// NewReportsRefreshTask constructs a reports:refresh task.
func NewReportsRefreshTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(ReportsRefreshPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsRefresh, body, asynq.Queue(QueueDefault)), nil
}
