package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/internal/inventory"
	jobmetrics "github.com/minimarket/minimarket/internal/jobs"
)

type stubScanner struct {
	summary inventory.ScanSummary
	err     error
}

func (s stubScanner) Scan(context.Context) (inventory.ScanSummary, error) {
	return s.summary, s.err
}

type stubBumper struct {
	calls int
	err   error
}

func (b *stubBumper) Bump(context.Context) error {
	b.calls++
	return b.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAlertsScanJobRecordsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	job := NewAlertsScanJob(stubScanner{summary: inventory.ScanSummary{
		OutOfStock: 2, Critical: 1, Warning: 3, Expired: 1, Expiring: 4, BadDates: 1,
	}}, discardLogger(), metrics)

	task, err := NewAlertsScanTask()
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	count, err := testutil.GatherAndCount(reg, "minimarket_alert_products")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	runs, err := testutil.GatherAndCount(reg, "minimarket_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, runs)
}

func TestAlertsScanJobFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := NewAlertsScanJob(stubScanner{err: errors.New("db down")}, discardLogger(), jobmetrics.NewMetrics(reg))
	task, err := NewAlertsScanTask()
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)

	failures, err := testutil.GatherAndCount(reg, "minimarket_jobs_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
}

func TestAlertsScanJobBadPayload(t *testing.T) {
	job := NewAlertsScanJob(stubScanner{}, discardLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskAlertsScan, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAlertsScanJobNotConfigured(t *testing.T) {
	var job *AlertsScanJob
	task, err := NewAlertsScanTask()
	require.NoError(t, err)
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestReportsRefreshJob(t *testing.T) {
	bumper := &stubBumper{}
	job := NewReportsRefreshJob(bumper, discardLogger(), nil)
	task, err := NewReportsRefreshTask("nightly")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, bumper.calls)

	bumper.err = errors.New("redis down")
	assert.Error(t, job.Handle(context.Background(), task))
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewReportsRefreshTask("manual")
	require.NoError(t, err)
	assert.Equal(t, TaskReportsRefresh, task.Type())

	var payload ReportsRefreshPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "manual", payload.Reason)
}

type stubEnqueuer struct {
	err    error
	reason string
}

func (e *stubEnqueuer) EnqueueAlertsScan(context.Context) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &asynq.TaskInfo{ID: "scan-1"}, nil
}

func (e *stubEnqueuer) EnqueueReportsRefresh(_ context.Context, reason string) (*asynq.TaskInfo, error) {
	e.reason = reason
	if e.err != nil {
		return nil, e.err
	}
	return &asynq.TaskInfo{ID: "refresh-1"}, nil
}

func TestHandlerTriggers(t *testing.T) {
	enq := &stubEnqueuer{}
	r := chi.NewRouter()
	NewHandler(nil, enq, discardLogger()).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alerts-scan", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"task":"alerts:scan","id":"scan-1"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports-refresh", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "manual", enq.reason)

	enq.err = errors.New("redis down")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alerts-scan", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}
