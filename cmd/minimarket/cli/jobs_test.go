package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimarket/minimarket/jobs"
)

type stubRunner struct {
	triggered []string
	err       error
}

func (s *stubRunner) Trigger(_ context.Context, name string) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.triggered = append(s.triggered, name)
	return &asynq.TaskInfo{ID: "abc", Queue: jobs.QueueDefault}, nil
}

func (s *stubRunner) InspectQueue() (QueueStats, error) {
	if s.err != nil {
		return QueueStats{}, s.err
	}
	return QueueStats{Queue: jobs.QueueDefault, Pending: 2, Retry: 1}, nil
}

func TestBuildTask(t *testing.T) {
	task, err := BuildTask(jobs.TaskAlertsScan)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskAlertsScan, task.Type())

	task, err = BuildTask(jobs.TaskReportsRefresh)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskReportsRefresh, task.Type())

	_, err = BuildTask("email:send")
	assert.Error(t, err)
}

func TestRunJobsTrigger(t *testing.T) {
	runner := &stubRunner{}
	var stdout, stderr bytes.Buffer

	code := RunJobs(context.Background(), runner, []string{"trigger", "alerts:scan"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"alerts:scan"}, runner.triggered)
	assert.Contains(t, stdout.String(), "enqueued alerts:scan id=abc")
}

func TestRunJobsRejectsUnknownJob(t *testing.T) {
	runner := &stubRunner{}
	var stdout, stderr bytes.Buffer

	code := RunJobs(context.Background(), runner, []string{"trigger", "nope"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Empty(t, runner.triggered)
	assert.Contains(t, stderr.String(), "unsupported job")
}

func TestRunJobsStats(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := RunJobs(context.Background(), &stubRunner{}, []string{"stats"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "queue=default pending=2 active=0 scheduled=0 retry=1\n", stdout.String())

	stdout.Reset()
	code = RunJobs(context.Background(), &stubRunner{err: errors.New("redis down")}, []string{"stats"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
}

func TestRunJobsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, RunJobs(context.Background(), &stubRunner{}, nil, &stdout, &stderr))
	assert.Equal(t, 2, RunJobs(context.Background(), &stubRunner{}, []string{"trigger"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage:")
}
