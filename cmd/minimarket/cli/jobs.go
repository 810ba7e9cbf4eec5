// Package cli holds the operator subcommands of the minimarket binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/minimarket/minimarket/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// BuildTask returns the default task for a job name.
func BuildTask(name string) (*asynq.Task, error) {
	switch name {
	case jobs.TaskAlertsScan:
		return jobs.NewAlertsScanTask()
	case jobs.TaskReportsRefresh:
		return jobs.NewReportsRefreshTask("cli")
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// Trigger enqueues a supported job by name with default payload.
func (c *JobsCLI) Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := BuildTask(name)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = int(info.Pending)
		stats.Active = int(info.Active)
		stats.Scheduled = int(info.Scheduled)
		stats.Retry = int(info.Retry)
	}
	return stats, nil
}

// JobsRunner is what the jobs subcommand needs.
type JobsRunner interface {
	Trigger(ctx context.Context, name string) (*asynq.TaskInfo, error)
	InspectQueue() (QueueStats, error)
}

const jobsUsage = "usage: minimarket jobs trigger <alerts:scan|reports:refresh> | minimarket jobs stats"

// RunJobs executes "jobs" subcommand args and returns the process exit code.
func RunJobs(ctx context.Context, runner JobsRunner, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, jobsUsage)
		return 2
	}
	switch args[0] {
	case "trigger":
		if len(args) != 2 {
			fmt.Fprintln(stderr, jobsUsage)
			return 2
		}
		if _, err := BuildTask(args[1]); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		info, err := runner.Trigger(ctx, args[1])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "enqueued %s id=%s queue=%s\n", args[1], info.ID, info.Queue)
		return 0
	case "stats":
		stats, err := runner.InspectQueue()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "queue=%s pending=%s active=%s scheduled=%s retry=%s\n",
			stats.Queue, strconv.Itoa(stats.Pending), strconv.Itoa(stats.Active),
			strconv.Itoa(stats.Scheduled), strconv.Itoa(stats.Retry))
		return 0
	default:
		fmt.Fprintln(stderr, jobsUsage)
		return 2
	}
}
