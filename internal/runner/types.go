package runner

import "time"

// Config controls the execution pool.
type Config struct {
	// Workers is the number of concurrent job executors.
	Workers int

	// QueueSize bounds the pending-job queue. When the queue is full new
	// jobs are dropped (a scheduler deadline must never block on a slow
	// command).
	QueueSize int

	// DefaultTimeout applies to jobs without their own Timeout.
	// Zero disables the global default.
	DefaultTimeout time.Duration

	// SpawnPerSec rate-limits process spawns across all workers.
	// Zero or negative picks a default.
	SpawnPerSec int
}

func (c Config) normalized() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.SpawnPerSec <= 0 {
		c.SpawnPerSec = 8
	}
	return c
}

// Job is one command execution request.
type Job struct {
	Name    string
	Command []string

	// Timeout overrides Config.DefaultTimeout when positive.
	Timeout time.Duration
}

// RunResult is the outcome of one job execution, published on the event
// bus as eventbus.TypeRunFinished.
type RunResult struct {
	Task      string
	StartedAt time.Time
	Duration  time.Duration
	ExitCode  int
	Err       string
}

// OK reports whether the job completed without error.
func (r RunResult) OK() bool { return r.Err == "" }
