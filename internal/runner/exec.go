package runner

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

func (s *Service) execute(job Job) RunResult {
	ctx, cancel := s.stopContext()
	defer cancel()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}
	if timeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, timeout)
		defer tcancel()
	}

	res := RunResult{Task: job.Name, StartedAt: time.Now()}

	if len(job.Command) == 0 {
		res.Err = "empty command"
		res.ExitCode = -1
		return res
	}

	if err := s.limiter.Wait(ctx); err != nil {
		res.Duration = time.Since(res.StartedAt)
		res.Err = "spawn throttled: " + err.Error()
		res.ExitCode = -1
		return res
	}

	cmd := exec.CommandContext(ctx, job.Command[0], job.Command[1:]...)
	err := cmd.Run()
	res.Duration = time.Since(res.StartedAt)

	if err != nil {
		var ee *exec.ExitError
		switch {
		case errors.As(err, &ee):
			res.ExitCode = ee.ExitCode()
			res.Err = err.Error()
		case ctx.Err() != nil:
			res.ExitCode = -1
			res.Err = ctx.Err().Error()
		default:
			res.ExitCode = -1
			res.Err = err.Error()
		}
	}
	return res
}
