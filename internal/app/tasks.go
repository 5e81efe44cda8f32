package app

import (
	"fmt"
	"time"

	"tickd/internal/config"
	"tickd/internal/runner"
	"tickd/internal/scheduler"
	"tickd/internal/storage"
)

// taskPlan is a fully resolved task declaration: either an interval or a
// cron spec, plus the job the runner will execute on each fire.
type taskPlan struct {
	every time.Duration
	cron  *scheduler.CronSpec
	job   runner.Job
}

// planTasks resolves and validates every declared task. It is used both at
// startup and as the config manager's pre-commit validator, so a broken
// reload never reaches the scheduler.
func planTasks(cfg *config.Config) ([]taskPlan, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	plans := make([]taskPlan, 0, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		path := fmt.Sprintf("tasks[%d] %q", i, t.Name)

		timeout, err := config.ParseDurationField(path+".timeout", t.Timeout)
		if err != nil {
			return nil, err
		}
		p := taskPlan{job: runner.Job{
			Name:    t.Name,
			Command: t.Command,
			Timeout: timeout,
		}}

		switch {
		case t.Every != "":
			d, err := config.ParseDurationField(path+".every", t.Every)
			if err != nil {
				return nil, err
			}
			if d <= 0 {
				return nil, fmt.Errorf("%s.every: must be > 0", path)
			}
			p.every = d
		case t.Cron != "":
			spec, err := scheduler.ParseExpr(t.Cron)
			if err != nil {
				return nil, fmt.Errorf("%s.cron: %w", path, err)
			}
			p.cron = &spec
		case t.CronFields != nil:
			spec := fieldsToSpec(t.CronFields)
			p.cron = &spec
		default:
			return nil, fmt.Errorf("%s: no schedule", path)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func fieldsToSpec(f *config.CronFieldsConfig) scheduler.CronSpec {
	return scheduler.CronSpec{
		Seconds:  scheduler.Vals(f.Seconds...),
		Minutes:  scheduler.Vals(f.Minutes...),
		Hours:    scheduler.Vals(f.Hours...),
		Days:     scheduler.Vals(f.Days...),
		Months:   scheduler.Vals(f.Months...),
		Weekdays: scheduler.Vals(f.Weekdays...),
	}
}

func runnerConfig(cfg *config.Config) (runner.Config, error) {
	timeout, err := config.ParseDurationField("runner.default_timeout", cfg.Runner.DefaultTimeout)
	if err != nil {
		return runner.Config{}, err
	}
	return runner.Config{
		Workers:        cfg.Runner.Workers,
		QueueSize:      cfg.Runner.QueueSize,
		DefaultTimeout: timeout,
		SpawnPerSec:    cfg.Runner.SpawnPerSec,
	}, nil
}

func storageConfig(cfg *config.Config) (storage.Config, error) {
	if cfg.Storage == nil {
		return storage.Config{}, nil
	}
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, nil
}
