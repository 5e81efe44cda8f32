package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`

	// Runner controls execution of scheduled commands.
	Runner RunnerConfig `json:"runner,omitempty"`

	// History controls the in-memory run history ring.
	History HistoryConfig `json:"history,omitempty"`

	Storage *StorageConfig `json:"storage,omitempty"`

	Tasks []TaskConfig `json:"tasks"`
}

type LoggingConfig struct {
	Level   string     `json:"level"`
	Console bool       `json:"console"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// SchedulerConfig controls the core scheduler.
//
// UTCOffsetMinutes is a fixed offset; daylight saving is intentionally not
// modeled (e.g. 420 for UTC+7).
type SchedulerConfig struct {
	UTCOffsetMinutes int `json:"utc_offset_minutes,omitempty"`
}

// RunnerConfig controls the command execution pool.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
//
// Defaults (when fields are omitted/zero):
//   - workers: 2
//   - queue_size: 64
//   - default_timeout: "0s" (disabled)
//   - spawn_per_sec: 8
type RunnerConfig struct {
	Workers   int `json:"workers,omitempty"`
	QueueSize int `json:"queue_size,omitempty"`

	// DefaultTimeout is a Go duration string. "0s" disables the global
	// default; per-task timeouts still apply.
	DefaultTimeout string `json:"default_timeout,omitempty"`

	// SpawnPerSec rate-limits process spawns across all jobs.
	SpawnPerSec int `json:"spawn_per_sec,omitempty"`
}

type HistoryConfig struct {
	Size int `json:"size,omitempty"`
}

type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// TaskConfig declares one scheduled job. Exactly one of Every, Cron or
// CronFields selects the schedule.
type TaskConfig struct {
	Name string `json:"name"`

	// Every is a Go duration string ("30s", "2h30m") for interval tasks.
	Every string `json:"every,omitempty"`

	// Cron is a standard cron expression (5-field, 6-field with leading
	// seconds, or "@hourly"-style descriptors).
	Cron string `json:"cron,omitempty"`

	// CronFields gives the six match sets directly. Empty/omitted lists
	// are wildcards.
	CronFields *CronFieldsConfig `json:"cron_fields,omitempty"`

	Command []string `json:"command"`

	// Timeout is a Go duration string; overrides runner.default_timeout.
	Timeout string `json:"timeout,omitempty"`
}

type CronFieldsConfig struct {
	Seconds  []int `json:"seconds,omitempty"`
	Minutes  []int `json:"minutes,omitempty"`
	Hours    []int `json:"hours,omitempty"`
	Days     []int `json:"days,omitempty"`
	Months   []int `json:"months,omitempty"`
	Weekdays []int `json:"weekdays,omitempty"`
}

// Validate checks cross-field constraints the JSON decoder can't express.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	seen := map[string]bool{}
	for i, t := range c.Tasks {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return fmt.Errorf("tasks[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("tasks[%d]: duplicate name %q", i, name)
		}
		seen[name] = true

		forms := 0
		if strings.TrimSpace(t.Every) != "" {
			forms++
		}
		if strings.TrimSpace(t.Cron) != "" {
			forms++
		}
		if t.CronFields != nil {
			forms++
		}
		if forms != 1 {
			return fmt.Errorf("tasks[%d] %q: exactly one of every/cron/cron_fields is required", i, name)
		}
		if len(t.Command) == 0 || strings.TrimSpace(t.Command[0]) == "" {
			return fmt.Errorf("tasks[%d] %q: command is required", i, name)
		}
	}
	return nil
}
