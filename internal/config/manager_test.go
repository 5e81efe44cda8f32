package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
logging:
  level: debug
  console: true
scheduler:
  utc_offset_minutes: 420
runner:
  workers: 4
  default_timeout: 30s
storage:
  driver: file
  path: ./runs.jsonl
tasks:
  - name: heartbeat
    every: 30s
    command: ["echo", "ok"]
  - name: nightly
    cron: "0 30 2 * * *"
    command: ["backup.sh"]
    timeout: 5m
  - name: quarter
    cron_fields:
      seconds: [0, 15, 30, 45]
    command: ["tick"]
`

func TestManagerParseYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "tickd.yaml", sampleYAML)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
	if cfg.Scheduler.UTCOffsetMinutes != 420 {
		t.Fatalf("offset = %d", cfg.Scheduler.UTCOffsetMinutes)
	}
	if cfg.Runner.Workers != 4 || cfg.Runner.DefaultTimeout != "30s" {
		t.Fatalf("runner: %+v", cfg.Runner)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
	if len(cfg.Tasks) != 3 {
		t.Fatalf("tasks = %d", len(cfg.Tasks))
	}
	if cfg.Tasks[2].CronFields == nil || len(cfg.Tasks[2].CronFields.Seconds) != 4 {
		t.Fatalf("cron_fields: %+v", cfg.Tasks[2])
	}
}

func TestManagerParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "tickd.yaml", "loging:\n  level: info\ntasks: []\n")
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "missing name",
			cfg:  Config{Tasks: []TaskConfig{{Every: "1s", Command: []string{"x"}}}},
			want: "name is required",
		},
		{
			name: "duplicate name",
			cfg: Config{Tasks: []TaskConfig{
				{Name: "a", Every: "1s", Command: []string{"x"}},
				{Name: "a", Every: "2s", Command: []string{"x"}},
			}},
			want: "duplicate name",
		},
		{
			name: "no schedule",
			cfg:  Config{Tasks: []TaskConfig{{Name: "a", Command: []string{"x"}}}},
			want: "exactly one of",
		},
		{
			name: "two schedules",
			cfg: Config{Tasks: []TaskConfig{
				{Name: "a", Every: "1s", Cron: "* * * * *", Command: []string{"x"}},
			}},
			want: "exactly one of",
		},
		{
			name: "missing command",
			cfg:  Config{Tasks: []TaskConfig{{Name: "a", Every: "1s"}}},
			want: "command is required",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}

	ok := Config{Tasks: []TaskConfig{{Name: "a", Every: "1s", Command: []string{"x"}}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestLoadCommitGet(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "tickd.yaml", sampleYAML)
	m := NewManager(path)
	if m.Get() != nil {
		t.Fatal("Get before Load should be nil")
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the committed config")
	}
}
