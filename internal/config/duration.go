package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration-valued fields (task every/timeout, runner.default_timeout,
// storage.busy_timeout) arrive from the decoder as plain strings and are
// resolved here so every caller reports errors with the same
// config-path prefix.

// ParseDurationField resolves one duration field. Empty or whitespace-only
// means "unset" and yields zero. Negative durations are always rejected;
// whether zero is acceptable is the caller's decision.
func ParseDurationField(path, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with a fallback: unset (or
// zero) resolves to def.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
