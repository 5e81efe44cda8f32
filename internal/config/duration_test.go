package config

import (
	"testing"
	"time"
)

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty is unset", raw: "", want: 0},
		{name: "whitespace is unset", raw: "   ", want: 0},
		{name: "simple", raw: "30s", want: 30 * time.Second},
		{name: "compound", raw: "2h30m", want: 2*time.Hour + 30*time.Minute},
		{name: "explicit zero", raw: "0s", want: 0},
		{name: "negative rejected", raw: "-5s", wantErr: true},
		{name: "garbage rejected", raw: "soon", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDurationField("x.y", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDurationField(%q): expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDurationField(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDurationField(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()

	if d, err := ParseDurationOrDefault("x", "", time.Minute); err != nil || d != time.Minute {
		t.Fatalf("unset: d=%v err=%v, want 1m,nil", d, err)
	}
	if d, err := ParseDurationOrDefault("x", "0s", time.Minute); err != nil || d != time.Minute {
		t.Fatalf("zero: d=%v err=%v, want 1m,nil", d, err)
	}
	if d, err := ParseDurationOrDefault("x", "10s", time.Minute); err != nil || d != 10*time.Second {
		t.Fatalf("set: d=%v err=%v, want 10s,nil", d, err)
	}
	if _, err := ParseDurationOrDefault("x", "nope", time.Minute); err == nil {
		t.Fatal("invalid value must not fall back to the default")
	}
}
