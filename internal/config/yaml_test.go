package config

import (
	"bytes"
	"testing"
)

func TestToStrictJSON(t *testing.T) {
	t.Parallel()

	// Non-yaml extensions pass through untouched, even if malformed: the
	// strict JSON decode reports those errors itself.
	raw := []byte(`{"tasks": []`)
	got, err := toStrictJSON("tickd.json", raw)
	if err != nil {
		t.Fatalf("json passthrough: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("json passthrough rewrote input: %q", got)
	}

	// YAML with non-string keys (YAML allows them, JSON does not).
	got, err = toStrictJSON("tickd.yaml", []byte("1: one\n2: two\n"))
	if err != nil {
		t.Fatalf("non-string keys: %v", err)
	}
	want := `{"1":"one","2":"two"}`
	if string(got) != want {
		t.Fatalf("non-string keys = %s, want %s", got, want)
	}

	if _, err := toStrictJSON("tickd.yml", []byte(":\n\t-")); err == nil {
		t.Fatal("expected error for broken yaml")
	}
}
