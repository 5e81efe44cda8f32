package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "tickd/pkg/logx"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.jsonl")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r := RunRecord{
			At:         time.Date(2026, 8, 23, 12, 0, i, 0, time.UTC),
			Task:       "heartbeat",
			DurationMS: int64(10 + i),
		}
		if err := st.AppendRun(ctx, r); err != nil {
			t.Fatalf("AppendRun: %v", err)
		}
	}

	runs, err := st.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].DurationMS != 12 || runs[1].DurationMS != 11 {
		t.Fatalf("unexpected order: %+v", runs)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen: the tail must be readable again.
	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	runs, err = st2.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns after reopen: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len after reopen = %d, want 3", len(runs))
	}
}

func TestOpenDisabledAndUnknown(t *testing.T) {
	t.Parallel()

	st, err := Open(Config{}, logx.Nop())
	if err != nil || st != nil {
		t.Fatalf("empty driver: st=%v err=%v, want nil,nil", st, err)
	}
	st, err = Open(Config{Driver: "none"}, logx.Nop())
	if err != nil || st != nil {
		t.Fatalf("driver none: st=%v err=%v, want nil,nil", st, err)
	}
	if _, err = Open(Config{Driver: "bogus"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
