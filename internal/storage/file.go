package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "tickd/pkg/logx"
)

// fileRingSize bounds how many recent runs the file driver keeps readable.
// The jsonl file itself is append-only and unbounded.
const fileRingSize = 200

// fileStore is a dependency-free persistence backend: an append-only JSON
// Lines log plus an in-memory ring of the most recent records (seeded from
// the log's tail at open) to serve RecentRuns without re-reading the file.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	file *os.File
	ring []RunRecord // at most fileRingSize, oldest first
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	if filepath.Ext(path) == "" {
		path += ".runs.jsonl"
	}

	ring, err := loadTail(path, fileRingSize)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("run journal unreadable; starting empty", logx.String("path", path), logx.Err(err))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{log: log, file: f, ring: ring}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *fileStore) AppendRun(ctx context.Context, r RunRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return errors.New("run journal closed")
	}
	if err := json.NewEncoder(s.file).Encode(r); err != nil {
		return err
	}
	s.ring = append(s.ring, r)
	if len(s.ring) > fileRingSize {
		s.ring = s.ring[len(s.ring)-fileRingSize:]
	}
	return nil
}

func (s *fileStore) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	_ = ctx
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.ring)
	if limit > n {
		limit = n
	}
	// Newest first, matching the sqlite driver.
	out := make([]RunRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.ring[i])
	}
	return out, nil
}

func loadTail(path string, keep int) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ring []RunRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r RunRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		ring = append(ring, r)
		if len(ring) > keep {
			ring = ring[len(ring)-keep:]
		}
	}
	return ring, sc.Err()
}
