// Package history keeps a bounded in-memory record of finished runs and,
// when storage is configured, journals them for later inspection.
package history

import (
	"context"
	"sync"
	"time"

	"tickd/internal/eventbus"
	"tickd/internal/runner"
	"tickd/internal/storage"
	logx "tickd/pkg/logx"
)

const defaultSize = 100

type Config struct {
	// Size bounds the in-memory ring. Zero or negative picks a default.
	Size int
}

type Service struct {
	size  int
	log   logx.Logger
	bus   eventbus.Bus
	store storage.Store // may be nil

	mu   sync.Mutex
	ring []runner.RunResult // oldest first

	running bool
	unsub   func()
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates the history service. store may be nil (in-memory only).
func New(cfg Config, log logx.Logger, bus eventbus.Bus, store storage.Store) *Service {
	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{size: size, log: log, bus: bus, store: store}
}

func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.bus == nil {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})

	events, unsub := s.bus.Subscribe(64)
	s.unsub = unsub

	s.wg.Add(1)
	go s.loop(events)
}

func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.wg.Wait()
}

func (s *Service) loop(events <-chan eventbus.Event) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type != eventbus.TypeRunFinished {
				continue
			}
			res, ok := e.Data.(runner.RunResult)
			if !ok {
				continue
			}
			s.record(res)
		}
	}
}

func (s *Service) record(res runner.RunResult) {
	s.mu.Lock()
	s.ring = append(s.ring, res)
	if len(s.ring) > s.size {
		s.ring = s.ring[len(s.ring)-s.size:]
	}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	// Journaling is best-effort: a broken disk must not affect scheduling.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rec := storage.RunRecord{
		At:         res.StartedAt,
		Task:       res.Task,
		DurationMS: res.Duration.Milliseconds(),
		ExitCode:   res.ExitCode,
		Error:      res.Err,
	}
	if err := s.store.AppendRun(ctx, rec); err != nil {
		s.log.Warn("run journal append failed", logx.String("task", res.Task), logx.Err(err))
	}
}

// Snapshot returns the retained runs, newest first.
func (s *Service) Snapshot() []runner.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]runner.RunResult, 0, len(s.ring))
	for i := len(s.ring) - 1; i >= 0; i-- {
		out = append(out, s.ring[i])
	}
	return out
}
