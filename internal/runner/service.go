// Package runner executes scheduled commands on a bounded worker pool.
//
// The pool sits between the scheduler and the OS: scheduler callbacks only
// enqueue, workers do the actual process spawning. Spawns are rate-limited
// so a misconfigured high-frequency task cannot fork-bomb the host.
package runner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tickd/internal/eventbus"
	logx "tickd/pkg/logx"
)

type Service struct {
	cfg Config
	log logx.Logger
	bus eventbus.Bus

	limiter *rate.Limiter

	mu      sync.Mutex
	running bool
	jobs    chan Job
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// lastDropWarn throttles the queue-full warning so a stuck worker pool
	// does not flood the log.
	lastDropWarn time.Time
}

func New(cfg Config, log logx.Logger, bus eventbus.Bus) *Service {
	cfg = cfg.normalized()
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:     cfg,
		log:     log,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(cfg.SpawnPerSec), cfg.SpawnPerSec),
	}
}

func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.jobs = make(chan Job, s.cfg.QueueSize)
	s.stopCh = make(chan struct{})
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.log.Info("runner started",
		logx.Int("workers", s.cfg.Workers),
		logx.Int("queue_size", s.cfg.QueueSize),
		logx.Int("spawn_per_sec", s.cfg.SpawnPerSec),
	)
}

// Stop drains nothing: queued-but-unstarted jobs are discarded, in-flight
// commands run to completion (or their timeout).
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("runner stopped")
}

// Enqueue submits a job for execution. It never blocks; when the queue is
// full (or the runner is stopped) the job is dropped and false is returned.
func (s *Service) Enqueue(job Job) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	jobs := s.jobs
	s.mu.Unlock()

	select {
	case jobs <- job:
		return true
	default:
	}

	s.mu.Lock()
	warn := time.Since(s.lastDropWarn) > 10*time.Second
	if warn {
		s.lastDropWarn = time.Now()
	}
	s.mu.Unlock()
	if warn {
		s.log.Warn("runner queue full; dropping job",
			logx.String("task", job.Name),
			logx.Int("queue_size", s.cfg.QueueSize),
		)
	}
	return false
}

// Callback adapts a job into the niladic callback shape the scheduler
// invokes on each deadline.
func (s *Service) Callback(job Job) func() {
	return func() { s.Enqueue(job) }
}

func (s *Service) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case job := <-s.jobs:
			res := s.execute(job)
			if s.bus != nil {
				s.bus.Publish(eventbus.Event{
					Type: eventbus.TypeRunFinished,
					Time: res.StartedAt.Add(res.Duration),
					Data: res,
				})
			}
			if res.OK() {
				s.log.Debug("job finished",
					logx.String("task", res.Task),
					logx.Duration("took", res.Duration),
				)
			} else {
				s.log.Warn("job failed",
					logx.String("task", res.Task),
					logx.Duration("took", res.Duration),
					logx.Int("exit_code", res.ExitCode),
					logx.String("error", res.Err),
				)
			}
		}
	}
}

// stopContext turns stopCh into a context so the rate limiter and command
// execution both unblock on shutdown.
func (s *Service) stopContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
