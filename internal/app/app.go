// Package app wires the tickd daemon together: config manager, logging,
// event bus, storage, runner, history, and the scheduler itself.
package app

import (
	"context"
	"sync"

	"tickd/internal/config"
	"tickd/internal/eventbus"
	"tickd/internal/history"
	"tickd/internal/runner"
	"tickd/internal/scheduler"
	"tickd/internal/storage"
	logx "tickd/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	bus   eventbus.Bus
	store storage.Store
	sched *scheduler.Scheduler
	run   *runner.Service
	hist  *history.Service

	// schedOffset is what the scheduler was built with; a reload cannot
	// change it.
	schedOffset int

	mu      sync.Mutex
	taskIDs map[string]scheduler.TaskID

	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, err
	}
	// Fail fast on schedules/timeouts the type-level Validate can't see.
	if _, err := planTasks(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	mgr.SetLogger(log.With(logx.String("comp", "config")))
	mgr.SetValidator(func(ctx context.Context, c *config.Config) error {
		_, err := planTasks(c)
		return err
	})

	storeCfg, err := storageConfig(cfg)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	store, err := storage.Open(storeCfg, log.With(logx.String("comp", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	bus := eventbus.New()

	runCfg, err := runnerConfig(cfg)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}
	run := runner.New(runCfg, log.With(logx.String("comp", "runner")), bus)

	hist := history.New(
		history.Config{Size: cfg.History.Size},
		log.With(logx.String("comp", "history")),
		bus, store,
	)

	sched := scheduler.New(
		scheduler.Config{UTCOffsetMinutes: cfg.Scheduler.UTCOffsetMinutes},
		log.With(logx.String("comp", "scheduler")),
	)

	return &App{
		cfgMgr:      mgr,
		logSvc:      logSvc,
		log:         log,
		bus:         bus,
		store:       store,
		sched:       sched,
		run:         run,
		hist:        hist,
		schedOffset: cfg.Scheduler.UTCOffsetMinutes,
		taskIDs:     map[string]scheduler.TaskID{},
	}, nil
}

// Scheduler exposes the live scheduler for introspection (task snapshots).
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }

// History exposes the run history service.
func (a *App) History() *history.Service { return a.hist }

func (a *App) Start(ctx context.Context) error {
	a.run.Start()
	a.hist.Start()
	a.sched.Start()

	if err := a.applyTasks(a.cfgMgr.Get()); err != nil {
		// Unreachable after the New()-time plan check, but keep the daemon
		// honest if registration semantics ever change.
		return err
	}

	wctx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.watchDone = make(chan struct{})
	updates := a.cfgMgr.Subscribe(4)
	go func() {
		defer close(a.watchDone)
		_ = a.cfgMgr.Watch(wctx)
	}()
	go a.reloadLoop(wctx, updates)

	a.log.Info("tickd started",
		logx.Int("tasks", len(a.cfgMgr.Get().Tasks)),
		logx.Int("utc_offset_minutes", a.cfgMgr.Get().Scheduler.UTCOffsetMinutes),
	)
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	_ = ctx
	if a.watchCancel != nil {
		a.watchCancel()
		<-a.watchDone
	}

	a.sched.Stop()
	a.run.Stop()
	a.hist.Stop()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("storage close failed", logx.Err(err))
		}
	}
	a.log.Info("tickd stopped")
	return a.logSvc.Close()
}

func (a *App) reloadLoop(ctx context.Context, updates chan *config.Config) {
	defer a.cfgMgr.Unsubscribe(updates)
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			a.logSvc.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			if err := a.applyTasks(cfg); err != nil {
				// Validator runs before publish, so this should not happen.
				a.log.Error("task reload failed", logx.Err(err))
				continue
			}
			a.log.Info("config reloaded", logx.Int("tasks", len(cfg.Tasks)))

			// Runner pool, storage and the clock offset are fixed at
			// construction; say so instead of silently ignoring a change.
			if cfg.Scheduler.UTCOffsetMinutes != a.schedOffset {
				a.log.Warn("scheduler.utc_offset_minutes changed; restart required to apply",
					logx.Int("running_with", a.schedOffset),
					logx.Int("configured", cfg.Scheduler.UTCOffsetMinutes),
				)
			}
		}
	}
}

// applyTasks replaces the registered task set with the one declared in cfg.
// Tasks are matched by name; removed tasks are cancelled, new and changed
// ones are (re-)registered. The scheduler keeps cancelled records, so ids
// stay strictly increasing across reloads.
func (a *App) applyTasks(cfg *config.Config) error {
	plans, err := planTasks(cfg)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for name, id := range a.taskIDs {
		a.sched.Cancel(id)
		delete(a.taskIDs, name)
	}
	for _, p := range plans {
		cb := a.run.Callback(p.job)
		var id scheduler.TaskID
		if p.cron != nil {
			id = a.sched.Cron(*p.cron, cb)
		} else {
			id = a.sched.Every(p.every, cb)
		}
		a.taskIDs[p.job.Name] = id
		a.log.Debug("task registered",
			logx.String("task", p.job.Name),
			logx.Uint64("id", uint64(id)),
		)
	}
	return nil
}
