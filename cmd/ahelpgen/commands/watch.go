package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/ahelpgen/internal/metrics"
	"git.home.luguber.info/inful/ahelpgen/internal/observability"
)

// WatchCmd implements the 'watch' command: reconvert when the catalog
// changes, with an optional periodic full rebuild and a metrics endpoint.
type WatchCmd struct{}

// Run executes the watch command. It blocks until interrupted.
func (cmd *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One probe run up front to validate the configuration and discover
	// the watch path.
	probe, err := setup(ctx, root.Config, nil)
	if err != nil {
		return err
	}
	watchPath := probe.cfg.Catalog.Path
	watchCfg := probe.cfg.Watch
	probe.cleanup()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if watchCfg.MetricsAddr != "" {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		srv := &http.Server{
			Addr:              watchCfg.MetricsAddr,
			Handler:           metrics.HTTPHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				observability.ErrorContext(ctx, fmt.Sprintf("metrics server: %v", err))
			}
		}()
		defer func() { _ = srv.Close() }()
		observability.InfoContext(ctx, "serving metrics on "+watchCfg.MetricsAddr)
	}

	rebuild := func() {
		rctx := observability.WithRunID(ctx, observability.NewRunID())
		r, err := setup(rctx, root.Config, rec)
		if err != nil {
			observability.ErrorContext(rctx, fmt.Sprintf("setup: %v", err))
			return
		}
		defer r.cleanup()
		summary, err := r.runner.Run(rctx)
		if err != nil {
			observability.ErrorContext(rctx, fmt.Sprintf("run: %v", err))
			return
		}
		fmt.Fprintln(os.Stderr, summary.String())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(watchPath); err != nil {
		return fmt.Errorf("watch %s: %w", watchPath, err)
	}

	rebuildReq, trigger := debouncer(time.Duration(watchCfg.DebounceMillis) * time.Millisecond)

	if watchCfg.Schedule != "" {
		sched, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
		if _, err := sched.NewJob(
			gocron.CronJob(watchCfg.Schedule, false),
			gocron.NewTask(trigger),
			gocron.WithName("full-rebuild"),
		); err != nil {
			return fmt.Errorf("schedule rebuild: %w", err)
		}
		sched.Start()
		defer func() { _ = sched.Shutdown() }()
	}

	observability.InfoContext(ctx, "watching "+watchPath)
	rebuild()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			observability.ErrorContext(ctx, fmt.Sprintf("watcher: %v", err))
		case <-rebuildReq:
			rebuild()
		}
	}
}

// debouncer collapses bursts of triggers into one request after the quiet
// period.
func debouncer(quiet time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}

	return req, trigger
}
