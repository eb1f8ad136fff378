package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fleet-monitor/simulator/internal/config"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/metrics"
	"fleet-monitor/simulator/internal/pipeline"
	"fleet-monitor/simulator/internal/store"
)

// sinks owns the optional snapshot consumers: Redis live state, TimescaleDB
// history, alert recording and the WebSocket stream.
type sinks struct {
	dispatcher *pipeline.Dispatcher
	group      *errgroup.Group
	cancel     context.CancelFunc
	server     *http.Server
	closers    []func()
}

func startSinks(ctx context.Context, cfg *config.Config, lg *log.Logger) (*sinks, error) {
	var (
		redisStore *store.RedisStore
		dbStore    *store.TimescaleStore
		closers    []func()
	)

	if cfg.RedisAddr != "" {
		rs, err := store.NewRedisStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		redisStore = rs
		closers = append(closers, func() { rs.Close() })
	}
	if cfg.DBEnabled {
		ts, err := store.NewTimescaleStore(ctx, cfg)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, err
		}
		dbStore = ts
		closers = append(closers, ts.Close)
	}

	size := func(enabled bool) int {
		if enabled {
			return cfg.SnapshotChannelSize
		}
		return 0
	}
	d := pipeline.NewDispatcher(
		size(dbStore != nil),
		size(redisStore != nil),
		size(dbStore != nil || redisStore != nil),
		size(cfg.HTTPPort != ""),
	)

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(workerCtx)

	if dbStore != nil {
		w := pipeline.NewDBWriter(d.DBChan, dbStore, cfg.DBBatchSize, cfg.DBFlushIntervalMS, lg)
		g.Go(func() error { w.Run(gctx); return nil })
	}
	if redisStore != nil {
		w := pipeline.NewStateWriter(d.StateChan, redisStore, lg)
		g.Go(func() error { w.Run(gctx); return nil })
	}
	if d.AlertChan != nil {
		var (
			alertDB    pipeline.AlertStore
			alertDedup pipeline.AlertDeduper
		)
		if dbStore != nil {
			alertDB = dbStore
		}
		if redisStore != nil {
			alertDedup = redisStore
		}
		e := pipeline.NewAlertEvaluator(d.AlertChan, alertDB, alertDedup, lg)
		g.Go(func() error { e.Run(gctx); return nil })
	}

	s := &sinks{dispatcher: d, group: g, cancel: cancel, closers: closers}

	if cfg.HTTPPort != "" {
		checks := map[string]metrics.Pinger{}
		if redisStore != nil {
			checks["redis"] = redisStore
		}
		if dbStore != nil {
			checks["timescale"] = dbStore
		}

		b := pipeline.NewBroadcaster(d.WSChan, lg)
		g.Go(func() error { b.Run(gctx); return nil })

		mux := http.NewServeMux()
		mux.HandleFunc("/metrics", metrics.HandleMetrics)
		mux.HandleFunc("/healthz", metrics.HandleHealth(checks))
		mux.HandleFunc("/ws", b.HandleWebSocket)
		s.server = &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux}
		g.Go(func() error {
			lg.Info("listening", slog.String("addr", s.server.Addr))
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	return s, nil
}

// stop drains buffered snapshots, then shuts everything down.
func (s *sinks) stop() error {
	s.dispatcher.Close()
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		s.cancel()
		err = <-done
	}
	s.cancel()

	for _, c := range s.closers {
		c()
	}
	return err
}
