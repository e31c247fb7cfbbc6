package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jakeagle/TrinityCapital-sub002/internal/account"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/config"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/db"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/events"
	httpx "github.com/Jakeagle/TrinityCapital-sub002/internal/http"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/ledger"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/lesson"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/logging"
	"github.com/Jakeagle/TrinityCapital-sub002/internal/sched"
)

func main() {
	log := logging.Setup()

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.WithError(err).Fatal("db migrate")
	}

	var emitter events.Emitter = events.Nop{}
	if cfg.LessonEngineURL != "" {
		emitter = events.NewWebhook(cfg.LessonEngineURL, log)
	}

	store := sched.NewStore(gdb)
	applier := ledger.NewApplier(gdb, emitter, log)
	core := sched.NewCore(applier, log, sched.CoreOptions{
		RetryMax:     cfg.RetryMax,
		RetryBackoff: cfg.RetryBackoff,
		ApplyTimeout: cfg.ApplyTimeout,
		Concurrency:  cfg.Concurrency,
	})

	ctx, cancel := context.WithCancel(context.Background())
	core.Start(ctx)

	recovery := &sched.Recovery{
		Store:      store,
		Applier:    applier,
		Registry:   core,
		Log:        log,
		CatchUpMax: cfg.CatchUpMax,
	}

	// Catch up missed occurrences and arm every active job before the
	// server takes traffic.
	if err := recovery.Run(ctx); err != nil {
		log.WithError(err).Fatal("recovery scan")
	}
	go recovery.Sweep(ctx, cfg.SweepInterval)

	r := httpx.NewRouter(cfg, httpx.Deps{
		Jobs:     store,
		Core:     core,
		Accounts: &account.Service{DB: gdb},
		Timers:   &lesson.Store{DB: gdb},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("serve")
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	// In-flight applies finish before the process exits.
	core.Stop()
}
