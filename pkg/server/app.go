package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"QuantSift/internal/domain/repository"
	"QuantSift/internal/usecase"
	pkgch "QuantSift/pkg/clickhouse"
	"QuantSift/pkg/config"
	xhttp "QuantSift/pkg/http"
	applogger "QuantSift/pkg/logger"
	"QuantSift/pkg/queue"
)

// App encapsulates the entire application lifecycle: the HTTP API, the
// periodic scan scheduler, the realtime quote stream and the async scan
// queue worker.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	pipeline  *usecase.ScanPipeline
	recorder  *usecase.RunRecorder
	store     repository.ArtifactStore
	publisher repository.RecordPublisher
	quotes    repository.QuoteStream
	consumer  *queue.RedisQueue
	chClient  *pkgch.Client

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	pipeline *usecase.ScanPipeline,
	recorder *usecase.RunRecorder,
	store repository.ArtifactStore,
	publisher repository.RecordPublisher,
	quotes repository.QuoteStream,
	consumer *queue.RedisQueue,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		pipeline:  pipeline,
		recorder:  recorder,
		store:     store,
		publisher: publisher,
		quotes:    quotes,
		consumer:  consumer,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.store != nil {
		if err := a.store.Init(ctx); err != nil {
			a.log.Error("artifact store init error", applogger.Error(err))
			return err
		}
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(!a.cfg.Server.DisableCORS),
	)

	if a.quotes != nil {
		if err := a.quotes.Start(ctx); err != nil {
			// The realtime price is an optional confirmation input, so the
			// app keeps running without it.
			a.log.Warn("quote stream start error", applogger.Error(err))
		} else {
			a.log.Info("quote stream started")
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.log.Error("queue consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("scan queue worker started")
	}

	if a.cfg.Screen.Interval > 0 {
		go a.runScheduler(ctx)
		a.log.Info("scan scheduler started",
			applogger.Duration("interval", a.cfg.Screen.Interval),
			applogger.Int("universe", len(a.cfg.Screen.Universe)),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// runScheduler executes one scan per interval tick until the context ends.
func (a *App) runScheduler(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Screen.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runOnce(ctx)
		}
	}
}

func (a *App) runOnce(ctx context.Context) {
	artifact, err := a.pipeline.Run(ctx, a.cfg.Screen.Universe)
	if err != nil {
		a.log.Error("scheduled scan error", applogger.Error(err))
		return
	}
	if err := a.recorder.Record(ctx, artifact); err != nil {
		a.log.Error("scheduled scan record error",
			applogger.String("run_id", artifact.RunID), applogger.Error(err))
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("queue consumer stop error", applogger.Error(err))
		}
	}

	if a.quotes != nil {
		if err := a.quotes.Close(); err != nil {
			a.log.Warn("quote stream close error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		// Flushes buffered records before the writer goes away.
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("record publisher close error", applogger.Error(err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("artifact store close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
