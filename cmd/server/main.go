package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"travel-records-service/internal/domain/repository"
	"travel-records-service/internal/infrastructure/config"
	"travel-records-service/internal/infrastructure/persistence"
	"travel-records-service/internal/interface/httpapi"
	mirrorRepo "travel-records-service/internal/interface/repository"
	"travel-records-service/internal/usecase"
	"travel-records-service/pkg/logger"
	"travel-records-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Travel Records Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	format, err := persistence.ParseFormat(cfg.DataFormat)
	if err != nil {
		log.Fatal("Invalid data format", "error", err)
	}
	store, err := persistence.NewFileStore(afero.NewOsFs(), cfg.DataFile, format, log)
	if err != nil {
		log.Fatal("Failed to open record store", "error", err)
	}

	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	service := usecase.NewRecordService(store, m, log)
	if err := service.LoadError(); err != nil {
		log.Warn("Continuing with the records that could be loaded", "error", err)
	}

	// Optional database mirror
	mirror, closeMirror, err := setupMirror(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to set up record mirror", "driver", cfg.MirrorDriver, "error", err)
	}
	mirrorDone := make(chan struct{})
	if mirror != nil {
		worker := usecase.NewMirrorWorker(mirror, cfg.MirrorTimeout, m, log)
		service.SetPublisher(worker)
		service.PublishSnapshot()
		go func() {
			defer close(mirrorDone)
			worker.Run(ctx)
		}()
	} else {
		close(mirrorDone)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	httpapi.NewHandler(service, cfg.AppVersion, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop the mirror worker
	<-mirrorDone

	if closeMirror != nil {
		if err := closeMirror(shutdownCtx); err != nil {
			log.Error("Mirror disconnect error", "error", err)
		}
	}

	log.Info("Travel Records Service stopped")
}

// setupMirror connects the configured mirror database. It returns a nil
// mirror when mirroring is disabled.
func setupMirror(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.RecordMirror, func(context.Context) error, error) {
	switch cfg.MirrorDriver {
	case config.MirrorMongo:
		log.Info("Connecting to MongoDB")
		client, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword, cfg.MirrorTimeout)
		if err != nil {
			return nil, nil, err
		}
		db := persistence.GetDatabase(client, cfg.MongoDB)
		mirror, err := mirrorRepo.NewMongoRecordMirror(ctx, db)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return mirror, client.Disconnect, nil

	case config.MirrorPostgres:
		log.Info("Connecting to PostgreSQL")
		db, err := persistence.NewPostgresDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		mirror, err := mirrorRepo.NewGormRecordMirror(db)
		if err != nil {
			_ = persistence.ClosePostgresDB(db)
			return nil, nil, err
		}
		return mirror, func(context.Context) error { return persistence.ClosePostgresDB(db) }, nil
	}
	return nil, nil, nil
}
