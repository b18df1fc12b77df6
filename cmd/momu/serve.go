package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/momu/internal/adapters/audio"
	"github.com/ewilliams-labs/momu/internal/adapters/rest"
	"github.com/ewilliams-labs/momu/internal/core/services"
	"github.com/ewilliams-labs/momu/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	// 1. Configuration: fail early without catalog credentials
	if err := cfg.ValidateCatalog(); err != nil {
		return err
	}

	// 2. Driven adapters
	moods, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	finder := newFinder(cfg, moods, m, log)
	classifier := newClassifier(cfg.Classifier, log)
	cam := newCamera(cfg.Camera, log)
	defer cam.Stop()

	cueSink, previewSink := newSinks(cfg.Audio, log)
	defer cueSink.Stop()
	defer previewSink.Stop()
	feedback := services.NewFeedbackPlayer(
		cueSink,
		audio.NewCueLibrary(cfg.Audio.CueDir, log.Named("cues")),
		clock.RealClock{},
		cfg.Audio.CueMaxDuration,
		log.Named("feedback"),
	)
	defer feedback.Cancel()

	// 3. Core
	session := services.NewSession(services.SessionDeps{
		Camera:     cam,
		Classifier: classifier,
		Playlists:  finder,
		Feedback:   feedback,
		Player:     previewSink,
		Moods:      moods,
		Observer:   m,
		Logger:     log.Named("session"),
	})

	// 4. Driving adapter
	handler := rest.NewHandler(rest.Deps{
		Classifier: classifier,
		Playlists:  finder,
		Session:    session,
		Moods:      moods,
		Metrics:    m,
		Logger:     log.Named("rest"),
	})

	// 5. Start the server
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()
	log.Info("momu API is running",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("classifier", cfg.Classifier.Mode),
		zap.String("camera", cfg.Camera.Mode))

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", zap.Error(err))
			return err
		}
		return <-serverErr
	}
}
