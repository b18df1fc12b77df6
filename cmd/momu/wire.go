package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ewilliams-labs/momu/internal/adapters/audio"
	"github.com/ewilliams-labs/momu/internal/adapters/camera"
	"github.com/ewilliams-labs/momu/internal/adapters/memory"
	"github.com/ewilliams-labs/momu/internal/adapters/predictor"
	"github.com/ewilliams-labs/momu/internal/adapters/spotify"
	"github.com/ewilliams-labs/momu/internal/adapters/sqlite"
	"github.com/ewilliams-labs/momu/internal/config"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/ewilliams-labs/momu/internal/core/services"
	"github.com/ewilliams-labs/momu/internal/metrics"
	"go.uber.org/zap"
)

// openStore picks the mood profile store by driver. The returned closer is
// never nil.
func openStore(cfg config.StorageConfig) (ports.MoodStore, func() error, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.NewAdapter(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return db, db.Close, nil
	case "memory", "":
		return memory.NewStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

func newClassifier(cfg config.ClassifierConfig, log *zap.Logger) ports.MoodClassifier {
	log = log.Named("predictor")
	if cfg.Mode == "command" {
		return predictor.NewCommandClient(cfg.Command, cfg.Args, cfg.Dir, cfg.Timeout, log)
	}
	return predictor.NewClient(cfg.URL, cfg.Timeout, log)
}

func newCamera(cfg config.CameraConfig, log *zap.Logger) *camera.Adapter {
	var device ports.CameraDevice
	switch cfg.Mode {
	case "snapshot":
		device = camera.NewSnapshotDevice(cfg.URL, cfg.Timeout)
	case "command":
		device = camera.NewCommandDevice(cfg.Command, cfg.Args, cfg.Timeout)
	case "file":
		device = camera.NewFileDevice(cfg.File)
	default:
		device = camera.UnavailableDevice{}
	}
	return camera.NewAdapter(device, log.Named("camera"))
}

// newSinks returns separate sinks for feedback cues and track previews so
// a cue never cuts off a preview and the other way round.
func newSinks(cfg config.AudioConfig, log *zap.Logger) (cue, preview ports.AudioSink) {
	log = log.Named("audio")
	if cfg.Player == "" {
		return audio.NopSink{Logger: log}, audio.NopSink{Logger: log}
	}
	return audio.NewCommandSink(cfg.Player, cfg.PlayerArgs, log.With(zap.String("sink", "cue"))),
		audio.NewCommandSink(cfg.Player, cfg.PlayerArgs, log.With(zap.String("sink", "preview")))
}

func newCatalog(cfg config.SpotifyConfig, moods ports.MoodStore, m *metrics.Metrics, log *zap.Logger) *spotify.Client {
	log = log.Named("spotify")
	opts := spotify.TokenCacheOptions{
		TokenURL:   cfg.TokenURL,
		DefaultTTL: cfg.TokenTTL,
	}
	if m != nil {
		opts.OnFetch = m.ObserveTokenFetch
	}
	tokens := spotify.NewTokenCache(cfg.ClientID, cfg.ClientSecret, log, opts)
	return spotify.NewClient(tokens, moods, log, spotify.Options{
		BaseURL:     cfg.APIURL,
		Market:      cfg.Market,
		MaxRetries:  cfg.MaxRetries,
		BaseBackoff: cfg.RetryBackoff,
		Timeout:     cfg.Timeout,
	})
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func newFinder(cfg *config.Config, moods ports.MoodStore, m *metrics.Metrics, log *zap.Logger) *services.PlaylistFinder {
	catalog := newCatalog(cfg.Spotify, moods, m, log)
	return services.NewPlaylistFinder(catalog, newRand(cfg.RandomSeed), log.Named("playlists"))
}
