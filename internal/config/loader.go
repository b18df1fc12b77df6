package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// DefaultEnvFile is read when present; a missing file is not an error.
const DefaultEnvFile = ".env"

var defaults = map[string]any{
	"http.addr":              ":4000",
	"http.shutdown_timeout":  10 * time.Second,
	"log.level":              "info",
	"spotify.market":         "ID",
	"spotify.api_url":        "https://api.spotify.com/v1",
	"spotify.token_url":      spotifyauth.TokenURL,
	"spotify.token_ttl":      5 * time.Minute,
	"spotify.max_retries":    3,
	"spotify.retry_backoff":  500 * time.Millisecond,
	"spotify.timeout":        10 * time.Second,
	"classifier.mode":        "http",
	"classifier.url":         "http://localhost:5000",
	"classifier.timeout":     15 * time.Second,
	"camera.mode":            "none",
	"camera.timeout":         5 * time.Second,
	"audio.cue_dir":          "sfx",
	"audio.cue_max_duration": 2 * time.Second,
	"storage.driver":         "memory",
	"storage.path":           "momu.db",
}

// Load reads envFile (if it exists) into the process environment, then
// builds and validates a Config. Variables already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := newViper()
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Spotify.Market = strings.ToUpper(cfg.Spotify.Market)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// newViper binds every key to its environment variable. Keys map to
// variables by upper-casing and replacing dots, so spotify.client_id is
// read from SPOTIFY_CLIENT_ID.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	for _, key := range []string{
		"http.addr", "http.shutdown_timeout",
		"log.level", "log.file",
		"spotify.client_id", "spotify.client_secret", "spotify.market",
		"spotify.api_url", "spotify.token_url", "spotify.token_ttl",
		"spotify.max_retries", "spotify.retry_backoff", "spotify.timeout",
		"classifier.mode", "classifier.url", "classifier.command",
		"classifier.args", "classifier.dir", "classifier.timeout",
		"camera.mode", "camera.url", "camera.command", "camera.args",
		"camera.file", "camera.timeout",
		"audio.player", "audio.player_args", "audio.cue_dir", "audio.cue_max_duration",
		"storage.driver", "storage.path",
	} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("random_seed", "MOMU_RANDOM_SEED")
	return v
}
