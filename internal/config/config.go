// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full runtime configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Spotify    SpotifyConfig    `mapstructure:"spotify"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Audio      AudioConfig      `mapstructure:"audio"`
	Storage    StorageConfig    `mapstructure:"storage"`
	// RandomSeed fixes playlist selection when non-zero.
	RandomSeed int64 `mapstructure:"random_seed"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	// File enables a rotating log file next to stdout.
	File string `mapstructure:"file"`
}

// SpotifyConfig holds the catalog provider settings. Credentials are only
// checked by ValidateCatalog so commands that never touch the catalog can
// run without them.
type SpotifyConfig struct {
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Market       string        `mapstructure:"market" validate:"len=2,alpha"`
	APIURL       string        `mapstructure:"api_url" validate:"required,url"`
	TokenURL     string        `mapstructure:"token_url" validate:"required,url"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	MaxRetries   int           `mapstructure:"max_retries" validate:"min=1,max=10"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type ClassifierConfig struct {
	Mode    string        `mapstructure:"mode" validate:"oneof=http command"`
	URL     string        `mapstructure:"url" validate:"required_if=Mode http,omitempty,url"`
	Command string        `mapstructure:"command" validate:"required_if=Mode command"`
	Args    []string      `mapstructure:"args"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CameraConfig struct {
	Mode    string        `mapstructure:"mode" validate:"oneof=none snapshot command file"`
	URL     string        `mapstructure:"url" validate:"required_if=Mode snapshot,omitempty,url"`
	Command string        `mapstructure:"command" validate:"required_if=Mode command"`
	Args    []string      `mapstructure:"args"`
	File    string        `mapstructure:"file" validate:"required_if=Mode file"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AudioConfig struct {
	// Player is an external command such as mpg123; empty disables audio.
	Player         string        `mapstructure:"player"`
	PlayerArgs     []string      `mapstructure:"player_args"`
	CueDir         string        `mapstructure:"cue_dir"`
	CueMaxDuration time.Duration `mapstructure:"cue_max_duration"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory sqlite"`
	Path   string `mapstructure:"path" validate:"required_if=Driver sqlite"`
}

// Validate checks struct tags and duration bounds.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"http.shutdown_timeout", c.HTTP.ShutdownTimeout},
		{"spotify.token_ttl", c.Spotify.TokenTTL},
		{"spotify.retry_backoff", c.Spotify.RetryBackoff},
		{"spotify.timeout", c.Spotify.Timeout},
		{"classifier.timeout", c.Classifier.Timeout},
		{"camera.timeout", c.Camera.Timeout},
		{"audio.cue_max_duration", c.Audio.CueMaxDuration},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%s: must be a positive duration, got %s", d.name, d.d)
		}
	}
	return nil
}

// ValidateCatalog checks the settings needed to talk to Spotify.
func (c *Config) ValidateCatalog() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required")
	}
	return nil
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s: is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s validation (value %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
