// Package audio plays feedback cues and track previews through an external
// player and resolves mood cues from a directory of clips.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/hajimehoshi/go-mp3"
	"go.uber.org/zap"
)

// CueLibrary resolves sfx-<mood>.mp3 clips from a directory, falling back to
// sfx-default.mp3.
type CueLibrary struct {
	dir    string
	logger *zap.Logger
}

var _ ports.CueLibrary = (*CueLibrary)(nil)

func NewCueLibrary(dir string, logger *zap.Logger) *CueLibrary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CueLibrary{dir: dir, logger: logger}
}

func (l *CueLibrary) Resolve(label string) (domain.Cue, error) {
	label = domain.NormalizeLabel(label)
	if label == "" {
		return domain.Cue{}, fmt.Errorf("audio: cue without mood: %w", domain.ErrInvalidArgument)
	}

	for _, name := range []string{domain.CueFileName(label), domain.CueFileName(domain.DefaultCueLabel)} {
		path := filepath.Join(l.dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		length, err := probeLength(path)
		if err != nil {
			l.logger.Warn("audio: cue length unknown", zap.String("path", path), zap.Error(err))
		}
		return domain.Cue{Label: label, Source: path, Length: length}, nil
	}
	return domain.Cue{}, fmt.Errorf("audio: no cue for %q in %s: %w", label, l.dir, domain.ErrNotFound)
}

// probeLength decodes the MP3 header chain to find the clip's natural length.
func probeLength(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	if d.SampleRate() <= 0 || d.Length() < 0 {
		return 0, fmt.Errorf("decode mp3: unknown length")
	}
	// Decoded output is 16-bit stereo: four bytes per sample frame.
	samples := d.Length() / 4
	return time.Duration(samples) * time.Second / time.Duration(d.SampleRate()), nil
}
