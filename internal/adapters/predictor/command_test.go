package predictor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"go.uber.org/zap/zaptest"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandClient_Classify(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name    string
		script  string
		want    string
		wantErr error
	}{
		{
			name:   "prints prediction",
			script: `echo '{"prediction":"Happy","confidence":0.7}'`,
			want:   "happy",
		},
		{
			name:   "receives the staged frame path",
			script: `test -s "$1" && echo '{"prediction":"sad"}'`,
			want:   "sad",
		},
		{
			name:    "reports no face",
			script:  `echo '{"error":"No face detected"}'`,
			wantErr: domain.ErrInvalidResponse,
		},
		{
			name:    "crashes without output",
			script:  `echo boom >&2; exit 3`,
			wantErr: domain.ErrTransportFailure,
		},
		{
			name:    "prints garbage",
			script:  `echo not-json`,
			wantErr: domain.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := NewCommandClient("sh", []string{"-c", tt.script, "sh"}, "", 5*time.Second, zaptest.NewLogger(t))
			got, err := client.Classify(context.Background(), pngFrame)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Label != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.Label)
			}
		})
	}
}

func TestCommandClient_RemovesStagedFrame(t *testing.T) {
	requireShell(t)

	out, err := os.CreateTemp(t.TempDir(), "path")
	if err != nil {
		t.Fatalf("temp: %v", err)
	}
	out.Close()

	script := `printf '%s' "$1" > ` + out.Name() + `; echo '{"prediction":"neutral"}'`
	client := NewCommandClient("sh", []string{"-c", script, "sh"}, "", 5*time.Second, nil)
	if _, err := client.Classify(context.Background(), pngFrame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	staged, err := os.ReadFile(out.Name())
	if err != nil || len(staged) == 0 {
		t.Fatalf("expected staged path to be recorded: %v", err)
	}
	if _, err := os.Stat(string(staged)); !os.IsNotExist(err) {
		t.Fatalf("expected staged frame %s to be removed, stat err: %v", staged, err)
	}
}

func TestCommandClient_MissingBinary(t *testing.T) {
	client := NewCommandClient("momu-no-such-classifier", nil, "", time.Second, nil)
	_, err := client.Classify(context.Background(), pngFrame)
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("expected transport failure, got %v", err)
	}
}
