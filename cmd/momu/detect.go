package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	var imagePath string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Classify the mood in one frame from the camera or an image file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			frame, err := a.frame(cmd.Context(), imagePath)
			if err != nil {
				return err
			}
			result, err := newClassifier(a.cfg.Classifier, a.log).Classify(cmd.Context(), frame)
			if err != nil {
				return err
			}
			if result.Confidence != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%.2f)\n", result.Label, *result.Confidence)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Label)
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "classify this image instead of capturing from the camera")
	return cmd
}

// frame reads path when given, otherwise takes a single still from the
// configured camera.
func (a *app) frame(ctx context.Context, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	cam := newCamera(a.cfg.Camera, a.log)
	if _, err := cam.Start(ctx); err != nil {
		return nil, err
	}
	defer cam.Stop()
	return cam.CaptureStill(ctx)
}
