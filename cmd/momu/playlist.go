package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ewilliams-labs/momu/internal/adapters/spotify"
	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/spf13/cobra"
)

func newPlaylistCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "playlist [mood]",
		Short: "Pick a playlist for a mood, or list a given playlist, and print its tracks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (from == "") == (len(args) == 0) {
				return errors.New("give exactly one of a mood or --from")
			}
			if err := a.cfg.ValidateCatalog(); err != nil {
				return err
			}
			moods, closeStore, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer closeStore()

			var result domain.PlaylistResult
			if from != "" {
				id, err := spotify.ExtractPlaylistID(from)
				if err != nil {
					return err
				}
				tracks, err := newCatalog(a.cfg.Spotify, moods, nil, a.log).ResolveTracks(cmd.Context(), id)
				if err != nil {
					return err
				}
				if result, err = domain.NewPlaylistResult(domain.PlaylistCandidate{ID: id}, tracks); err != nil {
					return err
				}
			} else {
				result, err = newFinder(a.cfg, moods, nil, a.log).Find(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}
			return printPlaylist(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "playlist ID, spotify:playlist URI or open.spotify.com URL")
	return cmd
}

func printPlaylist(out io.Writer, result domain.PlaylistResult) error {
	name := result.Info.Name
	if name == "" {
		name = result.Info.ID
	}
	fmt.Fprintf(out, "%s  %s\n", name, result.Info.ExternalURL)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, t := range result.Tracks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, t.Title, t.Artist, t.DurationText)
	}
	return tw.Flush()
}
