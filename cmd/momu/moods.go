package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/spf13/cobra"
)

func newMoodsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moods",
		Short: "List the mood profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer closeStore()

			profiles, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tEMOJI\tSEARCH")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Label, p.DisplayEmoji(), p.Term())
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(newMoodsSetCmd(a))
	return cmd
}

func newMoodsSetCmd(a *app) *cobra.Command {
	var emoji, term string
	cmd := &cobra.Command{
		Use:   "set <label>",
		Short: "Add or update a mood profile (persists with STORAGE_DRIVER=sqlite)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			defer closeStore()

			label := domain.NormalizeLabel(args[0])
			profile, err := store.Profile(cmd.Context(), label)
			if err != nil {
				profile = domain.MoodProfile{Label: label}
			}
			if cmd.Flags().Changed("emoji") {
				profile.Emoji = emoji
			}
			if cmd.Flags().Changed("term") {
				profile.SearchTerm = term
			}
			if err := store.Save(cmd.Context(), profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s -> %q\n", profile.Label, profile.DisplayEmoji(), profile.Term())
			return nil
		},
	}
	cmd.Flags().StringVar(&emoji, "emoji", "", "emoji shown for the mood")
	cmd.Flags().StringVar(&term, "term", "", "catalog search term")
	return cmd
}
