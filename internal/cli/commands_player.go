package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jrsteele09/rockquest/api"
	"github.com/spf13/cobra"
)

func newRocksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rocks",
		Short: "Manage your rock collection",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "mine",
		Short: "List your collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rocks, err := a.client.GetMyRocks(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(rocks)
		},
	})

	var imageURL string
	addCmd := &cobra.Command{
		Use:   "add <rock>",
		Short: "Add a rock to your collection by catalog id (R001) or class name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rockID := args[0]
			if info, ok := api.LookupRock(rockID); ok {
				rockID = info.CatalogID
			}
			m, err := a.client.AddRockToCollection(cmd.Context(), rockID, imageURL)
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	addCmd.Flags().StringVar(&imageURL, "image-url", "", "URL of a photo of the rock")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <rock-id>",
		Short: "Remove a rock from your collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.DeleteRockFromCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	})

	var lat, lng, radius float64
	nearbyCmd := &cobra.Command{
		Use:   "nearby",
		Short: "List rocks found near a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rocks, err := a.client.GetNearbyRocks(cmd.Context(), lat, lng, radius)
			if err != nil {
				return err
			}
			return a.printJSON(rocks)
		},
	}
	nearbyCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	nearbyCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	nearbyCmd.Flags().Float64Var(&radius, "radius", api.DefaultNearbyRadius, "Search radius in degrees")
	_ = nearbyCmd.MarkFlagRequired("lat")
	_ = nearbyCmd.MarkFlagRequired("lng")
	cmd.AddCommand(nearbyCmd)

	return cmd
}

func newQuestsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Show daily quests",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "daily",
		Short: "List today's quests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			quests, err := a.client.GetDailyQuests(cmd.Context())
			if err != nil {
				return err
			}
			for _, q := range quests.Quests {
				fmt.Fprintf(a.out, "- %s: %s\n", q.Title, q.Description)
			}
			if quests.Completed {
				fmt.Fprintln(a.out, "All done for today.")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show today's quest and the next few",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.client.GetQuestsSummary(cmd.Context())
			if err != nil {
				return err
			}
			if summary.Today != nil {
				fmt.Fprintf(a.out, "today     %s\n", summary.Today.Title)
			} else {
				fmt.Fprintln(a.out, "today     no quest")
			}
			for _, q := range summary.Upcoming {
				fmt.Fprintf(a.out, "%s %s\n", q.Date, q.Title)
			}
			return nil
		},
	})

	return cmd
}

func newAchievementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show which badges you have earned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.GetAchievements(cmd.Context())
			if err != nil {
				return err
			}
			for _, ach := range list {
				mark := " "
				if ach.Earned {
					mark = "x"
				}
				fmt.Fprintf(a.out, "[%s] %s\n", mark, ach.Title)
			}
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show scan counts for a day (default today) and overall",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.client.GetScanStats(cmd.Context(), date)
			if err != nil {
				return err
			}
			return a.printJSON(stats)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day as YYYY-MM-DD; the backend uses today when empty")
	return cmd
}

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <photo>",
		Short: "Identify the rock in a JPEG photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := api.LocalPath(args[0])
			if err != nil {
				return err
			}
			result, err := a.client.ScanRockFromURI(cmd.Context(), args[0], filepath.Base(path))
			if msg, low := api.LowConfidence(err); low {
				warn(a.out, !a.opts.noColor, "%s", msg)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s (%.0f%% confident)\n", result.PredictedType, result.ConfidenceScore*100)
			if info, ok := result.Rock(); ok {
				fmt.Fprintf(a.out, "%s rock, catalog id %s\n", info.Category, info.CatalogID)
			}
			return nil
		},
	}
}
