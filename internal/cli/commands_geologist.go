package cli

import (
	"github.com/jrsteele09/rockquest/api"
	"github.com/spf13/cobra"
)

func newReviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Verify posts waiting for a geologist (geologists)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List posts waiting for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.client.ReviewPendingRocks(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(posts)
		},
	})

	var reason string
	verifyCmd := &cobra.Command{
		Use:       "verify <post-id> <approve|reject>",
		Short:     "Approve or reject a post",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(api.DecisionApprove), string(api.DecisionReject)},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.VerifyRock(cmd.Context(), args[0], api.PostVerification{
				Action: api.Decision(args[1]),
				Reason: reason,
			})
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	verifyCmd.Flags().StringVar(&reason, "reason", "", "Note for the author")
	cmd.AddCommand(verifyCmd)

	return cmd
}

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Moderate reported posts (geologists)",
	}

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := a.client.GetReportsByStatus(cmd.Context(), api.ReportStatus(status))
			if err != nil {
				return err
			}
			return a.printJSON(reports)
		},
	}
	listCmd.Flags().StringVar(&status, "status", string(api.ReportPending), "pending, approve or reject")
	cmd.AddCommand(listCmd)

	var reportedStatus string
	reportedCmd := &cobra.Command{
		Use:   "posts",
		Short: "List reports with the reported post attached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.ListReportedPosts(cmd.Context(), api.ReportStatus(reportedStatus))
			if err != nil {
				return err
			}
			return a.printJSON(items)
		},
	}
	reportedCmd.Flags().StringVar(&reportedStatus, "status", string(api.ReportPending), "pending, approve or reject")
	cmd.AddCommand(reportedCmd)

	cmd.AddCommand(&cobra.Command{
		Use:       "decide <report-id> <approve|reject>",
		Short:     "Decide a report; approving removes the post from the feed",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(api.DecisionApprove), string(api.DecisionReject)},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.DecideReport(cmd.Context(), args[0], api.Decision(args[1]))
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	})

	return cmd
}
