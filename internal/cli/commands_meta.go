package cli

import (
	"fmt"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/internal/config"
	"github.com/spf13/cobra"
)

const bannerFont = "cybermedium"

func newVersionCmd(a *app) *cobra.Command {
	return offlineCmd(&cobra.Command{
		Use:   "version",
		Short: "Print the banner and version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			name := "RockQuest"
			if s, err := config.Load(a.opts.configPath); err == nil {
				name = s.GetAppName()
			}
			banner := figure.NewFigure(name, bannerFont, true)
			figure.Write(a.out, banner)
			fmt.Fprintln(a.out)
			fmt.Fprintf(a.out, "%s %s\n", strings.ToLower(name), Version)
			return nil
		},
	})
}

func newRoutesCmd(a *app) *cobra.Command {
	var prefix string
	cmd := offlineCmd(&cobra.Command{
		Use:   "routes",
		Short: "List the backend endpoints this client calls",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, r := range api.Routes {
				if strings.HasPrefix(r.Path, prefix) {
					printRoute(a.out, r.Method, r.Path, !a.opts.noColor)
				}
			}
			return nil
		},
	})
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list routes under this path prefix, e.g. /geologist")
	return cmd
}

func newCatalogCmd(a *app) *cobra.Command {
	cmd := offlineCmd(&cobra.Command{
		Use:   "catalog [label]",
		Short: "List the rock classes the scanner knows, or look one up",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				info, ok := api.LookupRock(args[0])
				if !ok {
					info, ok = api.LookupCatalogID(args[0])
				}
				if !ok {
					return fmt.Errorf("unknown rock %q", args[0])
				}
				fmt.Fprintf(a.out, "%s  %-12s %s\n", info.CatalogID, info.Class, info.Category)
				return nil
			}
			for _, class := range api.RockClasses {
				info, _ := api.LookupRock(string(class))
				fmt.Fprintf(a.out, "%s  %-12s %s\n", info.CatalogID, info.Class, info.Category)
			}
			return nil
		},
	})
	return cmd
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity and its role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.provider == nil {
				fmt.Fprintln(a.out, "anonymous")
				return nil
			}
			id, ok := a.provider.CurrentUser()
			if !ok {
				fmt.Fprintln(a.out, "signed out")
				return nil
			}
			out := struct {
				UID          string           `json:"uid"`
				Email        string           `json:"email,omitempty"`
				Role         string           `json:"role"`
				Capabilities api.Capabilities `json:"capabilities"`
			}{UID: id.UID, Email: id.Email, Role: api.RoleUnknown.String()}

			profile, err := a.client.GetProfile(cmd.Context())
			switch {
			case err == nil:
				out.Role = profile.Role().String()
				out.Capabilities = api.RoleCapabilities(profile.Role())
			case api.IsNotFound(err):
				// Signed in but the profile is not completed yet.
			default:
				return err
			}
			return a.printJSON(out)
		},
	}
}

func newHomeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Load the home screen for the signed-in user's role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			profile, err := a.client.GetProfile(ctx)
			if err != nil {
				return err
			}
			home, err := a.client.LoadHome(ctx, profile.Role())
			if err != nil {
				return err
			}

			p := profile.WithDefaults()
			fmt.Fprintf(a.out, "%s (%s)\n", p.Username, home.Role)
			fmt.Fprintf(a.out, "%d posts, %d facts\n", len(home.Posts), len(home.Facts))
			for _, an := range home.Announcements {
				fmt.Fprintf(a.out, "announcement: %s\n", an.Title)
			}
			if home.Role == api.RoleGeologist {
				fmt.Fprintf(a.out, "%d posts waiting for review\n", len(home.PendingReviews))
			}
			return nil
		},
	}
}
