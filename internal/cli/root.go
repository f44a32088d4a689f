// Package cli defines the cobra commands of the rockquest CLI. Each endpoint
// group of the backend gets a command; every command talks to the backend
// through api.Client.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

// offline marks commands that never talk to the backend.
const offline = "offline"

type options struct {
	verbose    bool
	noColor    bool
	fake       bool
	fakeRole   string
	configPath string
}

// NewRootCommand builds the command tree writing results to out and logs
// and hints to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	root, _ := newRoot(out, errOut)
	return root
}

func newRoot(out, errOut io.Writer) (*cobra.Command, *app) {
	opts := &options{}
	a := &app{opts: opts, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "rockquest",
		Short: "Command line client for the RockQuest backend",
		Long: `rockquest calls the RockQuest backend as the signed-in user.

Credentials are read from the environment, first match wins:
  ROCKQUEST_ID_TOKEN                    a pre-issued ID token
  ROCKQUEST_REFRESH_TOKEN               a refresh token from an earlier sign-in
  ROCKQUEST_EMAIL + ROCKQUEST_PASSWORD  password sign-in
Without credentials requests are sent anonymously.

--fake runs every command against an in-memory backend instead.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[offline] == "true" {
				return a.setupLogging(nil)
			}
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every request at debug level")
	flags.BoolVar(&opts.noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable coloured output")
	flags.BoolVar(&opts.fake, "fake", false, "Use an in-memory backend and storage")
	flags.StringVar(&opts.fakeRole, "fake-role", "player", "Role of the signed-in user with --fake (player or geologist)")
	flags.StringVar(&opts.configPath, "config", "", "Path to the bundled YAML configuration")

	root.AddCommand(
		newVersionCmd(a),
		newRoutesCmd(a),
		newCatalogCmd(a),
		newHomeCmd(a),
		newWhoAmICmd(a),
		newProfileCmd(a),
		newPostsCmd(a),
		newFactsCmd(a),
		newAnnouncementsCmd(a),
		newBadgesCmd(a),
		newRocksCmd(a),
		newQuestsCmd(a),
		newAchievementsCmd(a),
		newStatsCmd(a),
		newScanCmd(a),
		newReviewCmd(a),
		newReportsCmd(a),
	)
	return root, a
}

// Execute runs the command tree with args and prints a hint for errors
// the user can act on.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root, a := newRoot(out, errOut)
	defer a.close()

	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		if hint := describeError(err); hint != "" {
			warn(errOut, !a.opts.noColor, "%s", hint)
		}
	}
	return err
}

func offlineCmd(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[offline] = "true"
	return cmd
}
