package cli

import (
	"fmt"
	"time"

	"github.com/jrsteele09/rockquest/api"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/internal/utils"
	"github.com/jrsteele09/rockquest/storage"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit your profile",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(p.WithDefaults())
		},
	})

	var update struct {
		username, description, dob, email string
		avatar                            int
	}
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags given are sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u api.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("username") {
				u.Username = utils.Ptr(update.username)
			}
			if flags.Changed("description") {
				u.Description = utils.Ptr(update.description)
			}
			if flags.Changed("dob") {
				u.DOB = utils.Ptr(update.dob)
			}
			if flags.Changed("email") {
				u.Email = utils.Ptr(update.email)
			}
			if flags.Changed("avatar") {
				u.AvatarID = utils.Ptr(update.avatar)
			}
			if u == (api.ProfileUpdate{}) {
				return fmt.Errorf("%w: nothing to update", rqerrors.ErrInvalidRequest)
			}

			m, err := a.client.UpdateProfile(cmd.Context(), u)
			if api.IsUsernameTaken(err) {
				return fmt.Errorf("username %q is taken: %w", update.username, err)
			}
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	updateCmd.Flags().StringVar(&update.username, "username", "", "New username")
	updateCmd.Flags().StringVar(&update.description, "description", "", "Profile description")
	updateCmd.Flags().StringVar(&update.dob, "dob", "", "Date of birth (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&update.email, "email", "", "Contact email")
	updateCmd.Flags().IntVar(&update.avatar, "avatar", api.DefaultAvatarID, "Avatar id")
	cmd.AddCommand(updateCmd)

	var complete struct {
		username, role, description, dob string
		avatar                           int
	}
	completeCmd := &cobra.Command{
		Use:   "complete",
		Short: "Create your profile after first sign-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := api.ParseRole(complete.role)
			if err != nil {
				return err
			}
			req := api.CompleteProfileRequest{
				Username: complete.username,
				Type:     role.String(),
				AvatarID: utils.Ptr(complete.avatar),
			}
			if complete.description != "" {
				req.Description = utils.Ptr(complete.description)
			}
			if complete.dob != "" {
				req.DOB = utils.Ptr(complete.dob)
			}
			if a.provider != nil {
				if id, ok := a.provider.CurrentUser(); ok {
					req.EmailAddress = id.Email
				}
			}

			m, err := a.client.CompleteProfile(cmd.Context(), req)
			if api.IsUsernameTaken(err) {
				return fmt.Errorf("username %q is taken: %w", complete.username, err)
			}
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	completeCmd.Flags().StringVar(&complete.username, "username", "", "Username")
	completeCmd.Flags().StringVar(&complete.role, "type", "player", "Account type: player or geologist")
	completeCmd.Flags().StringVar(&complete.description, "description", "", "Profile description")
	completeCmd.Flags().StringVar(&complete.dob, "dob", "", "Date of birth (YYYY-MM-DD)")
	completeCmd.Flags().IntVar(&complete.avatar, "avatar", api.DefaultAvatarID, "Avatar id")
	_ = completeCmd.MarkFlagRequired("username")
	cmd.AddCommand(completeCmd)

	var confirm bool
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and everything in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("%w: pass --yes to delete the account", rqerrors.ErrInvalidRequest)
			}
			m, err := a.client.DeleteAccount(cmd.Context())
			if err != nil {
				return err
			}
			if a.provider != nil {
				if err := a.provider.SignOut(cmd.Context()); err != nil {
					return err
				}
			}
			return a.printMessage(m)
		},
	}
	deleteCmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the deletion")
	cmd.AddCommand(deleteCmd)

	return cmd
}

type postFlags struct {
	rock, description, info, image string
}

func (f *postFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rock, "rock", "", "Rock name, e.g. Granite")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
	cmd.Flags().StringVar(&f.info, "info", "", "Longer information")
	cmd.Flags().StringVar(&f.image, "image", "", "Image: a local path or file:// URI (uploaded first) or an https URL")
}

// fields resolves the image, uploading a local file to storage.
func (f *postFlags) fields(cmd *cobra.Command, a *app) (api.PostFields, error) {
	ctx := cmd.Context()
	uploader, err := a.storage(ctx)
	if err != nil {
		return api.PostFields{}, err
	}
	imageURL, err := storage.ResolveImage(ctx, uploader, a.uid(), f.image, time.Now())
	if err != nil {
		return api.PostFields{}, err
	}
	if f.rock != "" && !api.IsKnownClass(f.rock) {
		a.logger.Warn().Str("rock", f.rock).Msg("rock is not in the scanner catalog")
	}
	return api.PostFields{
		RockName:         f.rock,
		ShortDescription: f.description,
		Information:      f.info,
		Type:             api.PostTypePost,
		ImageURL:         imageURL,
	}, nil
}

func newPostsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse, write and report posts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "mine",
		Short: "List your posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.client.GetMyPosts(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(posts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "List the community feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			posts, err := a.client.GetAllPosts(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(posts)
		},
	})

	var add postFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields, err := add.fields(cmd, a)
			if err != nil {
				return err
			}
			m, err := a.client.AddPost(cmd.Context(), fields)
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	add.register(addCmd)
	_ = addCmd.MarkFlagRequired("rock")
	cmd.AddCommand(addCmd)

	var edit postFlags
	editCmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Replace the fields of one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := edit.fields(cmd, a)
			if err != nil {
				return err
			}
			m, err := a.client.EditPost(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	edit.register(editCmd)
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.DeletePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	})

	var reason string
	reportCmd := &cobra.Command{
		Use:   "report <post-id>",
		Short: "Report a post to the moderators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.ReportPost(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			if m.AlreadyReported() {
				fmt.Fprintln(a.out, "You already reported this post.")
				return nil
			}
			return a.printMessage(m)
		},
	}
	reportCmd.Flags().StringVar(&reason, "reason", "", "Why the post should be removed")
	_ = reportCmd.MarkFlagRequired("reason")
	cmd.AddCommand(reportCmd)

	return cmd
}

func newFactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Read geology facts; geologists can also write them",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			facts, err := a.client.GetFacts(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(facts)
		},
	})

	var add api.AddFactRequest
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a fact (geologists)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.client.AddFact(cmd.Context(), add)
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	addCmd.Flags().StringVar(&add.FactID, "id", "", "Fact id; the backend picks one when empty")
	addCmd.Flags().StringVar(&add.Title, "title", "", "Title")
	addCmd.Flags().StringVar(&add.Description, "description", "", "Body text")
	_ = addCmd.MarkFlagRequired("title")
	cmd.AddCommand(addCmd)

	var title, description string
	editCmd := &cobra.Command{
		Use:   "edit <fact-id>",
		Short: "Edit a fact (geologists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u api.FactUpdate
			if cmd.Flags().Changed("title") {
				u.Title = utils.Ptr(title)
			}
			if cmd.Flags().Changed("description") {
				u.Description = utils.Ptr(description)
			}
			m, err := a.client.EditFact(cmd.Context(), args[0], u)
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	}
	editCmd.Flags().StringVar(&title, "title", "", "New title")
	editCmd.Flags().StringVar(&description, "description", "", "New body text")
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <fact-id>",
		Short: "Delete a fact (geologists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.DeleteFact(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printMessage(m)
		},
	})

	return cmd
}

func newAnnouncementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "announcements",
		Short: "List announcements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.client.GetAnnouncements(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(list)
		},
	}
}

func newBadgesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List every badge that can be earned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			badges, err := a.client.GetBadges(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range badges {
				fmt.Fprintf(a.out, "%-14s %-5s %3d  %s\n", b.Name, b.Kind, b.Threshold, b.ImageKey)
			}
			return nil
		},
	}
}
