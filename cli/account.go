package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sociomate/client"
	"sociomate/views"

	"github.com/spf13/cobra"
)

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.client.Register(cmd.Context(), args[0], args[1], password)
			if err != nil {
				return err
			}
			return opts.signIn(cmd, u)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := opts.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			return opts.signIn(cmd, u)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (o *RootOptions) signIn(cmd *cobra.Command, u *views.AuthUser) error {
	if err := o.state.SignIn(cmd.Context(), u); err != nil {
		return err
	}
	s := o.state.Session()
	return o.print(cmd.OutOrStdout(), s.User, func(w io.Writer) {
		fmt.Fprintf(w, "Signed in as @%s (%s)\n", s.User.Username, s.User.ID)
	})
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.state.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newThemeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggle between the light and dark theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := opts.state.ToggleTheme(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]client.Theme{"theme": theme}, func(w io.Writer) {
				fmt.Fprintf(w, "Theme: %s\n", theme)
			})
		},
	}
}

func newProfileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [user-id]",
		Short: "Show a profile and its posts, your own by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			id := s.User.ID
			if len(args) == 1 {
				id = args[0]
			}

			screen := client.NewProfileScreen(opts.client, opts.client, opts.state, id)
			if err := screen.Load(cmd.Context()); err != nil {
				return err
			}
			out := struct {
				User  *views.User  `json:"user"`
				Posts []views.Post `json:"posts"`
			}{screen.Profile, screen.Posts.Posts}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				writeUser(w, *screen.Profile)
				fmt.Fprintln(w)
				writePosts(w, screen.Posts.Posts)
			})
		},
	}
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	var username, bio, picture string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update your username, bio or profile picture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			upd := client.ProfileUpdate{Username: username, Bio: bio}
			if picture != "" {
				f, err := os.Open(picture)
				if err != nil {
					return err
				}
				defer f.Close()
				upd.Picture = &client.File{Name: filepath.Base(picture), Body: f}
			}

			screen := client.NewProfileScreen(opts.client, opts.client, opts.state, s.User.ID)
			if err := screen.Update(cmd.Context(), upd); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), screen.Profile, func(w io.Writer) {
				writeUser(w, *screen.Profile)
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&bio, "bio", "", "new bio")
	cmd.Flags().StringVar(&picture, "picture", "", "path to a new profile picture")
	return cmd
}

func newFollowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a user, or unfollow if already following",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			screen := client.NewProfileScreen(opts.client, opts.client, opts.state, args[0])
			if err := screen.ToggleFollow(cmd.Context()); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), screen.Profile, func(w io.Writer) {
				verb := "Unfollowed"
				if screen.IsFollowedBy(s.User.ID) {
					verb = "Following"
				}
				fmt.Fprintf(w, "%s @%s\n", verb, screen.Profile.Username)
			})
		},
	}
}
