package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sociomate/client"
	"sociomate/views"

	"github.com/spf13/cobra"
)

func newFeedCommand(opts *RootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session(); err != nil {
				return err
			}
			feed := client.NewUserFeed(opts.client, userID)
			if err := feed.Refresh(cmd.Context()); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), feed.Posts, func(w io.Writer) {
				writePosts(w, feed.Posts)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only show posts by this user id")
	return cmd
}

func newPostCommand(opts *RootOptions) *cobra.Command {
	var image string
	cmd := &cobra.Command{
		Use:   "post <content...>",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session(); err != nil {
				return err
			}
			var file *client.File
			if image != "" {
				f, err := os.Open(image)
				if err != nil {
					return err
				}
				defer f.Close()
				file = &client.File{Name: filepath.Base(image), Body: f}
			}

			p, err := opts.client.CreatePost(cmd.Context(), strings.Join(args, " "), file)
			if err != nil {
				return err
			}
			return opts.printPost(cmd, p)
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "path to an image to attach")
	return cmd
}

func newLikeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post, or remove your like",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session(); err != nil {
				return err
			}
			p, err := opts.client.ToggleLike(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.printPost(cmd, p)
		},
	}
}

func newCommentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text...>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session(); err != nil {
				return err
			}
			p, err := opts.client.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return opts.printPost(cmd, p)
		},
	}
}

func newUncommentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "uncomment <post-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session(); err != nil {
				return err
			}
			p, err := opts.client.DeleteComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return opts.printPost(cmd, p)
		},
	}
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.session(); err != nil {
				return err
			}
			if err := opts.client.DeletePost(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Post removed")
			return nil
		},
	}
}

func (o *RootOptions) printPost(cmd *cobra.Command, p *views.Post) error {
	return o.print(cmd.OutOrStdout(), p, func(w io.Writer) {
		writePost(w, *p)
	})
}
