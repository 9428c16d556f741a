// Package cli is the sociomate command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sociomate/client"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the state opened for a command run.
type RootOptions struct {
	Server   string
	StateDir string
	Format   string // "text" | "json"

	store  client.Store
	state  *client.State
	client *client.Client
}

var ValidFormats = []string{"text", "json"}

var errSignedOut = errors.New("not signed in, run `sociomate login` first")

// Execute runs the CLI with args and always releases the state store.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &RootOptions{}
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if cerr := opts.close(); err == nil {
		err = cerr
	}
	return err
}

// NewRootCommand creates the root command.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sociomate",
		Short:         "SocioMate command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.open(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", envOr("SOCIOMATE_SERVER", "http://localhost:5000"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.StateDir, "state-dir", envOr("SOCIOMATE_STATE_DIR", defaultStateDir()), "directory for saved session and theme")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newThemeCommand(opts))
	cmd.AddCommand(newFeedCommand(opts))
	cmd.AddCommand(newPostCommand(opts))
	cmd.AddCommand(newLikeCommand(opts))
	cmd.AddCommand(newCommentCommand(opts))
	cmd.AddCommand(newUncommentCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newProfileCommand(opts))
	cmd.AddCommand(newEditCommand(opts))
	cmd.AddCommand(newFollowCommand(opts))

	return cmd
}

func (o *RootOptions) open(cmd *cobra.Command) error {
	store, err := client.OpenBadger(o.StateDir)
	if err != nil {
		return err
	}
	state := client.NewState(store, o.Server)
	if err := state.Load(cmd.Context()); err != nil {
		store.Close()
		return fmt.Errorf("load state: %w", err)
	}

	o.store = store
	o.state = state
	o.client = client.New(o.Server)
	if s := state.Session(); s != nil {
		o.client.Token = s.Token
	}
	return nil
}

func (o *RootOptions) close() error {
	if o.store == nil {
		return nil
	}
	err := o.store.Close()
	o.store = nil
	return err
}

// session returns the signed-in session or errSignedOut.
func (o *RootOptions) session() (*client.Session, error) {
	s := o.state.Session()
	if s == nil {
		return nil, errSignedOut
	}
	return s, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sociomate"
	}
	return filepath.Join(dir, "sociomate")
}
