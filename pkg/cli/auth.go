package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/botflow/pkg/session"
	"github.com/dshills/botflow/pkg/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCommand(rt *runtime) *cobra.Command {
	var (
		host          string
		username      string
		password      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the bot template API",
		Long: `Log in with a username and password. The returned tokens are encrypted
and kept in the system keyring; the host is remembered in config.yaml.

Examples:
  botflow login --host 10.0.0.5:8000 --username admin
  echo "$PASS" | botflow login --username admin --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host == "" {
				host = rt.cfg.Host
			}
			base, err := validation.NormalizeHost(host)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Username: ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}
			if username == "" {
				return fmt.Errorf("username cannot be empty")
			}

			switch {
			case passwordStdin:
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			case password != "":
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: Using --password exposes it in shell history.")
			default:
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return fmt.Errorf("no password given; use --password-stdin when not on a terminal")
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				b, err := term.ReadPassword(int(os.Stdin.Fd()))
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(b)
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			client, err := rt.apiClient()
			if err != nil {
				return err
			}
			auth, err := client.Login(cmd.Context(), base, username, password)
			if err != nil {
				return err
			}
			sess, err := rt.session()
			if err != nil {
				return err
			}
			if err := sess.Login(base, auth); err != nil {
				return err
			}

			rt.cfg.Host = base
			if err := rt.cfg.Save(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in to %s as %s\n", base, displayName(auth))
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "API host, e.g. 10.0.0.5:8000 (default: last used host)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted securely if omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := rt.session()
			if err != nil {
				return err
			}
			if err := sess.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := rt.session()
			if err != nil {
				return err
			}
			if err := sess.Restore(); err != nil {
				if errors.Is(err, session.ErrNotLoggedIn) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}
				return err
			}
			auth, _ := sess.Auth()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "User:       %s\n", displayName(auth))
			_, _ = fmt.Fprintf(out, "Host:       %s\n", sess.Host())
			_, _ = fmt.Fprintf(out, "User ID:    %d\n", auth.ID)
			_, _ = fmt.Fprintf(out, "Department: %d\n", auth.DepartmentID)
			_, _ = fmt.Fprintf(out, "Level:      %d\n", auth.UserLevelID)
			return nil
		},
	}
}

func displayName(a session.Auth) string {
	if a.Fullname != "" && a.Fullname != a.Username {
		return fmt.Sprintf("%s (%s)", a.Fullname, a.Username)
	}
	return a.Username
}
