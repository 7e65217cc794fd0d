package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hitoshi/taskman/internal/client/api"
	"github.com/hitoshi/taskman/internal/client/redirect"
)

// readPassword はterm.ReadPasswordのテスト用差し替え口。
var readPassword = term.ReadPassword

// isTerminal はterm.IsTerminalのテスト用差し替え口。
var isTerminal = term.IsTerminal

// promptPassword は端末からエコー無しでパスワードを読む。
// 標準入力が端末でない場合は1行をそのまま読む。
func promptPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func registerCmd(a *app) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return errors.New("--username and --email are required")
			}
			password, err := promptPassword(a.in, a.out, "Password: ")
			if err != nil {
				return err
			}

			if err := a.client.Register(cmd.Context(), username, email, password); err != nil {
				return describeError(err)
			}
			fmt.Fprintln(a.out, "User registered successfully")
			a.nav.Replace(redirect.DefaultTarget)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, next string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			password, err := promptPassword(a.in, a.out, "Password: ")
			if err != nil {
				return err
			}

			if err := a.client.Login(cmd.Context(), email, password); err != nil {
				return describeError(err)
			}

			target := redirect.Target(url.Values{"redirect": {next}})
			a.nav.Replace(target)
			fmt.Fprintf(a.out, "Login successful. Continue with %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&next, "redirect", "", "View to continue with after login")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Long: `Forget the stored session token.

The token is only removed locally. It stays valid on the server until it expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			a.nav.Replace(a.policy.LoginURL(redirect.NoticeLogoutSuccessful, ""))
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := api.NewResolver(a.client).Resolve(cmd.Context())
			switch status.Kind {
			case api.KindAuthenticated:
				fmt.Fprintf(a.out, "Authenticated as %s\n", status.UserID)
			case api.KindNoToken:
				fmt.Fprintln(a.out, "Not logged in")
			case api.KindExpired:
				fmt.Fprintln(a.out, "Session expired")
			default:
				fmt.Fprintln(a.out, "Could not verify session")
			}
			return nil
		},
	}
}
