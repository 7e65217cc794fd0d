package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hitoshi/taskman/internal/client/api"
	"github.com/hitoshi/taskman/internal/client/config"
	"github.com/hitoshi/taskman/internal/client/guard"
	"github.com/hitoshi/taskman/internal/client/redirect"
	"github.com/hitoshi/taskman/internal/client/session"
	"github.com/hitoshi/taskman/internal/logger"
)

// errAuthRequired は認証されていないためコマンドを実行しなかったことを表す。
var errAuthRequired = errors.New("authentication required")

// app はコマンド間で共有する依存関係。
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	serverURL  string

	cfg        *config.Config
	store      session.Store
	closeStore func() error
	history    *redirect.History
	nav        *terminalNavigator
	policy     *redirect.Policy
	client     *api.Client
	guard      *guard.Guard
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Command line client for the taskman API",
		Long: `taskctl manages your taskman tasks and categories from the terminal.

Log in once with "taskctl login"; the issued token is kept in the local
session store until it expires or you run "taskctl logout".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: <user config dir>/taskctl/config.yaml)")
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "taskman API base URL (overrides config)")

	root.AddCommand(
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		statusCmd(a),
		tasksCmd(a),
		categoriesCmd(a),
		accountCmd(a),
	)
	return root
}

// setup は設定を読み込み、セッションストアとAPIクライアントを組み立てる。
func (a *app) setup(ctx context.Context) error {
	path := a.configPath
	if path == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.serverURL != "" {
		cfg.ServerURL = a.serverURL
	}
	a.cfg = cfg

	log := logger.SetupWithLevel(a.errOut, logger.ParseLevel(cfg.LogLevel))

	if err := a.openStore(ctx); err != nil {
		return err
	}

	a.history = redirect.NewHistory("/")
	a.nav = &terminalNavigator{history: a.history, out: a.out}
	a.policy = redirect.NewPolicy()
	a.client = api.New(cfg.ServerURL, a.store, a.nav,
		api.WithTimeout(cfg.Timeout),
		api.WithPolicy(a.policy),
		api.WithLogger(log),
	)
	a.guard = guard.New(api.NewResolver(a.client), a.policy)

	log.Debug("taskctl configured",
		slog.String("server", cfg.ServerURL),
		slog.String("session_backend", cfg.Session.Backend),
	)
	return nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Session.Backend {
	case config.BackendSQLite:
		s, err := session.OpenSQLiteStore(ctx, a.cfg.Session.Path)
		if err != nil {
			return err
		}
		a.store, a.closeStore = s, s.Close
	case config.BackendMemory:
		a.store = session.NewMemoryStore()
	default:
		a.store = session.NewFileStore(a.cfg.Session.Path)
	}
	return nil
}

func (a *app) teardown() error {
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}

// protected はviewへ遷移し、認証済みの場合のみrunを実行する。
func (a *app) protected(ctx context.Context, view string, run func(ctx context.Context, userID string) error) error {
	a.history.Push(view)

	status, err := a.guard.Render(ctx, a.nav, guard.View{
		Authenticated: run,
		Denied: func(s api.Status) {
			if s.Kind == api.KindVerificationFailed {
				fmt.Fprintln(a.out, "Could not verify your session with the server. Please try again.")
			}
		},
	})
	if status.Kind != api.KindAuthenticated {
		return errAuthRequired
	}
	return describeError(err)
}

// describeError はAPIエラーをユーザー向けの形に変換する。
func describeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrAuthAborted) {
		return errAuthRequired
	}
	var fe *api.FetchError
	if errors.As(err, &fe) {
		if fe.Message != "" {
			return errors.New(fe.Message)
		}
	}
	return err
}
