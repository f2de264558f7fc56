// Package cli is the tada command tree: account commands, todo CRUD, the
// interactive menu and TUI, and the calculator.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Makepad-fr/tadakit/internal/account"
	"github.com/Makepad-fr/tadakit/internal/config"
	"github.com/Makepad-fr/tadakit/internal/logger"
	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/session"
	"github.com/Makepad-fr/tadakit/internal/store/jsonstore"
	"github.com/Makepad-fr/tadakit/internal/todo"
	"github.com/Makepad-fr/tadakit/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options tune behavior from root flags.
type Options struct {
	ConfigPath string
	DataDir    string
	Theme      string
	Debug      bool
}

// App is the state shared by every subcommand of one invocation.
type App struct {
	opts Options
	cfg  *config.Config
	log  *zap.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	todos *todo.Manager
}

// NewApp returns an App reading from in and writing to out/errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{in: in, out: out, errOut: errOut, log: zap.NewNop()}
}

// setup loads config and applies root flags. It runs before every subcommand.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = a.opts.DataDir
	}
	if cmd.Flags().Changed("theme") {
		cfg.Theme = a.opts.Theme
	}
	// Load validated the file and env; only flag values can fail here.
	if err := cfg.Validate(); err != nil {
		return usageWrap(err)
	}
	if a.opts.Debug {
		cfg.Debug = true
	}
	a.cfg = cfg
	ui.SetTheme(cfg.Theme)

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log
	a.log.Debug("config loaded",
		zap.String("source", cfg.Source),
		zap.String("todos", cfg.TodosPath()),
		zap.String("users", cfg.UsersPath()),
	)
	return nil
}

func (a *App) close() {
	_ = logger.Sync(a.log)
}

func (a *App) accounts() *account.Registry {
	return account.New(
		jsonstore.New[model.User](a.cfg.UsersPath(), 0o600),
		account.WithLogger(a.log.Named("account")),
	)
}

func (a *App) sessions() *session.Sessions {
	return session.New(a.cfg.StateDir, a.cfg.SessionTTL)
}

// todoManager opens the todo file once per invocation.
func (a *App) todoManager() (*todo.Manager, error) {
	if a.todos != nil {
		return a.todos, nil
	}
	m, err := todo.New(
		jsonstore.New[model.Item](a.cfg.TodosPath(), 0o644),
		todo.WithLogger(a.log.Named("todo")),
	)
	if err != nil {
		return nil, err
	}
	a.todos = m
	return m, nil
}

// currentUser returns the logged-in username, failing with a usage error
// when nobody is.
func (a *App) currentUser() (string, error) {
	info, err := a.sessions().Current()
	if err != nil {
		if errors.Is(err, session.ErrExpired) {
			return "", &CodeError{Code: ExitUsage, Err: err, Hint: "Run: tada login"}
		}
		return "", err
	}
	if info == nil {
		return "", &CodeError{
			Code: ExitUsage,
			Err:  errors.New("not logged in"),
			Hint: "Run: tada login (or tada signup)",
		}
	}
	exists, err := a.accounts().Exists(info.Username)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &CodeError{
			Code: ExitUsage,
			Err:  fmt.Errorf("user %s no longer exists", info.Username),
			Hint: "Run: tada login",
		}
	}
	return info.Username, nil
}

// userAndTodos is the common prelude of every todo command.
func (a *App) userAndTodos() (string, *todo.Manager, error) {
	user, err := a.currentUser()
	if err != nil {
		return "", nil, err
	}
	m, err := a.todoManager()
	if err != nil {
		return "", nil, err
	}
	return user, m, nil
}

// Main runs the command tree for args and returns the exit code.
func Main(args []string) int {
	app := NewApp(os.Stdin, os.Stdout, os.Stderr)
	root := NewRootCmd(app)
	root.SetArgs(args)
	err := root.Execute()
	app.report(err)
	return ExitCode(err)
}

func (a *App) report(err error) {
	if err == nil {
		return
	}
	ui.Fail(a.errOut, err.Error())
	var ce *CodeError
	if errors.As(err, &ce) && ce.Hint != "" {
		ui.Hint(a.errOut, ce.Hint)
	}
}
