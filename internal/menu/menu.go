// Package menu is the interactive, numbered-menu front end: log in or sign
// up first, then manage your todos until you log out.
package menu

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Makepad-fr/tadakit/internal/account"
	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/session"
	"github.com/Makepad-fr/tadakit/internal/todo"
	"github.com/Makepad-fr/tadakit/internal/ui"
	"go.uber.org/zap"
)

// App wires the menus to the user registry and the todo list.
type App struct {
	Accounts *account.Registry
	Todos    *todo.Manager
	Sessions *session.Sessions // optional; login is remembered when set
	Log      *zap.Logger

	p   *Prompter
	out io.Writer
}

func New(accounts *account.Registry, todos *todo.Manager, in io.Reader, out io.Writer) *App {
	return &App{
		Accounts: accounts,
		Todos:    todos,
		Log:      zap.NewNop(),
		p:        NewPrompter(in, out),
		out:      out,
	}
}

// Run loops between the pre-login and todo menus until the user exits or
// input ends. user may name an already logged-in user.
func (a *App) Run(user string) error {
	for {
		if user == "" {
			var err error
			user, err = a.PreLogin()
			if err != nil {
				return quiet(err)
			}
			if user == "" {
				return nil
			}
		}
		if err := a.TodoMenu(user); err != nil {
			return quiet(err)
		}
		user = ""
	}
}

// PreLogin shows Login / Sign Up / Exit and returns the logged-in user, or
// "" when the user chose Exit.
func (a *App) PreLogin() (string, error) {
	for {
		fmt.Fprintln(a.out, "\nPre-Login Menu")
		fmt.Fprintln(a.out, "1) Login")
		fmt.Fprintln(a.out, "2) Sign Up")
		fmt.Fprintln(a.out, "3) Exit")
		choice, err := a.p.Line("Choose an option: ")
		if err != nil {
			return "", err
		}
		switch choice {
		case "1":
			user, err := a.login()
			if err != nil {
				return "", err
			}
			if user != "" {
				return user, nil
			}
		case "2":
			if err := a.signup(); err != nil {
				return "", err
			}
		case "3":
			fmt.Fprintln(a.out, "Goodbye.")
			return "", nil
		default:
			fmt.Fprintln(a.out, "Invalid choice. Try again.")
		}
	}
}

func (a *App) signup() error {
	username, err := a.p.Line("Choose a username: ")
	if err != nil {
		return err
	}
	password, err := a.p.Password("Choose a password: ")
	if err != nil {
		return err
	}
	if _, err := a.Accounts.Signup(username, password); err != nil {
		if errors.Is(err, account.ErrUserExists) {
			fmt.Fprintln(a.out, "Username already exists.")
			return nil
		}
		ui.Fail(a.out, err.Error())
		return nil
	}
	fmt.Fprintln(a.out, "Sign up successful. You can now log in.")
	return nil
}

func (a *App) login() (string, error) {
	username, err := a.p.Line("Username: ")
	if err != nil {
		return "", err
	}
	password, err := a.p.Password("Password: ")
	if err != nil {
		return "", err
	}
	u, err := a.Accounts.Login(username, password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			fmt.Fprintln(a.out, "Invalid credentials.")
			return "", nil
		}
		ui.Fail(a.out, err.Error())
		return "", nil
	}
	if a.Sessions != nil {
		if _, err := a.Sessions.Save(u.Username); err != nil {
			a.Log.Warn("could not remember login", zap.Error(err))
		}
	}
	fmt.Fprintf(a.out, "Login successful. Welcome, %s!\n", u.Username)
	return u.Username, nil
}

// TodoMenu is the post-login loop. It returns nil on logout.
func (a *App) TodoMenu(user string) error {
	for {
		done, pending := a.Todos.Stats(user)
		fmt.Fprintf(a.out, "\nTodo Menu (%s: %d pending, %d completed)\n", user, pending, done)
		fmt.Fprintln(a.out, "1) Create todo")
		fmt.Fprintln(a.out, "2) List todos")
		fmt.Fprintln(a.out, "3) View todo")
		fmt.Fprintln(a.out, "4) Edit todo")
		fmt.Fprintln(a.out, "5) Mark todo completed")
		fmt.Fprintln(a.out, "6) Delete todo")
		fmt.Fprintln(a.out, "7) Logout")
		choice, err := a.p.Line("Choose an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = a.create(user)
		case "2":
			a.list(user)
		case "3":
			err = a.view(user)
		case "4":
			err = a.edit(user)
		case "5":
			err = a.complete(user)
		case "6":
			err = a.remove(user)
		case "7":
			if a.Sessions != nil {
				if cerr := a.Sessions.Clear(); cerr != nil {
					a.Log.Warn("could not clear session", zap.Error(cerr))
				}
			}
			fmt.Fprintf(a.out, "Logged out %s.\n", user)
			return nil
		default:
			fmt.Fprintln(a.out, "Invalid choice. Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) create(user string) error {
	title, err := a.p.Line("Title: ")
	if err != nil {
		return err
	}
	details, err := a.p.Line("Details (optional): ")
	if err != nil {
		return err
	}
	prio, err := a.priority(model.PriorityMid)
	if err != nil {
		return err
	}
	it, err := a.Todos.Create(title, details, prio, user)
	if err != nil {
		ui.Fail(a.out, err.Error())
		return nil
	}
	ui.OK(a.out, "created "+ui.ShortID(it.ID))
	return nil
}

func (a *App) list(user string) {
	items := a.Todos.ListByOwner(user, todo.Filter{})
	done, pending := a.Todos.Stats(user)
	lines := []string{
		ui.Header(user, done, pending),
		ui.Current().Muted.Render(ui.ProgressBar(done, done+pending, 28)),
		"",
	}
	ui.Panel(a.out, append(lines, ui.ItemLines(items, nil)...))
}

func (a *App) view(user string) error {
	it, ok, err := a.pick(user)
	if err != nil || !ok {
		return err
	}
	ui.Panel(a.out, ui.ItemDetail(it))
	return nil
}

func (a *App) edit(user string) error {
	it, ok, err := a.pick(user)
	if err != nil || !ok {
		return err
	}
	var patch todo.Patch

	title, err := a.p.Line(fmt.Sprintf("Title [%s]: ", it.Title))
	if err != nil {
		return err
	}
	if title != "" {
		patch.Title = &title
	}
	details, err := a.p.Line(fmt.Sprintf("Details [%s]: ", it.Details))
	if err != nil {
		return err
	}
	if details != "" {
		patch.Details = &details
	}
	prio, err := a.priority(it.Priority)
	if err != nil {
		return err
	}
	if prio != it.Priority {
		patch.Priority = &prio
	}
	status, err := a.status(it.Status)
	if err != nil {
		return err
	}
	if status != it.Status {
		patch.Status = &status
	}

	if patch.Empty() {
		fmt.Fprintln(a.out, "Nothing changed.")
		return nil
	}
	if _, err := a.Todos.Update(it.ID, user, patch); err != nil {
		ui.Fail(a.out, err.Error())
		return nil
	}
	ui.OK(a.out, "updated")
	return nil
}

func (a *App) complete(user string) error {
	it, ok, err := a.pick(user)
	if err != nil || !ok {
		return err
	}
	if _, err := a.Todos.MarkCompleted(it.ID, user); err != nil {
		ui.Fail(a.out, err.Error())
		return nil
	}
	ui.OK(a.out, "completed")
	return nil
}

func (a *App) remove(user string) error {
	it, ok, err := a.pick(user)
	if err != nil || !ok {
		return err
	}
	yes, err := a.p.Confirm(fmt.Sprintf("Delete %q?", it.Title))
	if err != nil {
		return err
	}
	if !yes {
		fmt.Fprintln(a.out, "Kept.")
		return nil
	}
	if err := a.Todos.Delete(it.ID, user); err != nil {
		ui.Fail(a.out, err.Error())
		return nil
	}
	ui.OK(a.out, "deleted")
	return nil
}

// pick asks for a todo by list number or id prefix. ok is false when the
// answer matched nothing; the reason has been printed.
func (a *App) pick(user string) (model.Item, bool, error) {
	items := a.Todos.ListByOwner(user, todo.Filter{})
	if len(items) == 0 {
		fmt.Fprintln(a.out, "You have no todos.")
		return model.Item{}, false, nil
	}
	ui.Panel(a.out, ui.ItemLines(items, nil))
	ans, err := a.p.Line("Todo number or id: ")
	if err != nil {
		return model.Item{}, false, err
	}
	if n, convErr := strconv.Atoi(ans); convErr == nil {
		if n < 1 || n > len(items) {
			ui.Fail(a.out, fmt.Sprintf("index out of range: have %d, got %d", len(items), n))
			return model.Item{}, false, nil
		}
		return items[n-1], true, nil
	}
	id, err := a.Todos.ResolveID(ans, user)
	if err != nil {
		ui.Fail(a.out, err.Error())
		return model.Item{}, false, nil
	}
	it, err := a.Todos.Get(id, user)
	if err != nil {
		ui.Fail(a.out, err.Error())
		return model.Item{}, false, nil
	}
	return it, true, nil
}

// priority re-prompts until the answer is blank (keep def) or valid.
func (a *App) priority(def model.Priority) (model.Priority, error) {
	for {
		s, err := a.p.Line(fmt.Sprintf("Priority (HIGH/MID/LOW) [%s]: ", def))
		if err != nil {
			return "", err
		}
		if s == "" {
			return def, nil
		}
		p, perr := model.ParsePriority(s)
		if perr == nil {
			return p, nil
		}
		fmt.Fprintln(a.out, perr.Error())
	}
}

func (a *App) status(def model.Status) (model.Status, error) {
	for {
		s, err := a.p.Line(fmt.Sprintf("Status (PENDING/COMPLETED) [%s]: ", def))
		if err != nil {
			return "", err
		}
		if s == "" {
			return def, nil
		}
		st, perr := model.ParseStatus(s)
		if perr == nil {
			return st, nil
		}
		fmt.Fprintln(a.out, perr.Error())
	}
}

// quiet treats running out of input as a normal exit.
func quiet(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
