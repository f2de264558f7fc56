package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tadakit/internal/model"
	"github.com/Makepad-fr/tadakit/internal/todo"
	"github.com/Makepad-fr/tadakit/internal/tui"
	"github.com/Makepad-fr/tadakit/internal/ui"
	"github.com/spf13/cobra"
)

// resolveRef turns a 1-based list index or an id prefix into a full id.
// Small numbers are read as indexes into the default listing; `ls` keeps
// those numbers whatever the sort or filter.
func resolveRef(m *todo.Manager, user, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		items := m.ListByOwner(user, todo.Filter{})
		if n >= 1 && n <= len(items) {
			return items[n-1].ID, nil
		}
		if len(ref) < 4 {
			return "", &CodeError{
				Code: ExitUsage,
				Err:  fmt.Errorf("index out of range: have %d, got %d", len(items), n),
				Hint: "Hint: run `tada ls` to see valid indexes",
			}
		}
	}
	id, err := m.ResolveID(ref, user)
	if err != nil {
		return "", &CodeError{Code: ExitUsage, Err: err, Hint: "Hint: run `tada ls` to see ids"}
	}
	return id, nil
}

// invalidAsUsage reports rejected field values as usage errors.
func invalidAsUsage(err error) error {
	if errors.Is(err, todo.ErrInvalid) {
		return usageWrap(err)
	}
	return err
}

func newAddCmd(app *App) *cobra.Command {
	var details, priority string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new todo (title can be multiple words)",
		Args:  posArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, err := model.ParsePriority(priority)
			if err != nil {
				return usageWrap(err)
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usageErr("add: empty title")
			}
			user, m, err := app.userAndTodos()
			if err != nil {
				return err
			}
			it, err := m.Create(title, details, prio, user)
			if err != nil {
				return invalidAsUsage(err)
			}
			ui.OK(app.out, "added "+ui.ShortID(it.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&details, "details", "d", "", "longer description")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(model.PriorityMid), "HIGH, MID or LOW")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var status, priority, sortBy string
	var group, asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your todos",
		Args:    posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f todo.Filter
			var err error
			if status != "" {
				if f.Status, err = model.ParseStatus(status); err != nil {
					return usageWrap(err)
				}
			}
			if priority != "" {
				if f.Priority, err = model.ParsePriority(priority); err != nil {
					return usageWrap(err)
				}
			}
			switch sortBy {
			case "", "created":
			case "priority":
				f.SortByPriority = true
			default:
				return usageErr("unknown sort %q (created or priority)", sortBy)
			}

			user, m, err := app.userAndTodos()
			if err != nil {
				return err
			}
			items := m.ListByOwner(user, f)
			pos := ui.Positions(m.ListByOwner(user, todo.Filter{}))

			if asJSON {
				enc := json.NewEncoder(app.out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			done, pending := m.Stats(user)
			lines := []string{
				ui.Header(user, done, pending),
				ui.Current().Muted.Render(ui.ProgressBar(done, done+pending, 28)),
				"",
			}
			if group {
				lines = append(lines, ui.GroupedLines(items, pos)...)
			} else {
				lines = append(lines, ui.ItemLines(items, pos)...)
			}
			lines = append(lines, "", ui.Current().Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
			ui.Panel(app.out, lines)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only PENDING or COMPLETED")
	cmd.Flags().StringVar(&priority, "priority", "", "only HIGH, MID or LOW")
	cmd.Flags().StringVar(&sortBy, "sort", "", "created (default) or priority")
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <index|id>",
		Short: "Show every field of one todo",
		Args:  posArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, m, err := app.userAndTodos()
			if err != nil {
				return err
			}
			id, err := resolveRef(m, user, args[0])
			if err != nil {
				return err
			}
			it, err := m.Get(id, user)
			if err != nil {
				return err
			}
			ui.Panel(app.out, ui.ItemDetail(it))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var title, details, priority, status string
	cmd := &cobra.Command{
		Use:   "edit <index|id>",
		Short: "Change a todo's title, details, priority or status",
		Args:  posArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p todo.Patch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("details") {
				p.Details = &details
			}
			if cmd.Flags().Changed("priority") {
				prio, err := model.ParsePriority(priority)
				if err != nil {
					return usageWrap(err)
				}
				p.Priority = &prio
			}
			if cmd.Flags().Changed("status") {
				st, err := model.ParseStatus(status)
				if err != nil {
					return usageWrap(err)
				}
				p.Status = &st
			}
			if p.Empty() {
				return usageErr("edit: nothing to change (use --title, --details, --priority or --status)")
			}

			user, m, err := app.userAndTodos()
			if err != nil {
				return err
			}
			id, err := resolveRef(m, user, args[0])
			if err != nil {
				return err
			}
			if _, err := m.Update(id, user, p); err != nil {
				return invalidAsUsage(err)
			}
			ui.OK(app.out, "updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&details, "details", "", "new details")
	cmd.Flags().StringVar(&priority, "priority", "", "HIGH, MID or LOW")
	cmd.Flags().StringVar(&status, "status", "", "PENDING or COMPLETED")
	return cmd
}

// newItemCmd builds the single-argument commands done/reopen/rm.
func newItemCmd(app *App, use, short, okMsg string, act func(m *todo.Manager, id, user string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <index|id>",
		Short: short,
		Args:  posArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, m, err := app.userAndTodos()
			if err != nil {
				return err
			}
			id, err := resolveRef(m, user, args[0])
			if err != nil {
				return err
			}
			if err := act(m, id, user); err != nil {
				return err
			}
			ui.OK(app.out, okMsg)
			return nil
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return newItemCmd(app, "done", "Mark a todo completed", "completed", func(m *todo.Manager, id, user string) error {
		_, err := m.MarkCompleted(id, user)
		return err
	})
}

func newReopenCmd(app *App) *cobra.Command {
	return newItemCmd(app, "reopen", "Mark a completed todo pending again", "reopened", func(m *todo.Manager, id, user string) error {
		_, err := m.Reopen(id, user)
		return err
	})
}

func newRemoveCmd(app *App) *cobra.Command {
	cmd := newItemCmd(app, "rm", "Delete a todo", "removed", func(m *todo.Manager, id, user string) error {
		return m.Delete(id, user)
	})
	cmd.Aliases = []string{"delete"}
	return cmd
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and edit your todos interactively",
		Args:  posArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, m, err := app.userAndTodos()
			if err != nil {
				return err
			}
			if err := tui.Run(m, user); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
}
