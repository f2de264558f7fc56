package ui

import (
	"fmt"
	"io"

	"github.com/Makepad-fr/tadakit/internal/model"
)

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymOK+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render(current.SymFail+" "+msg))
}

// Hint prints a muted follow-up line, e.g. after a failure.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Muted.Render(msg))
}

// Box is the checkbox glyph for an item's status.
func Box(s model.Status) string {
	if s == model.StatusCompleted {
		return current.Success.Render(current.BoxChecked)
	}
	return current.Muted.Render(current.BoxUnchecked)
}

// PriorityBadge renders a fixed-width, colored priority label.
func PriorityBadge(p model.Priority) string {
	label := fmt.Sprintf("%-4s", p)
	switch p {
	case model.PriorityHigh:
		return current.High.Render(label)
	case model.PriorityLow:
		return current.Low.Render(label)
	default:
		return current.Mid.Render(label)
	}
}
