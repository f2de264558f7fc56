package ui

import (
	"fmt"
	"time"

	"github.com/Makepad-fr/tadakit/internal/model"
)

// ShortID is the prefix shown in listings; any unique prefix resolves.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ItemLine renders one listing row: index, short id, checkbox, priority, title.
func ItemLine(index int, it model.Item) string {
	title := Truncate(it.Title, 60)
	if it.Completed() {
		title = current.Done.Render(title)
	}
	return fmt.Sprintf("%s %s %s %s %s",
		current.Muted.Render(fmt.Sprintf("%2d.", index)),
		current.Muted.Render(ShortID(it.ID)),
		Box(it.Status),
		PriorityBadge(it.Priority),
		title,
	)
}

// Positions maps each id to its 1-based number in the unfiltered listing.
// Those numbers are what index arguments resolve against.
func Positions(all []model.Item) map[string]int {
	pos := make(map[string]int, len(all))
	for i, it := range all {
		pos[it.ID] = i + 1
	}
	return pos
}

// ItemLines renders a listing, or a placeholder when empty. Rows are
// numbered from pos; a nil pos numbers them in order.
func ItemLines(items []model.Item, pos map[string]int) []string {
	if len(items) == 0 {
		return []string{current.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		n, ok := pos[it.ID]
		if !ok {
			n = i + 1
		}
		out = append(out, ItemLine(n, it))
	}
	return out
}

// GroupedLines splits the listing into Pending and Done sections. pos
// should be non-nil so numbers stay stable across the sections.
func GroupedLines(items []model.Item, pos map[string]int) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed() {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	section := func(title string, its []model.Item) []string {
		lines := []string{current.Accent.Render(title)}
		if len(its) == 0 {
			return append(lines, current.Muted.Render("(none)"))
		}
		return append(lines, ItemLines(its, pos)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// Header is the title line with completed/pending/total counts.
func Header(owner string, completed, pending int) string {
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		current.Title.Render("Todos · "+owner),
		current.Success.Render(current.SymDone), completed,
		current.Pending.Render(current.SymPending), pending,
		current.Accent.Render("Total"), completed+pending,
	)
}

// ItemDetail renders every field of one item.
func ItemDetail(it model.Item) []string {
	lines := []string{
		current.Title.Render(it.Title),
		"",
		fmt.Sprintf("%s %s", current.Muted.Render("id:      "), it.ID),
		fmt.Sprintf("%s %s %s", current.Muted.Render("status:  "), Box(it.Status), it.Status),
		fmt.Sprintf("%s %s", current.Muted.Render("priority:"), PriorityBadge(it.Priority)),
		fmt.Sprintf("%s %s", current.Muted.Render("owner:   "), it.Owner),
		fmt.Sprintf("%s %s", current.Muted.Render("created: "), it.CreatedAt.UTC().Format(time.RFC3339)),
		fmt.Sprintf("%s %s", current.Muted.Render("updated: "), it.UpdatedAt.UTC().Format(time.RFC3339)),
	}
	if it.Details != "" {
		lines = append(lines, "", it.Details)
	}
	return lines
}
