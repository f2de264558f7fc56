package ui

import (
	"strings"
	"testing"

	"github.com/Makepad-fr/tadakit/internal/model"
)

func TestItemLines_KeepDefaultPositions(t *testing.T) {
	t.Parallel()

	all := []model.Item{
		{ID: "aaaaaaaa-1", Title: "Low thing", Priority: model.PriorityLow, Status: model.StatusPending},
		{ID: "bbbbbbbb-2", Title: "Urgent thing", Priority: model.PriorityHigh, Status: model.StatusPending},
		{ID: "cccccccc-3", Title: "Finished", Priority: model.PriorityMid, Status: model.StatusCompleted},
	}
	pos := Positions(all)

	sorted := []model.Item{all[1], all[2], all[0]}
	lines := ItemLines(sorted, pos)
	if !strings.Contains(lines[0], " 2.") || !strings.Contains(lines[0], "Urgent thing") {
		t.Errorf("Expected urgent item numbered 2, got %q", lines[0])
	}
	if !strings.Contains(lines[2], " 1.") || !strings.Contains(lines[2], "Low thing") {
		t.Errorf("Expected low item numbered 1, got %q", lines[2])
	}

	var doneLine string
	for _, l := range GroupedLines(all, pos) {
		if strings.Contains(l, "cccccccc") {
			doneLine = l
		}
	}
	if !strings.Contains(doneLine, " 3.") {
		t.Errorf("Expected done item to keep number 3 when grouped, got %q", doneLine)
	}

	plain := ItemLines(sorted, nil)
	if !strings.Contains(plain[0], " 1.") {
		t.Errorf("Expected row numbering without positions, got %q", plain[0])
	}
}
