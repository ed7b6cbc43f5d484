package domain

import "testing"

func TestTransitionTableAllowsOnlyDeclaredEdges(t *testing.T) {
	table := NewTransitionTable()

	allowed := map[Status][]Status{
		StatusDraft:     {StatusActive, StatusArchived},
		StatusActive:    {StatusPaused, StatusCompleted, StatusArchived},
		StatusPaused:    {StatusActive, StatusCompleted, StatusArchived},
		StatusCompleted: {StatusArchived},
		StatusArchived:  {},
	}

	for _, from := range Statuses() {
		legal := make(map[Status]bool)
		for _, to := range allowed[from] {
			legal[to] = true
		}
		for _, to := range Statuses() {
			got := table.CanTransition(from, to)
			if got != legal[to] {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, legal[to])
			}
		}
	}
}

func TestArchivedIsTerminal(t *testing.T) {
	table := NewTransitionTable()

	if !table.IsTerminal(StatusArchived) {
		t.Error("ARCHIVED must be terminal")
	}
	if table.CanTransition(StatusArchived, StatusActive) {
		t.Error("ARCHIVED -> ACTIVE must be rejected")
	}

	for _, status := range []Status{StatusDraft, StatusActive, StatusPaused, StatusCompleted} {
		if table.IsTerminal(status) {
			t.Errorf("%s must not be terminal", status)
		}
	}
}

func TestUnknownStatusHasNoEdges(t *testing.T) {
	table := NewTransitionTable()

	if table.IsKnown("DELETED") {
		t.Error("DELETED must not be a known status")
	}
	if table.CanTransition("DELETED", StatusActive) {
		t.Error("unknown source status must have no outgoing edges")
	}
	if table.CanTransition(StatusDraft, "DELETED") {
		t.Error("unknown target status must not be reachable")
	}
}
