package domain

import "testing"

func TestExecutionTransitionTable(t *testing.T) {
	table := NewTransitionTable()

	allowed := map[Status][]Status{
		StatusStarted: {StatusRunning, StatusSuccess, StatusFailed, StatusTimeout, StatusCancelled},
		StatusRunning: {StatusSuccess, StatusFailed, StatusTimeout, StatusCancelled},
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

func TestTerminalSet(t *testing.T) {
	table := NewTransitionTable()

	terminal := map[Status]bool{
		StatusSuccess:   true,
		StatusFailed:    true,
		StatusTimeout:   true,
		StatusCancelled: true,
	}

	for _, status := range Statuses() {
		if got := table.IsTerminal(status); got != terminal[status] {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, terminal[status])
		}
	}
}

func TestUnknownStatus(t *testing.T) {
	table := NewTransitionTable()

	if table.IsKnown("PENDING") {
		t.Error("PENDING must not be a known execution status")
	}
	if table.CanTransition(StatusStarted, "PENDING") {
		t.Error("unknown target status must not be reachable")
	}
}
