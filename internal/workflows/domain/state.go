// Package domain provides core business rules for the workflows bounded context.
package domain

// Status is the workflow execution lifecycle status.
type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusRunning   Status = "RUNNING"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusTimeout   Status = "TIMEOUT"
	StatusCancelled Status = "CANCELLED"
)

// TransitionTable holds the allowed execution status transitions. Built once
// at startup and injected; never mutated afterwards.
//
// The automation engine only reports completions, so a STARTED execution may
// jump straight to a terminal status without an intermediate RUNNING signal.
type TransitionTable struct {
	edges map[Status]map[Status]bool
}

// NewTransitionTable builds the execution lifecycle adjacency table.
// SUCCESS, FAILED, TIMEOUT, and CANCELLED are terminal.
func NewTransitionTable() *TransitionTable {
	adjacency := map[Status][]Status{
		StatusStarted:   {StatusRunning, StatusSuccess, StatusFailed, StatusTimeout, StatusCancelled},
		StatusRunning:   {StatusSuccess, StatusFailed, StatusTimeout, StatusCancelled},
		StatusSuccess:   {},
		StatusFailed:    {},
		StatusTimeout:   {},
		StatusCancelled: {},
	}

	edges := make(map[Status]map[Status]bool, len(adjacency))
	for from, targets := range adjacency {
		edges[from] = make(map[Status]bool, len(targets))
		for _, to := range targets {
			edges[from][to] = true
		}
	}
	return &TransitionTable{edges: edges}
}

// CanTransition reports whether from -> to is a legal edge.
func (t *TransitionTable) CanTransition(from, to Status) bool {
	return t.edges[from][to]
}

// IsKnown reports whether the status is part of the lifecycle at all.
func (t *TransitionTable) IsKnown(status Status) bool {
	_, ok := t.edges[status]
	return ok
}

// IsTerminal reports whether the status has no outgoing edges. Once an
// execution reaches a terminal status, its record is immutable.
func (t *TransitionTable) IsTerminal(status Status) bool {
	targets, ok := t.edges[status]
	return ok && len(targets) == 0
}

// Statuses lists all execution statuses, for validation and tests.
func Statuses() []Status {
	return []Status{StatusStarted, StatusRunning, StatusSuccess, StatusFailed, StatusTimeout, StatusCancelled}
}
