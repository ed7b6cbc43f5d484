// Package domain provides core business rules for the campaigns bounded context.
package domain

// Status is the campaign lifecycle status.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCompleted Status = "COMPLETED"
	StatusArchived  Status = "ARCHIVED"
)

// TransitionTable holds the allowed campaign status transitions. The table is
// built once at startup and injected; it is never mutated afterwards.
type TransitionTable struct {
	edges map[Status]map[Status]bool
}

// NewTransitionTable builds the campaign lifecycle adjacency table.
// ARCHIVED is terminal: it has no outgoing edges.
func NewTransitionTable() *TransitionTable {
	adjacency := map[Status][]Status{
		StatusDraft:     {StatusActive, StatusArchived},
		StatusActive:    {StatusPaused, StatusCompleted, StatusArchived},
		StatusPaused:    {StatusActive, StatusCompleted, StatusArchived},
		StatusCompleted: {StatusArchived},
		StatusArchived:  {},
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

// IsTerminal reports whether the status has no outgoing edges.
func (t *TransitionTable) IsTerminal(status Status) bool {
	targets, ok := t.edges[status]
	return ok && len(targets) == 0
}

// Statuses lists all campaign statuses, for validation and tests.
func Statuses() []Status {
	return []Status{StatusDraft, StatusActive, StatusPaused, StatusCompleted, StatusArchived}
}
