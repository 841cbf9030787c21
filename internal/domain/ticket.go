package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates the tracker stages, in order.
type TicketStatus string

const (
	TicketStatusPending     TicketStatus = "Pending"
	TicketStatusDispatched  TicketStatus = "Dispatched"
	TicketStatusSeenByAdmin TicketStatus = "Seen by Admin"
	TicketStatusInProgress  TicketStatus = "In Progress"
	TicketStatusResolved    TicketStatus = "Resolved"
)

var statusOrder = []TicketStatus{
	TicketStatusPending,
	TicketStatusDispatched,
	TicketStatusSeenByAdmin,
	TicketStatusInProgress,
	TicketStatusResolved,
}

// Statuses returns every status in lifecycle order.
func Statuses() []TicketStatus {
	return append([]TicketStatus(nil), statusOrder...)
}

// Ordinal is the position in the lifecycle, Pending being 0. Unknown
// values report -1.
func (s TicketStatus) Ordinal() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s TicketStatus) String() string {
	return string(s)
}

// ParseStatus matches a status label case-insensitively, ignoring
// surrounding space.
func ParseStatus(label string) (TicketStatus, error) {
	label = strings.TrimSpace(label)
	for _, st := range statusOrder {
		if strings.EqualFold(string(st), label) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown ticket status %q", label)
}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	return s.Ordinal() >= 0
}

// Terminal reports whether no further transition is scheduled.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved
}

// Ticket exists from submission until the tracker is closed.
type Ticket struct {
	ID          string
	ExternalKey string
	StudentID   string
	Complaint   string
	Assignment  Assignment
	Status      TicketStatus
	SubmittedAt time.Time
	UpdatedAt   time.Time
}
