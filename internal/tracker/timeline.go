// Package tracker drives the complaint widget: live classification of
// the complaint text and the timed status progression of a submitted
// ticket.
package tracker

import (
	"time"

	"github.com/campus-fixit/fixit/internal/domain"
)

// Step is one scheduled transition, Offset units after submission.
type Step struct {
	Offset int
	Status domain.TicketStatus
}

// Schedule is the fixed progression of every ticket.
var Schedule = []Step{
	{Offset: 0, Status: domain.TicketStatusDispatched},
	{Offset: 3, Status: domain.TicketStatusSeenByAdmin},
	{Offset: 6, Status: domain.TicketStatusInProgress},
	{Offset: 10, Status: domain.TicketStatusResolved},
}

// DefaultUnit is the length of one schedule unit.
const DefaultUnit = time.Second

// Timeline maps elapsed time since submission to a status.
type Timeline struct {
	Unit time.Duration
}

// StatusAt returns the status a ticket has after elapsed time. A
// negative elapsed time means the ticket has not been submitted yet.
func (t Timeline) StatusAt(elapsed time.Duration) domain.TicketStatus {
	unit := t.Unit
	if unit <= 0 {
		unit = DefaultUnit
	}
	status := domain.TicketStatusPending
	for _, step := range Schedule {
		if elapsed < time.Duration(step.Offset)*unit {
			break
		}
		status = step.Status
	}
	return status
}

// Total is the time from submission to resolution.
func (t Timeline) Total() time.Duration {
	unit := t.Unit
	if unit <= 0 {
		unit = DefaultUnit
	}
	return time.Duration(Schedule[len(Schedule)-1].Offset) * unit
}

// AdvanceStatus returns the status after elapsed time on a timeline of
// the given unit. A non-positive unit means DefaultUnit.
func AdvanceStatus(elapsed, unit time.Duration) domain.TicketStatus {
	return Timeline{Unit: unit}.StatusAt(elapsed)
}

// Dots is the four-stage progress indicator: dot i (1-based) is
// filled when the status ordinal is at least i.
func Dots(status domain.TicketStatus) [4]bool {
	var dots [4]bool
	ord := status.Ordinal()
	for i := range dots {
		dots[i] = ord >= i+1
	}
	return dots
}

// Heading is the tracker title.
func Heading(status domain.TicketStatus) string {
	if status.Terminal() {
		return "Issue Fixed!"
	}
	return "Tracking Ticket"
}

// PulseSymbol is the glyph inside the status circle.
func PulseSymbol(status domain.TicketStatus) string {
	if status.Terminal() {
		return "✓"
	}
	return "●"
}

// DismissLabel is the caption of the button that closes the tracker.
func DismissLabel(status domain.TicketStatus) string {
	if status.Terminal() {
		return "Log Another Issue"
	}
	return "Close Tracker"
}
