package tracker

import (
	"github.com/campus-fixit/fixit/internal/classifier"
	"github.com/campus-fixit/fixit/internal/domain"
)

// View is an immutable snapshot of a widget, with every display value
// already derived.
type View struct {
	WidgetID     string
	Complaint    string
	Category     domain.Category
	AssignedTo   string
	BadgeClass   string
	Source       classifier.Source
	Submitted    bool
	Status       domain.TicketStatus
	Ticket       *domain.Ticket
	Dots         [4]bool
	Heading      string
	Pulse        string
	DismissLabel string
}

func (w *Widget) viewLocked() View {
	status := domain.TicketStatusPending
	var ticket *domain.Ticket
	if w.ticket != nil {
		cp := *w.ticket
		ticket = &cp
		status = cp.Status
	}

	// The tracker keeps showing the assignee the ticket was routed to.
	assignment := w.result.Assignment
	if ticket != nil {
		assignment = ticket.Assignment
	}

	return View{
		WidgetID:     w.id,
		Complaint:    w.complaint,
		Category:     assignment.Category,
		AssignedTo:   assignment.AssignedTo,
		BadgeClass:   classifier.BadgeClass(assignment.Category),
		Source:       w.result.Source,
		Submitted:    ticket != nil,
		Status:       status,
		Ticket:       ticket,
		Dots:         Dots(status),
		Heading:      Heading(status),
		Pulse:        PulseSymbol(status),
		DismissLabel: DismissLabel(status),
	}
}
