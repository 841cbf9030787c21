package events

import (
	"time"

	"github.com/campus-fixit/fixit/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted  EventType = "complaint_submitted"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTrackerReset        EventType = "tracker_reset"
)

// Event represents a widget event emitted by the service layer.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	WidgetID  string      `json:"widget_id"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	ExternalKey string          `json:"external_key"`
	StudentID   string          `json:"student_id"`
	Category    domain.Category `json:"category"`
	AssignedTo  string          `json:"assigned_to"`
	Preview     string          `json:"preview"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	ExternalKey string              `json:"external_key"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// TrackerResetPayload payload.
type TrackerResetPayload struct {
	ExternalKey string              `json:"external_key"`
	LastStatus  domain.TicketStatus `json:"last_status"`
}
