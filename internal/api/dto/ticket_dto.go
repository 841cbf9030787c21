package dto

import (
	"time"

	"github.com/campus-fixit/fixit/internal/domain"
)

// UpdateComplaintRequest payload, sent on every keystroke. Seq grows
// with each edit from a page; zero means unordered.
type UpdateComplaintRequest struct {
	Complaint string `json:"complaint"`
	Seq       uint64 `json:"seq,omitempty"`
}

// SubmitRequest payload. Complaint is optional; when present it
// replaces the widget's current text.
type SubmitRequest struct {
	StudentID string  `json:"student_id"`
	Complaint *string `json:"complaint,omitempty"`
}

// ClassifyRequest payload.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassificationResponse is the routing derived from complaint text.
type ClassificationResponse struct {
	Category   domain.Category `json:"category"`
	AssignedTo string          `json:"assigned_to"`
	BadgeClass string          `json:"badge_class"`
	Source     string          `json:"source"`
	Matched    string          `json:"matched,omitempty"`
}

// TicketResponse describes the ticket being tracked.
type TicketResponse struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"external_key"`
	Status      domain.TicketStatus `json:"status"`
	Category    domain.Category     `json:"category"`
	AssignedTo  string              `json:"assigned_to"`
	SubmittedAt time.Time           `json:"submitted_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TrackerResponse carries the derived display state of the tracker.
type TrackerResponse struct {
	Status       domain.TicketStatus `json:"status"`
	Dots         [4]bool             `json:"dots"`
	Heading      string              `json:"heading"`
	Pulse        string              `json:"pulse"`
	DismissLabel string              `json:"dismiss_label"`
}

// WidgetResponse is the full widget view.
type WidgetResponse struct {
	ID         string          `json:"id"`
	Complaint  string          `json:"complaint"`
	Category   domain.Category `json:"category"`
	AssignedTo string          `json:"assigned_to"`
	BadgeClass string          `json:"badge_class"`
	Submitted  bool            `json:"submitted"`
	Tracker    TrackerResponse `json:"tracker"`
	Ticket     *TicketResponse `json:"ticket,omitempty"`
}
