package tracker

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campus-fixit/fixit/internal/classifier"
	"github.com/campus-fixit/fixit/internal/clock"
	"github.com/campus-fixit/fixit/internal/domain"
)

var (
	ErrStudentIDRequired = errors.New("student id required")
	ErrComplaintRequired = errors.New("complaint required")
	ErrTicketActive      = errors.New("a ticket is already being tracked")
)

// StatusChange describes one transition of a widget's ticket.
type StatusChange struct {
	WidgetID string
	Ticket   domain.Ticket
	From     domain.TicketStatus
	To       domain.TicketStatus
}

// Options configures a Widget.
type Options struct {
	Classifier *classifier.Classifier
	Clock      clock.Clock
	Unit       time.Duration
	// OnStatusChange is called outside the widget lock after every
	// scheduled transition. The Dispatched transition made by Submit is
	// not reported here.
	OnStatusChange func(StatusChange)
}

// Widget owns the state of one complaint form: the text being typed,
// its derived routing, and at most one ticket in flight.
type Widget struct {
	id         string
	classifier *classifier.Classifier
	clock      clock.Clock
	timeline   Timeline
	onChange   func(StatusChange)

	mu         sync.Mutex
	complaint  string
	result     classifier.Result
	ticket     *domain.Ticket
	timers     []*clock.Timer
	lastActive time.Time
	lastSeq    uint64
	closed     bool
}

// NewWidget returns an empty form.
func NewWidget(opts Options) *Widget {
	if opts.Classifier == nil {
		opts.Classifier = classifier.New(classifier.DefaultRuleSet())
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	w := &Widget{
		id:         uuid.NewString(),
		classifier: opts.Classifier,
		clock:      opts.Clock,
		timeline:   Timeline{Unit: opts.Unit},
		onChange:   opts.OnStatusChange,
	}
	w.result = w.classifier.Classify("")
	w.lastActive = w.clock.Now()
	return w
}

// ID identifies the widget.
func (w *Widget) ID() string {
	return w.id
}

// SetComplaint replaces the complaint text and recomputes its routing.
func (w *Widget) SetComplaint(text string) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setComplaintLocked(text)
	return w.viewLocked()
}

// SetComplaintAt is SetComplaint for edits tagged with a client
// sequence number. An edit whose seq is not above the last applied one
// arrived late and is dropped; the current view is returned either way
// with applied reporting whether the text changed. A zero seq is
// always applied.
func (w *Widget) SetComplaintAt(text string, seq uint64) (view View, applied bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if seq != 0 {
		if seq <= w.lastSeq {
			w.touchLocked()
			return w.viewLocked(), false
		}
		w.lastSeq = seq
	}
	w.setComplaintLocked(text)
	return w.viewLocked(), true
}

func (w *Widget) setComplaintLocked(text string) {
	w.complaint = text
	w.result = w.classifier.Classify(text)
	w.touchLocked()
}

// Submit opens a ticket for the current complaint and starts its
// status progression. The ticket is Dispatched before Submit returns;
// that first transition is left to the caller to announce, so
// OnStatusChange only sees the scheduled ones. Required fields only
// need to be non-empty; whitespace counts as content.
func (w *Widget) Submit(studentID string) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if studentID == "" {
		return View{}, ErrStudentIDRequired
	}
	if w.complaint == "" {
		return View{}, ErrComplaintRequired
	}
	if w.ticket != nil {
		return View{}, ErrTicketActive
	}

	now := w.clock.Now()
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		ExternalKey: generateTicketKey(),
		StudentID:   studentID,
		Complaint:   w.complaint,
		Assignment:  w.result.Assignment,
		Status:      domain.TicketStatusDispatched,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	w.ticket = ticket
	w.touchLocked()
	w.scheduleLocked(ticket.ID)
	return w.viewLocked(), nil
}

func (w *Widget) scheduleLocked(ticketID string) {
	unit := w.timeline.Unit
	if unit <= 0 {
		unit = DefaultUnit
	}
	for _, step := range Schedule {
		if step.Offset == 0 {
			continue
		}
		status := step.Status
		timer := w.clock.AfterFunc(time.Duration(step.Offset)*unit, func() {
			w.advance(ticketID, status)
		})
		w.timers = append(w.timers, timer)
	}
}

// advance applies a scheduled transition. Transitions for a ticket that
// was reset, or that would not move the status forward, are dropped.
func (w *Widget) advance(ticketID string, to domain.TicketStatus) {
	w.mu.Lock()
	if w.closed || w.ticket == nil || w.ticket.ID != ticketID {
		w.mu.Unlock()
		return
	}
	from := w.ticket.Status
	if to.Ordinal() <= from.Ordinal() {
		w.mu.Unlock()
		return
	}
	w.ticket.Status = to
	w.ticket.UpdatedAt = w.clock.Now()
	if to.Terminal() {
		w.timers = nil
	}
	change := StatusChange{WidgetID: w.id, Ticket: *w.ticket, From: from, To: to}
	w.mu.Unlock()

	w.notify(change)
}

// Reset closes the tracker: pending transitions are canceled, the
// status returns to Pending and the complaint text is cleared. It
// returns the ticket that was being tracked, if any.
func (w *Widget) Reset() (View, *domain.Ticket) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimersLocked()
	old := w.ticket
	w.ticket = nil
	w.complaint = ""
	w.result = w.classifier.Classify("")
	w.touchLocked()
	return w.viewLocked(), old
}

// Close cancels pending transitions for good. Later calls to advance
// are ignored.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimersLocked()
	w.closed = true
}

// View snapshots the widget for rendering.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// Touch records user activity, such as the page polling the tracker.
func (w *Widget) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touchLocked()
}

// LastActive is the time of the last user action.
func (w *Widget) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// PendingTransitions counts scheduled transitions not yet applied.
func (w *Widget) PendingTransitions() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ticket == nil {
		return 0
	}
	n := 0
	for _, step := range Schedule {
		if step.Status.Ordinal() > w.ticket.Status.Ordinal() {
			n++
		}
	}
	return n
}

func (w *Widget) stopTimersLocked() {
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
}

func (w *Widget) touchLocked() {
	w.lastActive = w.clock.Now()
}

func (w *Widget) notify(change StatusChange) {
	if w.onChange != nil {
		w.onChange(change)
	}
}

func generateTicketKey() string {
	return "FIX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
