package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-fixit/fixit/internal/classifier"
	"github.com/campus-fixit/fixit/internal/clock"
	"github.com/campus-fixit/fixit/internal/domain"
	"github.com/campus-fixit/fixit/internal/events"
	"github.com/campus-fixit/fixit/internal/observability"
	"github.com/campus-fixit/fixit/internal/tracker"
	apperrors "github.com/campus-fixit/fixit/pkg/util/errorutil"
)

// WidgetService keeps the live complaint widgets of this process. All
// state is in memory and lost on restart.
type WidgetService struct {
	classifier *classifier.Classifier
	clock      clock.Clock
	unit       time.Duration
	idleTTL    time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu      sync.RWMutex
	widgets map[string]*tracker.Widget

	janitorMu sync.Mutex
	janitor   *clock.Timer
	stopped   bool
}

// WidgetDependencies bundles collaborators for the widget service.
type WidgetDependencies struct {
	Classifier *classifier.Classifier
	Clock      clock.Clock
	StepUnit   time.Duration
	IdleTTL    time.Duration
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// SubmitInput is the submitted form.
type SubmitInput struct {
	StudentID string
	// Complaint, when non-nil, replaces the widget's text before the
	// ticket is opened.
	Complaint *string
}

// NewWidgetService constructs the service.
func NewWidgetService(deps WidgetDependencies) *WidgetService {
	if deps.Classifier == nil {
		deps.Classifier = classifier.New(classifier.DefaultRuleSet())
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.StepUnit <= 0 {
		deps.StepUnit = tracker.DefaultUnit
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &WidgetService{
		classifier: deps.Classifier,
		clock:      deps.Clock,
		unit:       deps.StepUnit,
		idleTTL:    deps.IdleTTL,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		widgets:    make(map[string]*tracker.Widget),
	}
}

// Classify routes text without touching any widget.
func (s *WidgetService) Classify(text string) classifier.Result {
	return s.classifier.Classify(text)
}

// CreateWidget opens a blank form.
func (s *WidgetService) CreateWidget(ctx context.Context) (tracker.View, error) {
	if err := checkContext(ctx); err != nil {
		return tracker.View{}, err
	}
	w := tracker.NewWidget(tracker.Options{
		Classifier:     s.classifier,
		Clock:          s.clock,
		Unit:           s.unit,
		OnStatusChange: s.handleStatusChange,
	})
	s.mu.Lock()
	s.widgets[w.ID()] = w
	s.mu.Unlock()
	s.logger.Debug("widget created", zap.String("widget_id", w.ID()))
	return w.View(), nil
}

// GetWidget returns the current view of a widget. A read counts as
// activity so a page that is only polling its tracker is not swept.
func (s *WidgetService) GetWidget(ctx context.Context, id string) (tracker.View, error) {
	w, err := s.lookup(ctx, id)
	if err != nil {
		return tracker.View{}, err
	}
	w.Touch()
	return w.View(), nil
}

// UpdateComplaint replaces the complaint text and returns the new routing.
// A non-zero seq orders edits from one page; an edit older than the last
// applied one is dropped and the current view returned instead.
func (s *WidgetService) UpdateComplaint(ctx context.Context, id, text string, seq uint64) (tracker.View, error) {
	w, err := s.lookup(ctx, id)
	if err != nil {
		return tracker.View{}, err
	}
	view, applied := w.SetComplaintAt(text, seq)
	if !applied {
		s.logger.Debug("late complaint edit dropped", zap.String("widget_id", id), zap.Uint64("seq", seq))
	}
	return view, nil
}

// Submit opens a ticket and starts its tracker. complaint_submitted is
// published before the ticket's first status change.
func (s *WidgetService) Submit(ctx context.Context, id string, input SubmitInput) (tracker.View, error) {
	w, err := s.lookup(ctx, id)
	if err != nil {
		return tracker.View{}, err
	}
	if input.Complaint != nil {
		w.SetComplaint(*input.Complaint)
	}
	view, err := w.Submit(input.StudentID)
	if err != nil {
		return tracker.View{}, mapWidgetError(err)
	}
	ticket := view.Ticket
	s.logger.Info("complaint submitted",
		zap.String("widget_id", id),
		zap.String("ticket", ticket.ExternalKey),
		zap.String("category", string(ticket.Assignment.Category)),
		zap.String("assigned_to", ticket.Assignment.AssignedTo),
		zap.String("source", string(view.Source)))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventComplaintSubmitted,
		WidgetID: id,
		TicketID: ticket.ID,
		Payload: events.ComplaintSubmittedPayload{
			ExternalKey: ticket.ExternalKey,
			StudentID:   ticket.StudentID,
			Category:    ticket.Assignment.Category,
			AssignedTo:  ticket.Assignment.AssignedTo,
			Preview:     stringPreview(ticket.Complaint, 120),
		},
	})
	s.handleStatusChange(tracker.StatusChange{
		WidgetID: id,
		Ticket:   *ticket,
		From:     domain.TicketStatusPending,
		To:       domain.TicketStatusDispatched,
	})
	return view, nil
}

// Reset closes the tracker and returns the widget to an empty form.
func (s *WidgetService) Reset(ctx context.Context, id string) (tracker.View, error) {
	w, err := s.lookup(ctx, id)
	if err != nil {
		return tracker.View{}, err
	}
	view, old := w.Reset()
	if old != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTrackerReset,
			WidgetID: id,
			TicketID: old.ID,
			Payload: events.TrackerResetPayload{
				ExternalKey: old.ExternalKey,
				LastStatus:  old.Status,
			},
		})
	}
	return view, nil
}

// DeleteWidget discards a widget and cancels its pending transitions.
func (s *WidgetService) DeleteWidget(ctx context.Context, id string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	w, ok := s.widgets[id]
	delete(s.widgets, id)
	s.mu.Unlock()
	if !ok {
		return apperrors.NewNotFound("widget", map[string]any{"id": id})
	}
	w.Close()
	return nil
}

// Count returns the number of live widgets.
func (s *WidgetService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgets)
}

// Sweep drops widgets idle for longer than the configured TTL and
// returns how many were removed.
func (s *WidgetService) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []*tracker.Widget
	for id, w := range s.widgets {
		if w.LastActive().Before(cutoff) {
			expired = append(expired, w)
			delete(s.widgets, id)
		}
	}
	s.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("swept idle widgets", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// StartJanitor sweeps idle widgets every half TTL until Stop is called.
func (s *WidgetService) StartJanitor() {
	if s.idleTTL <= 0 {
		return
	}
	s.janitorMu.Lock()
	defer s.janitorMu.Unlock()
	s.stopped = false
	s.scheduleSweepLocked()
}

func (s *WidgetService) scheduleSweepLocked() {
	s.janitor = s.clock.AfterFunc(s.idleTTL/2, func() {
		s.Sweep()
		s.janitorMu.Lock()
		defer s.janitorMu.Unlock()
		if !s.stopped {
			s.scheduleSweepLocked()
		}
	})
}

// Stop halts the janitor and closes every widget.
func (s *WidgetService) Stop() {
	s.janitorMu.Lock()
	s.stopped = true
	s.janitor.Stop()
	s.janitorMu.Unlock()

	s.mu.Lock()
	widgets := s.widgets
	s.widgets = make(map[string]*tracker.Widget)
	s.mu.Unlock()
	for _, w := range widgets {
		w.Close()
	}
}

func (s *WidgetService) lookup(ctx context.Context, id string) (*tracker.Widget, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	w, ok := s.widgets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFound("widget", map[string]any{"id": id})
	}
	return w, nil
}

func (s *WidgetService) handleStatusChange(change tracker.StatusChange) {
	s.metrics.RecordTicket(string(change.To), string(change.Ticket.Assignment.Category))
	s.logger.Info("ticket status changed",
		zap.String("widget_id", change.WidgetID),
		zap.String("ticket", change.Ticket.ExternalKey),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)))
	s.publishEvent(context.Background(), events.Event{
		Type:     events.EventTicketStatusChanged,
		WidgetID: change.WidgetID,
		TicketID: change.Ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			ExternalKey: change.Ticket.ExternalKey,
			OldStatus:   change.From,
			NewStatus:   change.To,
		},
	})
}

func (s *WidgetService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// checkContext refuses work for a request whose deadline has passed or
// whose client has gone away.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewTimeout(err)
	}
	return nil
}

func mapWidgetError(err error) error {
	switch {
	case errors.Is(err, tracker.ErrStudentIDRequired):
		return apperrors.NewValidationError("student_id required", map[string]any{"field": "student_id"})
	case errors.Is(err, tracker.ErrComplaintRequired):
		return apperrors.NewValidationError("complaint required", map[string]any{"field": "complaint"})
	case errors.Is(err, tracker.ErrTicketActive):
		return apperrors.NewConflict("a ticket is already being tracked; close the tracker first", nil)
	}
	return apperrors.NewInternalError(err)
}

func stringPreview(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
