package tracker

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/campus-fixit/fixit/internal/classifier"
	"github.com/campus-fixit/fixit/internal/clock"
	"github.com/campus-fixit/fixit/internal/domain"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu      sync.Mutex
	changes []StatusChange
}

func (r *recorder) record(c StatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) statuses() []domain.TicketStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TicketStatus, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.To)
	}
	return out
}

func newTestWidget(t *testing.T) (*Widget, *clock.FakeClock, *recorder) {
	t.Helper()
	fc := clock.Fake(epoch)
	rec := &recorder{}
	w := NewWidget(Options{
		Clock:          fc,
		Unit:           time.Second,
		OnStatusChange: rec.record,
	})
	return w, fc, rec
}

func TestWidgetInitialView(t *testing.T) {
	w, _, _ := newTestWidget(t)
	v := w.View()

	if v.Submitted || v.Status != domain.TicketStatusPending {
		t.Fatalf("new widget should be unsubmitted and pending, got %+v", v)
	}
	if v.Category != domain.CategoryGeneral || v.AssignedTo != domain.AssigneeCampusManager {
		t.Fatalf("empty complaint routed to %s / %s", v.Category, v.AssignedTo)
	}
	if v.Dots != [4]bool{} {
		t.Fatalf("no dot should be filled, got %v", v.Dots)
	}
}

func TestWidgetReclassifiesOnEveryChange(t *testing.T) {
	w, _, _ := newTestWidget(t)

	steps := []struct {
		text string
		want domain.Category
	}{
		{"The fa", domain.CategoryGeneral},
		{"The fan", domain.CategoryElectricity},
		{"The fan in Room 302 is broken", domain.CategoryElectricity},
		{"The door", domain.CategoryCarpentry},
		{"", domain.CategoryGeneral},
	}
	for _, s := range steps {
		if got := w.SetComplaint(s.text).Category; got != s.want {
			t.Fatalf("SetComplaint(%q) category = %s, want %s", s.text, got, s.want)
		}
	}
}

func TestWidgetSubmitProgression(t *testing.T) {
	w, fc, rec := newTestWidget(t)
	w.SetComplaint("The fan in Room 302 is broken")

	v, err := w.Submit("CLG-2024-001")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !v.Submitted || v.Status != domain.TicketStatusDispatched {
		t.Fatalf("after submit got submitted=%v status=%q", v.Submitted, v.Status)
	}
	if !strings.HasPrefix(v.Ticket.ExternalKey, "FIX-") || len(v.Ticket.ExternalKey) != 12 {
		t.Fatalf("unexpected ticket key %q", v.Ticket.ExternalKey)
	}
	if v.Ticket.Assignment.AssignedTo != domain.AssigneeElectrician {
		t.Fatalf("ticket routed to %q", v.Ticket.Assignment.AssignedTo)
	}
	if fc.Pending() != 3 {
		t.Fatalf("expected 3 scheduled transitions, got %d", fc.Pending())
	}

	checkpoints := []struct {
		advance time.Duration
		want    domain.TicketStatus
	}{
		{2999 * time.Millisecond, domain.TicketStatusDispatched},
		{time.Millisecond, domain.TicketStatusSeenByAdmin},
		{2999 * time.Millisecond, domain.TicketStatusSeenByAdmin},
		{time.Millisecond, domain.TicketStatusInProgress},
		{3999 * time.Millisecond, domain.TicketStatusInProgress},
		{time.Millisecond, domain.TicketStatusResolved},
		{time.Hour, domain.TicketStatusResolved},
	}
	for _, cp := range checkpoints {
		fc.Advance(cp.advance)
		elapsed := fc.Now().Sub(epoch)
		if got := w.View().Status; got != cp.want {
			t.Fatalf("at +%v status = %q, want %q", elapsed, got, cp.want)
		}
		if got := AdvanceStatus(elapsed, time.Second); got != cp.want {
			t.Fatalf("AdvanceStatus(%v) = %q disagrees with widget %q", elapsed, got, cp.want)
		}
	}

	want := []domain.TicketStatus{
		domain.TicketStatusSeenByAdmin,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
	}
	got := rec.statuses()
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}

	final := w.View()
	if final.Heading != "Issue Fixed!" || final.Pulse != "✓" || final.DismissLabel != "Log Another Issue" {
		t.Fatalf("unexpected resolved display: %+v", final)
	}
	if w.PendingTransitions() != 0 {
		t.Fatalf("resolved ticket still has pending transitions")
	}
}

func TestWidgetSubmitValidation(t *testing.T) {
	w, fc, _ := newTestWidget(t)

	if _, err := w.Submit("CLG-1"); !errors.Is(err, ErrComplaintRequired) {
		t.Fatalf("empty complaint: got %v", err)
	}
	w.SetComplaint("dustbin full")
	if _, err := w.Submit(""); !errors.Is(err, ErrStudentIDRequired) {
		t.Fatalf("empty student id: got %v", err)
	}
	if _, err := w.Submit("CLG-1"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := w.Submit("CLG-1"); !errors.Is(err, ErrTicketActive) {
		t.Fatalf("second submit: got %v", err)
	}
	if fc.Pending() != 3 {
		t.Fatalf("rejected submits must not schedule timers, pending=%d", fc.Pending())
	}
}

func TestWidgetSubmitAcceptsWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		complaint string
		studentID string
		category  domain.Category
	}{
		{name: "blank complaint", complaint: "   ", studentID: "CLG-1", category: domain.CategoryGeneral},
		{name: "blank student id", complaint: "fan noise", studentID: " ", category: domain.CategoryElectricity},
		{name: "both blank", complaint: "\t", studentID: "  ", category: domain.CategoryGeneral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _, _ := newTestWidget(t)
			w.SetComplaint(tc.complaint)
			v, err := w.Submit(tc.studentID)
			if err != nil {
				t.Fatalf("Submit(%q) with complaint %q: %v", tc.studentID, tc.complaint, err)
			}
			if v.Status != domain.TicketStatusDispatched || v.Category != tc.category {
				t.Fatalf("got status=%q category=%s", v.Status, v.Category)
			}
			if v.Ticket.StudentID != tc.studentID || v.Ticket.Complaint != tc.complaint {
				t.Fatalf("ticket did not keep the values as entered: %+v", v.Ticket)
			}
		})
	}
}

func TestWidgetSetComplaintAtDropsLateEdits(t *testing.T) {
	w, _, _ := newTestWidget(t)

	if _, ok := w.SetComplaintAt("the fan", 2); !ok {
		t.Fatal("first edit was not applied")
	}
	v, ok := w.SetComplaintAt("the f", 1)
	if ok {
		t.Fatal("late edit was applied")
	}
	if v.Complaint != "the fan" || v.Category != domain.CategoryElectricity {
		t.Fatalf("late edit changed the view: %+v", v)
	}
	if _, ok := w.SetComplaintAt("the fan!", 2); ok {
		t.Fatal("repeated seq was applied")
	}
	if v, ok := w.SetComplaintAt("broken door", 3); !ok || v.Category != domain.CategoryCarpentry {
		t.Fatalf("newer edit: applied=%v view=%+v", ok, v)
	}
	if v, ok := w.SetComplaintAt("water", 0); !ok || v.Complaint != "water" {
		t.Fatalf("unsequenced edit: applied=%v view=%+v", ok, v)
	}
}

func TestWidgetTouchRefreshesActivity(t *testing.T) {
	w, fc, _ := newTestWidget(t)
	start := w.LastActive()
	fc.Advance(time.Minute)
	w.View()
	if !w.LastActive().Equal(start) {
		t.Fatal("View should not count as activity")
	}
	w.Touch()
	if got := w.LastActive(); !got.Equal(start.Add(time.Minute)) {
		t.Fatalf("LastActive = %v after Touch", got)
	}
}

func TestWidgetResetCancelsPendingTransitions(t *testing.T) {
	w, fc, rec := newTestWidget(t)
	w.SetComplaint("toilet pad dispenser empty")
	if _, err := w.Submit("CLG-7"); err != nil {
		t.Fatal(err)
	}
	fc.Advance(4 * time.Second)

	v, old := w.Reset()
	if old == nil || old.Status != domain.TicketStatusSeenByAdmin {
		t.Fatalf("Reset returned ticket %+v", old)
	}
	if v.Submitted || v.Status != domain.TicketStatusPending || v.Complaint != "" {
		t.Fatalf("after reset got %+v", v)
	}
	if v.Category != domain.CategoryGeneral {
		t.Fatalf("cleared complaint should route to General, got %s", v.Category)
	}
	if fc.Pending() != 0 {
		t.Fatalf("reset left %d timers pending", fc.Pending())
	}

	fc.Advance(time.Minute)
	if got := w.View().Status; got != domain.TicketStatusPending {
		t.Fatalf("status moved after reset: %q", got)
	}
	if n := len(rec.statuses()); n != 1 {
		t.Fatalf("expected 1 scheduled transition before reset, got %d", n)
	}
}

func TestWidgetStaleTransitionDoesNotLeakIntoNewTicket(t *testing.T) {
	w, fc, _ := newTestWidget(t)
	w.SetComplaint("broken bench")
	first, err := w.Submit("CLG-1")
	if err != nil {
		t.Fatal(err)
	}

	// A transition for the first ticket that slipped past Stop.
	stale := first.Ticket.ID
	w.Reset()

	w.SetComplaint("broken desk")
	second, err := w.Submit("CLG-1")
	if err != nil {
		t.Fatal(err)
	}
	w.advance(stale, domain.TicketStatusResolved)
	if got := w.View().Status; got != domain.TicketStatusDispatched {
		t.Fatalf("stale transition applied to new ticket: %q", got)
	}

	fc.Advance(3 * time.Second)
	v := w.View()
	if v.Ticket.ID != second.Ticket.ID || v.Status != domain.TicketStatusSeenByAdmin {
		t.Fatalf("second ticket did not progress: %+v", v)
	}
}

func TestWidgetTransitionsNeverRegress(t *testing.T) {
	w, fc, _ := newTestWidget(t)
	w.SetComplaint("light flickers")
	v, err := w.Submit("CLG-1")
	if err != nil {
		t.Fatal(err)
	}
	fc.Advance(7 * time.Second)

	w.advance(v.Ticket.ID, domain.TicketStatusSeenByAdmin)
	if got := w.View().Status; got != domain.TicketStatusInProgress {
		t.Fatalf("status regressed to %q", got)
	}
}

func TestWidgetTrackerKeepsSubmittedRouting(t *testing.T) {
	w, _, _ := newTestWidget(t)
	w.SetComplaint("water leak")
	if _, err := w.Submit("CLG-1"); err != nil {
		t.Fatal(err)
	}
	v := w.SetComplaint("fan")
	if v.AssignedTo != domain.AssigneeSanitation {
		t.Fatalf("tracker assignee changed to %q", v.AssignedTo)
	}
}

func TestWidgetCloseIgnoresLaterTransitions(t *testing.T) {
	w, fc, _ := newTestWidget(t)
	w.SetComplaint("switch sparks")
	if _, err := w.Submit("CLG-1"); err != nil {
		t.Fatal(err)
	}
	w.Close()
	fc.Advance(time.Minute)
	if got := w.View().Status; got != domain.TicketStatusDispatched {
		t.Fatalf("closed widget moved to %q", got)
	}
}

func TestWidgetWithoutFallbackDefaultsToAdminOffice(t *testing.T) {
	w := NewWidget(Options{
		Classifier: classifier.New(classifier.DefaultRuleSet().WithoutFallback()),
		Clock:      clock.Fake(epoch),
	})
	if got := w.View().AssignedTo; got != domain.AssigneeAdminOffice {
		t.Fatalf("AssignedTo = %q, want Admin Office", got)
	}
}
