package session

import (
	"testing"

	"github.com/smishing-defense/backend/internal/catalog"
	"github.com/smishing-defense/backend/internal/identity"
	"github.com/smishing-defense/backend/internal/models"
	"github.com/smishing-defense/backend/internal/progress"
	"github.com/smishing-defense/backend/internal/syncbridge"
)

type recordedOutcome struct {
	messageID int
	action    models.Action
	correct   bool
}

type fakeRecorder struct {
	outcomes []recordedOutcome
}

func (r *fakeRecorder) RecordOutcome(messageID int, action models.Action, correct bool) {
	r.outcomes = append(r.outcomes, recordedOutcome{messageID, action, correct})
}

type fakeForwarder struct {
	requests []models.SaveProgressRequest
}

func (f *fakeForwarder) Forward(req models.SaveProgressRequest) {
	f.requests = append(f.requests, req)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(`[
		{"id": 10, "sender": "Scammer", "content": "URGENT: click this link right now", "correctAction": "block",
		 "cues": ["urgency", "unknown link"], "questionFeedback": "Check the link target."},
		{"id": 20, "sender": "Dentist", "content": "Appointment reminder for Thursday", "correctAction": "accept",
		 "cues": ["expected", "no links"]},
		{"id": 30, "sender": "Prizes", "content": "You won a contest you never entered", "correctAction": "block",
		 "cues": ["unsolicited prize", "pressure"],
		 "incorrectFeedback": {"accept": "You cannot win a contest you never entered."}}
	]`))
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return cat
}

func newTestController(t *testing.T) (*Controller, *fakeRecorder, *fakeForwarder) {
	t.Helper()
	rec := &fakeRecorder{}
	fwd := &fakeForwarder{}
	who := identity.Identity{UserID: "user_test_123", UserName: "Tester"}
	return NewSequential(testCatalog(t), rec, fwd, who), rec, fwd
}

// decide drives one full present/decide/acknowledge step.
func decide(t *testing.T, ctrl *Controller, action models.Action) *Feedback {
	t.Helper()
	if _, ok := ctrl.Present(); !ok {
		t.Fatal("expected an item to present")
	}
	fb, err := ctrl.Decide(action)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := ctrl.Acknowledge(); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	return fb
}

func TestSequential_FullPass(t *testing.T) {
	ctrl, rec, fwd := newTestController(t)

	// block correct, accept correct, accept incorrect.
	fb1 := decide(t, ctrl, models.ActionBlock)
	fb2 := decide(t, ctrl, models.ActionAccept)
	fb3 := decide(t, ctrl, models.ActionAccept)

	if fb1.Kind != FeedbackCorrect || fb2.Kind != FeedbackCorrect {
		t.Errorf("expected two correct classifications, got %q and %q", fb1.Kind, fb2.Kind)
	}
	if fb3.Kind != FeedbackIncorrect {
		t.Errorf("expected incorrect classification, got %q", fb3.Kind)
	}
	if fb3.Text != "You cannot win a contest you never entered." {
		t.Errorf("expected item-specific incorrect feedback, got %q", fb3.Text)
	}

	if _, ok := ctrl.Present(); ok {
		t.Fatal("expected session complete after last item")
	}
	if ctrl.Phase() != PhaseComplete {
		t.Errorf("expected PhaseComplete, got %v", ctrl.Phase())
	}

	sum := ctrl.Summary()
	if sum.Score != 2 || sum.Total != 3 {
		t.Errorf("expected score 2/3, got %d/%d", sum.Score, sum.Total)
	}
	// round(2/3 * 100) = 67
	if sum.Percentage != 67 {
		t.Errorf("expected 67%%, got %d%%", sum.Percentage)
	}
	if sum.Message == "" {
		t.Error("expected a performance message")
	}

	// Every non-question decision reached both the recorder and forwarder.
	if len(rec.outcomes) != 3 {
		t.Fatalf("expected 3 recorded outcomes, got %d", len(rec.outcomes))
	}
	if len(fwd.requests) != 3 {
		t.Fatalf("expected 3 forwarded attempts, got %d", len(fwd.requests))
	}

	got := rec.outcomes[2]
	if got.messageID != 30 || got.action != models.ActionAccept || got.correct {
		t.Errorf("unexpected third outcome: %+v", got)
	}

	req := fwd.requests[0]
	if req.UserID != "user_test_123" || req.MessageID != 10 {
		t.Errorf("unexpected forwarded request: %+v", req)
	}
	if req.Correct == nil || !*req.Correct {
		t.Error("expected forwarded correct=true for first decision")
	}
	if req.Timestamp.IsZero() {
		t.Error("expected forwarded timestamp to be set")
	}
}

func TestQuestionSubLoop(t *testing.T) {
	ctrl, rec, fwd := newTestController(t)

	if _, ok := ctrl.Present(); !ok {
		t.Fatal("expected an item")
	}

	fb, err := ctrl.Decide(models.ActionQuestion)
	if err != nil {
		t.Fatalf("decide question: %v", err)
	}
	if fb.Kind != FeedbackQuestion {
		t.Fatalf("expected question feedback, got %q", fb.Kind)
	}
	if fb.Text != "Check the link target." {
		t.Errorf("expected item question feedback, got %q", fb.Text)
	}
	if len(fb.Cues) != 2 {
		t.Errorf("expected 2 cues, got %d", len(fb.Cues))
	}

	// Question never records, forwards, or scores.
	if len(rec.outcomes) != 0 || len(fwd.requests) != 0 {
		t.Error("question decision must not record or forward")
	}
	if ctrl.Score() != 0 {
		t.Errorf("question must not score, got %d", ctrl.Score())
	}

	// Acknowledging question feedback returns to the same item.
	if err := ctrl.Acknowledge(); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if ctrl.Phase() != PhaseAwaitingDecision {
		t.Fatalf("expected to await a decision on the same item, got %v", ctrl.Phase())
	}

	// Questions can repeat before the real decision.
	if _, err := ctrl.Decide(models.ActionQuestion); err != nil {
		t.Fatalf("second question: %v", err)
	}
	if err := ctrl.Acknowledge(); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	fb, err = ctrl.Decide(models.ActionBlock)
	if err != nil {
		t.Fatalf("decide block: %v", err)
	}
	if fb.Kind != FeedbackCorrect {
		t.Errorf("expected correct after question loop, got %q", fb.Kind)
	}
	pos, _ := ctrl.Position()
	if pos != 1 {
		t.Errorf("question loop advanced the session to position %d", pos)
	}
}

func TestDecide_OutOfPhase(t *testing.T) {
	ctrl, _, _ := newTestController(t)

	if _, err := ctrl.Decide(models.ActionBlock); err != ErrNoDecisionPending {
		t.Errorf("expected ErrNoDecisionPending before present, got %v", err)
	}
	if err := ctrl.Acknowledge(); err != ErrNoFeedbackPending {
		t.Errorf("expected ErrNoFeedbackPending before feedback, got %v", err)
	}
}

func TestRestart(t *testing.T) {
	ctrl, rec, _ := newTestController(t)

	decide(t, ctrl, models.ActionBlock)
	decide(t, ctrl, models.ActionBlock)

	ctrl.Restart()

	if ctrl.Score() != 0 {
		t.Errorf("expected score reset, got %d", ctrl.Score())
	}
	pos, _ := ctrl.Position()
	if pos != 1 {
		t.Errorf("expected restart at first item, got position %d", pos)
	}

	// Restart must not erase already recorded outcomes.
	if len(rec.outcomes) != 2 {
		t.Errorf("restart should keep recorded outcomes, got %d", len(rec.outcomes))
	}

	item, ok := ctrl.Present()
	if !ok || item.ID != 10 {
		t.Errorf("expected first item after restart, got %+v ok=%v", item, ok)
	}
}

func TestSingleItem(t *testing.T) {
	rec := &fakeRecorder{}
	fwd := &fakeForwarder{}
	who := identity.Identity{UserID: "u1", UserName: "Tester"}
	ctrl := NewSingleItem(testCatalog(t), rec, fwd, who, 20)

	item, ok := ctrl.Present()
	if !ok || item.ID != 20 {
		t.Fatalf("expected message 20, got %+v ok=%v", item, ok)
	}

	if _, err := ctrl.Decide(models.ActionAccept); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := ctrl.Acknowledge(); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	// One item, then done.
	if _, ok := ctrl.Present(); ok {
		t.Fatal("expected single-item session complete")
	}
	if len(rec.outcomes) != 1 {
		t.Errorf("expected 1 recorded outcome, got %d", len(rec.outcomes))
	}
}

func TestSingleItem_UnknownIDFallsBackToFirst(t *testing.T) {
	ctrl := NewSingleItem(testCatalog(t), &fakeRecorder{}, &fakeForwarder{}, identity.Identity{UserID: "u1"}, 999)

	item, ok := ctrl.Present()
	if !ok || item.ID != 10 {
		t.Errorf("expected fallback to first item, got %+v ok=%v", item, ok)
	}
}

// A bridge whose deliveries all fail must leave local progress identical
// to one whose deliveries all succeed.
func TestForwardingFailureDoesNotAffectLocalProgress(t *testing.T) {
	who := identity.Identity{UserID: "u1", UserName: "Tester"}

	run := func(fwd Forwarder) *progress.Store {
		store := progress.Load(t.TempDir())
		ctrl := NewSequential(testCatalog(t), store, fwd, who)
		decide(t, ctrl, models.ActionBlock)
		decide(t, ctrl, models.ActionBlock)
		decide(t, ctrl, models.ActionBlock)
		return store
	}

	healthy := run(&fakeForwarder{})

	failing := syncbridge.New("http://127.0.0.1:1")
	broken := run(failing)
	failing.Wait()

	a, b := healthy.Summary(3), broken.Summary(3)
	if a != b {
		t.Errorf("local progress diverged: %+v vs %+v", a, b)
	}
}

func TestPerformanceMessageBands(t *testing.T) {
	cases := []struct {
		pct  int
		want string
	}{
		{100, "Perfect score! You have excellent smishing detection skills!"},
		{70, "Great job! You caught most of the threats."},
		{50, "Good effort! Review the feedback to improve your detection skills."},
		{33, "Keep practicing! Pay close attention to the warning signs."},
	}
	for _, tc := range cases {
		if got := performanceMessage(tc.pct); got != tc.want {
			t.Errorf("performanceMessage(%d) = %q, want %q", tc.pct, got, tc.want)
		}
	}
}
