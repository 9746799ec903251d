// Package session drives one training pass over the message catalog. The
// controller is a single-threaded state machine advanced only by discrete
// user decisions, with no timers and no background transitions.
package session

import (
	"errors"
	"log"
	"math"
	"time"

	"github.com/smishing-defense/backend/internal/catalog"
	"github.com/smishing-defense/backend/internal/identity"
	"github.com/smishing-defense/backend/internal/models"
)

// Phase is the controller's current state.
type Phase int

const (
	PhasePresenting Phase = iota
	PhaseAwaitingDecision
	PhaseFeedback
	PhaseComplete
)

// Mode selects how a session runs, fixed at construction.
type Mode int

const (
	// ModeSequential iterates the whole catalog in order, accumulating a
	// score, and offers a restart on completion.
	ModeSequential Mode = iota
	// ModeSingleItem presents one requested message and returns to the
	// caller after its feedback is acknowledged.
	ModeSingleItem
)

// FeedbackKind classifies what the feedback overlay shows.
type FeedbackKind string

const (
	FeedbackCorrect   FeedbackKind = "correct"
	FeedbackIncorrect FeedbackKind = "incorrect"
	FeedbackQuestion  FeedbackKind = "question"
)

// Feedback is the classification of one decision, plus display text.
type Feedback struct {
	Kind  FeedbackKind
	Item  models.MessageItem
	Title string
	Text  string
	Cues  []string
}

// Summary reports a finished sequential pass.
type Summary struct {
	Score      int
	Total      int
	Percentage int
	Message    string
}

// Recorder is the local progress write the controller performs on every
// non-question decision.
type Recorder interface {
	RecordOutcome(messageID int, action models.Action, correct bool)
}

// Forwarder ships an attempt to the remote ledger. Implementations must
// return immediately; delivery is fire-and-forget and its failure never
// reaches the controller.
type Forwarder interface {
	Forward(req models.SaveProgressRequest)
}

var ErrNoDecisionPending = errors.New("session: no decision pending")
var ErrNoFeedbackPending = errors.New("session: no feedback pending")

// Controller walks Presenting, AwaitingDecision, Feedback and back, with
// a question sub-loop that returns to AwaitingDecision without advancing.
type Controller struct {
	catalog  *catalog.Catalog
	progress Recorder
	bridge   Forwarder
	who      identity.Identity

	mode     Mode
	index    int
	score    int
	phase    Phase
	feedback *Feedback
}

// NewSequential starts a full-catalog training session.
func NewSequential(cat *catalog.Catalog, progress Recorder, bridge Forwarder, who identity.Identity) *Controller {
	return &Controller{
		catalog:  cat,
		progress: progress,
		bridge:   bridge,
		who:      who,
		mode:     ModeSequential,
		phase:    PhasePresenting,
	}
}

// NewSingleItem starts a session for one requested message. A message id
// absent from the catalog falls back to the first item rather than
// failing the session.
func NewSingleItem(cat *catalog.Catalog, progress Recorder, bridge Forwarder, who identity.Identity, messageID int) *Controller {
	index := cat.IndexOf(messageID)
	if index < 0 {
		log.Printf("[session] message %d not in catalog, falling back to first item", messageID)
		index = 0
	}
	return &Controller{
		catalog:  cat,
		progress: progress,
		bridge:   bridge,
		who:      who,
		mode:     ModeSingleItem,
		index:    index,
		phase:    PhasePresenting,
	}
}

func (c *Controller) Mode() Mode   { return c.mode }
func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Score() int   { return c.score }

// Position returns the 1-based position of the current item and the
// catalog size, for the progress bar.
func (c *Controller) Position() (int, int) {
	return c.index + 1, c.catalog.Len()
}

// Present enters the Presenting state and hands the current item to the
// renderer. An index at or beyond the catalog length is exactly the
// Complete transition, not an error.
func (c *Controller) Present() (models.MessageItem, bool) {
	if c.phase == PhaseComplete {
		return models.MessageItem{}, false
	}
	if c.index >= c.catalog.Len() {
		c.phase = PhaseComplete
		return models.MessageItem{}, false
	}
	c.phase = PhaseAwaitingDecision
	return c.catalog.At(c.index), true
}

// Decide applies a user decision to the current item. Accept/block
// classify against the item's correct action, write local progress, and
// forward to the ledger; question only produces cue feedback.
func (c *Controller) Decide(action models.Action) (*Feedback, error) {
	if c.phase != PhaseAwaitingDecision {
		return nil, ErrNoDecisionPending
	}
	item := c.catalog.At(c.index)

	if action == models.ActionQuestion {
		c.feedback = questionFeedback(item)
		c.phase = PhaseFeedback
		return c.feedback, nil
	}

	correct := action == item.CorrectAction
	if correct {
		c.score++
		c.feedback = correctFeedback(item)
	} else {
		c.feedback = incorrectFeedback(item, action)
	}

	c.progress.RecordOutcome(item.ID, action, correct)
	c.bridge.Forward(models.SaveProgressRequest{
		UserID:    c.who.UserID,
		UserName:  c.who.UserName,
		MessageID: item.ID,
		Action:    action,
		Correct:   &correct,
		Timestamp: time.Now().UTC(),
	})

	c.phase = PhaseFeedback
	return c.feedback, nil
}

// Acknowledge dismisses the current feedback. Question feedback returns
// to AwaitingDecision on the same item; correct/incorrect feedback
// advances (sequential) or completes the session (single-item).
func (c *Controller) Acknowledge() error {
	if c.phase != PhaseFeedback {
		return ErrNoFeedbackPending
	}
	kind := c.feedback.Kind
	c.feedback = nil

	if kind == FeedbackQuestion {
		c.phase = PhaseAwaitingDecision
		return nil
	}

	if c.mode == ModeSingleItem {
		c.phase = PhaseComplete
		return nil
	}

	c.index++
	c.phase = PhasePresenting
	return nil
}

// Summary reports the finished pass. Valid once the session is complete.
func (c *Controller) Summary() Summary {
	total := c.catalog.Len()
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(c.score) / float64(total) * 100))
	}
	return Summary{
		Score:      c.score,
		Total:      total,
		Percentage: pct,
		Message:    performanceMessage(pct),
	}
}

// Restart re-enters Presenting(0) with the score reset. It never touches
// the progress store.
func (c *Controller) Restart() {
	c.index = 0
	c.score = 0
	c.feedback = nil
	c.phase = PhasePresenting
}

func questionFeedback(item models.MessageItem) *Feedback {
	text := item.QuestionFeedback
	if text == "" {
		text = "Look carefully at this message. Key indicators:"
	}
	return &Feedback{
		Kind:  FeedbackQuestion,
		Item:  item,
		Title: "Analysis",
		Text:  text,
		Cues:  item.Cues,
	}
}

func correctFeedback(item models.MessageItem) *Feedback {
	text := "Well done! This was a legitimate message."
	if item.CorrectAction == models.ActionBlock {
		text = "Good catch! This was indeed a suspicious message."
	}
	return &Feedback{
		Kind:  FeedbackCorrect,
		Item:  item,
		Title: "Correct!",
		Text:  text,
		Cues:  item.Cues,
	}
}

func incorrectFeedback(item models.MessageItem, taken models.Action) *Feedback {
	text := item.IncorrectFeedback[taken]
	if text == "" {
		if item.CorrectAction == models.ActionBlock {
			text = "This message was actually suspicious and should have been blocked."
		} else {
			text = "This was actually a legitimate message."
		}
	}
	return &Feedback{
		Kind:  FeedbackIncorrect,
		Item:  item,
		Title: "Not Quite",
		Text:  text,
		Cues:  item.Cues,
	}
}

// performanceMessage maps a final percentage to an encouragement band.
func performanceMessage(percentage int) string {
	switch {
	case percentage == 100:
		return "Perfect score! You have excellent smishing detection skills!"
	case percentage >= 70:
		return "Great job! You caught most of the threats."
	case percentage >= 50:
		return "Good effort! Review the feedback to improve your detection skills."
	default:
		return "Keep practicing! Pay close attention to the warning signs."
	}
}
