package models

// Action is a decision a trainee can take on a message.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionBlock    Action = "block"
	ActionQuestion Action = "question"
)

var ValidActions = map[Action]bool{
	ActionAccept:   true,
	ActionBlock:    true,
	ActionQuestion: true,
}

// Completes reports whether the action finishes a message. A question
// action never completes anything and never carries a correctness verdict.
func (a Action) Completes() bool {
	return a == ActionAccept || a == ActionBlock
}

// MessageItem is one entry of the training catalog. Items are externally
// supplied and immutable for the lifetime of a session.
type MessageItem struct {
	ID            int      `json:"id"`
	Sender        string   `json:"sender"`
	Content       string   `json:"content"`
	CorrectAction Action   `json:"correctAction"`
	Cues          []string `json:"cues"`

	// Optional feedback text. QuestionFeedback is shown before the cue
	// list when the trainee asks for analysis. IncorrectFeedback is keyed
	// by the action the trainee actually took.
	QuestionFeedback  string            `json:"questionFeedback,omitempty"`
	IncorrectFeedback map[Action]string `json:"incorrectFeedback,omitempty"`
}
