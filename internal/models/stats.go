package models

import (
	"math"
	"time"
)

// Attempt is one ledger entry for a user. Attempts are immutable once
// created; the ledger keeps full history even when the same message is
// answered multiple times.
type Attempt struct {
	MessageID int       `json:"messageId"`
	Action    Action    `json:"action"`
	Correct   *bool     `json:"correct,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserSummary holds derived counters, updated incrementally on every
// recorded attempt. Invariant: TotalAttempts = CorrectAnswers +
// IncorrectAnswers + QuestionsAsked.
type UserSummary struct {
	TotalAttempts     int   `json:"totalAttempts"`
	CorrectAnswers    int   `json:"correctAnswers"`
	IncorrectAnswers  int   `json:"incorrectAnswers"`
	QuestionsAsked    int   `json:"questionsAsked"`
	MessagesCompleted []int `json:"messagesCompleted"`
}

// AddCompleted adds a message id with set semantics. Duplicates of the
// same id never double-add even though the field serializes as a sequence.
func (s *UserSummary) AddCompleted(messageID int) {
	for _, id := range s.MessagesCompleted {
		if id == messageID {
			return
		}
	}
	s.MessagesCompleted = append(s.MessagesCompleted, messageID)
}

// AccuracyPercent returns correct answers over answered (non-question)
// attempts as a rounded percentage, 0 when nothing has been answered yet.
func (s UserSummary) AccuracyPercent() int {
	answered := s.TotalAttempts - s.QuestionsAsked
	if answered <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectAnswers) / float64(answered) * 100))
}

// UserRecord is the per-user entry of the shared ledger document. Created
// on the first attempt from a given user id; Attempts is append-only.
type UserRecord struct {
	UserID       string      `json:"userId"`
	UserName     string      `json:"userName"`
	FirstAttempt time.Time   `json:"firstAttempt"`
	LastActivity time.Time   `json:"lastActivity"`
	Attempts     []Attempt   `json:"attempts"`
	Summary      UserSummary `json:"summary"`
}

// StatsDocument is the single versioned document holding all users.
// Every mutation is a full read-modify-write of this document.
type StatsDocument struct {
	Users []*UserRecord `json:"users"`
}

// NewStatsDocument returns an empty document ready to record attempts.
func NewStatsDocument() *StatsDocument {
	return &StatsDocument{Users: []*UserRecord{}}
}

// Index builds a keyed lookup over the document's users. Absence of a
// key is a normal outcome for callers, not an error.
func (d *StatsDocument) Index() map[string]*UserRecord {
	idx := make(map[string]*UserRecord, len(d.Users))
	for _, u := range d.Users {
		idx[u.UserID] = u
	}
	return idx
}
