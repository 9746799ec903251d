// Package stats maintains the server-side ledger of training attempts.
// All users live in one versioned document; every recorded attempt is a
// full read-modify-write of that document.
package stats

import (
	"log"
	"sync"
	"time"

	"github.com/smishing-defense/backend/internal/models"
)

// Service applies attempts to the stats document. A process-wide mutex
// serializes writers, and the store's version check catches any writer
// outside this process.
type Service struct {
	store DocumentStore
	mu    sync.Mutex
}

func NewService(store DocumentStore) *Service {
	return &Service{store: store}
}

// Bootstrap ensures a document exists so the first concurrent attempts
// do not race to create it. Safe to call on every startup.
func (s *Service) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, version, err := s.store.Load()
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}
	if version > 0 {
		return nil
	}
	if err := s.store.Save(models.NewStatsDocument(), 0); err != nil {
		// Another process won the creation race, which is fine.
		if err == ErrVersionConflict {
			return nil
		}
		return &PersistenceError{Op: "save", Err: err}
	}
	log.Printf("[stats] initialized empty stats document")
	return nil
}

// RecordAttempt validates and applies one attempt to the ledger,
// returning the user's updated counters. Validation failures leave the
// document untouched.
func (s *Service) RecordAttempt(req models.SaveProgressRequest) (*models.UserStats, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, version, err := s.store.Load()
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	user := apply(doc, req)

	if err := s.store.Save(doc, version); err != nil {
		return nil, &PersistenceError{Op: "save", Err: err}
	}

	return &models.UserStats{
		TotalAttempts:  user.Summary.TotalAttempts,
		CorrectAnswers: user.Summary.CorrectAnswers,
		Accuracy:       user.Summary.AccuracyPercent(),
	}, nil
}

// GetUserStats returns the full record for one user, or ErrUserNotFound
// when the user has never recorded an attempt.
func (s *Service) GetUserStats(userID string) (*models.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.store.Load()
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	user, ok := doc.Index()[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func validate(req models.SaveProgressRequest) error {
	var errs []string
	if req.UserID == "" {
		errs = append(errs, "userId is required")
	}
	if req.MessageID <= 0 {
		errs = append(errs, "messageId must be a positive integer")
	}
	if !models.ValidActions[req.Action] {
		errs = append(errs, "action must be accept, block, or question")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// apply mutates the document with one attempt and returns the affected
// user record. Exactly one of the correct/incorrect/question counters
// moves per attempt.
func apply(doc *models.StatsDocument, req models.SaveProgressRequest) *models.UserRecord {
	now := time.Now().UTC()
	ts := req.Timestamp
	if ts.IsZero() {
		ts = now
	}

	user, ok := doc.Index()[req.UserID]
	if !ok {
		user = &models.UserRecord{
			UserID:       req.UserID,
			UserName:     req.UserName,
			FirstAttempt: ts,
			Attempts:     []models.Attempt{},
			Summary:      models.UserSummary{MessagesCompleted: []int{}},
		}
		doc.Users = append(doc.Users, user)
	}
	if req.UserName != "" {
		user.UserName = req.UserName
	}

	user.Attempts = append(user.Attempts, models.Attempt{
		MessageID: req.MessageID,
		Action:    req.Action,
		Correct:   req.Correct,
		Timestamp: ts,
	})
	user.LastActivity = now

	user.Summary.TotalAttempts++
	switch {
	case req.Action == models.ActionQuestion:
		user.Summary.QuestionsAsked++
	case req.Correct != nil && *req.Correct:
		user.Summary.CorrectAnswers++
		user.Summary.AddCompleted(req.MessageID)
	default:
		user.Summary.IncorrectAnswers++
		user.Summary.AddCompleted(req.MessageID)
	}

	return user
}
