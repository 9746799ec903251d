// Package progress is the local, per-device record of attempted messages.
// It backs the menu view and is deliberately last-write-wins: the remote
// ledger keeps full history, the device keeps only the latest outcome per
// message.
package progress

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/smishing-defense/backend/internal/models"
)

const progressFile = "progress.json"

// Result is the latest outcome recorded for one message.
type Result struct {
	Action    models.Action `json:"action"`
	Correct   bool          `json:"correct"`
	Timestamp time.Time     `json:"timestamp"`
}

type state struct {
	Completed []int          `json:"completed"`
	Results   map[int]Result `json:"results"`
}

// Store holds the device's progress with an explicit load/save lifecycle.
// It is confined to one device and needs no cross-process coordination.
type Store struct {
	path string
	st   state
}

// Summary is what the menu view renders.
type Summary struct {
	CompletedCount  int
	TotalCount      int
	CorrectCount    int
	AccuracyPercent int
}

// Load reads persisted progress. Absence or a parse failure is never
// fatal: the store starts from the empty default and logs the problem.
func Load(dataDir string) *Store {
	s := &Store{path: filepath.Join(dataDir, progressFile)}
	s.st = emptyState()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return s
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("[progress] corrupt progress file, starting fresh: %v", err)
		return s
	}
	if st.Results == nil {
		st.Results = make(map[int]Result)
	}
	s.st = st
	return s
}

// RecordOutcome stores the latest outcome for a message and marks it
// completed. Question actions are a no-op: they never complete a message
// and never displace a recorded result.
func (s *Store) RecordOutcome(messageID int, action models.Action, correct bool) {
	if !action.Completes() {
		return
	}
	if !s.Completed(messageID) {
		s.st.Completed = append(s.st.Completed, messageID)
	}
	s.st.Results[messageID] = Result{
		Action:    action,
		Correct:   correct,
		Timestamp: time.Now().UTC(),
	}
	s.save()
}

// Reset clears all progress back to the empty default.
func (s *Store) Reset() {
	s.st = emptyState()
	s.save()
}

// Completed reports whether a message has a recorded non-question outcome.
func (s *Store) Completed(messageID int) bool {
	for _, id := range s.st.Completed {
		if id == messageID {
			return true
		}
	}
	return false
}

// Result returns the latest recorded outcome for a message.
func (s *Store) Result(messageID int) (Result, bool) {
	r, ok := s.st.Results[messageID]
	return r, ok
}

// CompletedCount returns how many distinct messages have been completed.
func (s *Store) CompletedCount() int {
	return len(s.st.Completed)
}

// Summary derives the menu counters. totalCount is the catalog size,
// which the store itself does not know.
func (s *Store) Summary(totalCount int) Summary {
	correct := 0
	for _, r := range s.st.Results {
		if r.Correct {
			correct++
		}
	}
	completed := len(s.st.Completed)
	accuracy := 0
	if completed > 0 {
		accuracy = int(math.Round(float64(correct) / float64(completed) * 100))
	}
	return Summary{
		CompletedCount:  completed,
		TotalCount:      totalCount,
		CorrectCount:    correct,
		AccuracyPercent: accuracy,
	}
}

// save persists best effort. A failed write loses nothing but local
// display state, so it is logged rather than surfaced.
func (s *Store) save() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("[progress] failed to create data dir: %v", err)
		return
	}
	data, _ := json.MarshalIndent(s.st, "", "  ")
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("[progress] failed to persist progress: %v", err)
	}
}

func emptyState() state {
	return state{Completed: []int{}, Results: make(map[int]Result)}
}
