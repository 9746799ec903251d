package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smishing-defense/backend/internal/models"
)

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	s := Load(t.TempDir())
	if s.CompletedCount() != 0 {
		t.Errorf("expected empty store, got %d completed", s.CompletedCount())
	}
}

func TestLoad_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, progressFile), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := Load(dir)
	if s.CompletedCount() != 0 {
		t.Errorf("expected empty store after corrupt load, got %d completed", s.CompletedCount())
	}

	// The store must still accept writes after a corrupt load.
	s.RecordOutcome(1, models.ActionBlock, true)
	if !s.Completed(1) {
		t.Error("expected message 1 completed")
	}
}

func TestRecordOutcome_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	s := Load(dir)
	s.RecordOutcome(3, models.ActionAccept, false)

	reloaded := Load(dir)
	if !reloaded.Completed(3) {
		t.Fatal("expected message 3 completed after reload")
	}
	r, ok := reloaded.Result(3)
	if !ok {
		t.Fatal("expected a result for message 3")
	}
	if r.Action != models.ActionAccept || r.Correct {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestRecordOutcome_QuestionIsNoOp(t *testing.T) {
	s := Load(t.TempDir())

	s.RecordOutcome(1, models.ActionQuestion, false)
	if s.Completed(1) {
		t.Error("question must not complete a message")
	}
	if _, ok := s.Result(1); ok {
		t.Error("question must not record a result")
	}
}

func TestRecordOutcome_IdempotentCompletion(t *testing.T) {
	s := Load(t.TempDir())

	s.RecordOutcome(5, models.ActionBlock, false)
	s.RecordOutcome(5, models.ActionBlock, true)
	s.RecordOutcome(5, models.ActionBlock, true)

	if s.CompletedCount() != 1 {
		t.Errorf("expected 1 completed message, got %d", s.CompletedCount())
	}
}

func TestRecordOutcome_LastWriteWins(t *testing.T) {
	s := Load(t.TempDir())

	s.RecordOutcome(2, models.ActionAccept, false)
	s.RecordOutcome(2, models.ActionBlock, true)

	r, _ := s.Result(2)
	if r.Action != models.ActionBlock || !r.Correct {
		t.Errorf("expected latest outcome to win, got %+v", r)
	}
}

func TestReset(t *testing.T) {
	dir := t.TempDir()

	s := Load(dir)
	s.RecordOutcome(1, models.ActionBlock, true)
	s.RecordOutcome(2, models.ActionAccept, true)
	s.Reset()

	if s.CompletedCount() != 0 {
		t.Errorf("expected empty store after reset, got %d", s.CompletedCount())
	}

	// Reset persists too.
	if Load(dir).CompletedCount() != 0 {
		t.Error("expected reset to persist")
	}
}

func TestSummary(t *testing.T) {
	s := Load(t.TempDir())

	s.RecordOutcome(1, models.ActionBlock, true)
	s.RecordOutcome(2, models.ActionAccept, true)
	s.RecordOutcome(3, models.ActionAccept, false)

	sum := s.Summary(6)
	if sum.CompletedCount != 3 {
		t.Errorf("expected 3 completed, got %d", sum.CompletedCount)
	}
	if sum.TotalCount != 6 {
		t.Errorf("expected total 6, got %d", sum.TotalCount)
	}
	if sum.CorrectCount != 2 {
		t.Errorf("expected 2 correct, got %d", sum.CorrectCount)
	}
	// round(2/3 * 100) = 67
	if sum.AccuracyPercent != 67 {
		t.Errorf("expected 67%% accuracy, got %d%%", sum.AccuracyPercent)
	}
}

func TestSummary_EmptyStoreHasZeroAccuracy(t *testing.T) {
	sum := Load(t.TempDir()).Summary(6)
	if sum.AccuracyPercent != 0 {
		t.Errorf("expected 0%% accuracy for empty store, got %d%%", sum.AccuracyPercent)
	}
}
