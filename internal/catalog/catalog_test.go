package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smishing-defense/backend/internal/models"
)

const sampleCatalog = `[
	{
		"id": 1,
		"sender": "+1 (555) 012-3847",
		"content": "URGENT: verify your account now at http://fake.example",
		"correctAction": "block",
		"cues": ["urgency", "suspicious link"],
		"incorrectFeedback": {"accept": "this was a scam"}
	},
	{
		"id": 2,
		"sender": "CityDental",
		"content": "Reminder of your appointment Thursday at 2:30 PM.",
		"correctAction": "accept",
		"cues": ["expected reminder", "no links"]
	}
]`

func TestParse_ValidCatalog(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cat.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", cat.Len())
	}

	item, ok := cat.ByID(1)
	if !ok {
		t.Fatal("expected to find message 1")
	}
	if item.CorrectAction != models.ActionBlock {
		t.Errorf("expected correctAction block, got %q", item.CorrectAction)
	}
	if item.IncorrectFeedback[models.ActionAccept] == "" {
		t.Error("expected incorrectFeedback for accept")
	}

	if cat.At(1).ID != 2 {
		t.Errorf("expected item 2 at index 1, got id %d", cat.At(1).ID)
	}
}

func TestParse_EmptyCatalog(t *testing.T) {
	if _, err := Parse([]byte(`[]`)); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestParse_SchemaViolationsFailWholeLoad(t *testing.T) {
	bad := `[
		{"id": 1, "sender": "A", "content": "first message text", "correctAction": "block"},
		{"id": 1, "sender": "B", "content": "duplicate id", "correctAction": "accept"},
		{"id": 3, "sender": "", "content": "missing sender", "correctAction": "question"}
	]`

	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected validation error")
	}

	// Every violation shows up, not just the first.
	msg := err.Error()
	for _, want := range []string{"duplicate id", "missing sender", "correctAction"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestIndexOf_MissingID(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := cat.IndexOf(2); got != 1 {
		t.Errorf("expected index 1 for message 2, got %d", got)
	}
	if got := cat.IndexOf(999); got != -1 {
		t.Errorf("expected -1 for unknown message, got %d", got)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("expected 2 items, got %d", cat.Len())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
