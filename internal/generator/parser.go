package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/smishing-defense/backend/internal/models"
)

type GeneratedBatch struct {
	Messages []GeneratedMessage `json:"messages"`
}

// GeneratedMessage is one training message as emitted by the model,
// before ids are assigned.
type GeneratedMessage struct {
	Sender            string                   `json:"sender"`
	Content           string                   `json:"content"`
	CorrectAction     models.Action            `json:"correctAction"`
	Cues              []string                 `json:"cues"`
	QuestionFeedback  string                   `json:"questionFeedback"`
	IncorrectFeedback map[models.Action]string `json:"incorrectFeedback"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func ParseResponse(responseBody string) (*GeneratedBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch GeneratedBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if err := validateBatch(&batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateBatch(batch *GeneratedBatch) error {
	var errs []string

	if len(batch.Messages) == 0 {
		return &ValidationError{Errors: []string{"no messages in batch"}}
	}

	actionCounts := make(map[models.Action]int)

	for i, m := range batch.Messages {
		mNum := i + 1

		if m.Sender == "" {
			errs = append(errs, fmt.Sprintf("message %d: empty sender", mNum))
		}

		contentLen := len(m.Content)
		if contentLen < 20 || contentLen > 500 {
			errs = append(errs, fmt.Sprintf("message %d: content length %d outside range [20, 500]", mNum, contentLen))
		}

		if !m.CorrectAction.Completes() {
			errs = append(errs, fmt.Sprintf("message %d: correctAction must be %q or %q, got %q",
				mNum, models.ActionAccept, models.ActionBlock, m.CorrectAction))
		}

		if len(m.Cues) < 2 {
			errs = append(errs, fmt.Sprintf("message %d: expected at least 2 cues, got %d", mNum, len(m.Cues)))
		}
		for j, cue := range m.Cues {
			if strings.TrimSpace(cue) == "" {
				errs = append(errs, fmt.Sprintf("message %d: cue %d is empty", mNum, j+1))
			}
		}

		if m.QuestionFeedback == "" {
			log.Printf("WARNING: message %d missing questionFeedback, trainer will use generic text", mNum)
		}

		// Each wrong action needs tailored feedback text.
		if m.CorrectAction.Completes() {
			wrong := models.ActionBlock
			if m.CorrectAction == models.ActionBlock {
				wrong = models.ActionAccept
			}
			if m.IncorrectFeedback[wrong] == "" {
				log.Printf("WARNING: message %d missing incorrectFeedback for %q", mNum, wrong)
			}
		}

		actionCounts[m.CorrectAction]++
	}

	// Warn (but don't reject) when a batch is all-suspicious or
	// all-legitimate, since a mixed catalog trains better.
	if len(batch.Messages) >= 4 {
		for action, count := range actionCounts {
			if count == len(batch.Messages) {
				log.Printf("WARNING: all %d messages have correctAction %q, batch lacks variety", count, action)
			}
		}
	}

	checkContentDiversity(batch.Messages)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// checkContentDiversity warns if any two messages share >60% keyword overlap.
func checkContentDiversity(messages []GeneratedMessage) {
	if len(messages) < 2 {
		return
	}

	tokenSets := make([]map[string]bool, len(messages))
	for i, m := range messages {
		tokenSets[i] = tokenize(m.Content)
	}

	for i := 0; i < len(messages); i++ {
		for j := i + 1; j < len(messages); j++ {
			overlap := jaccardSimilarity(tokenSets[i], tokenSets[j])
			if overlap > 0.60 {
				log.Printf("WARNING: messages %d and %d have %.0f%% keyword overlap, consider more variety", i+1, j+1, overlap*100)
			}
		}
	}
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		// Skip very short words (articles, prepositions)
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
