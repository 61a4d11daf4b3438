package validator

import (
	"fmt"
	"strings"

	"github.com/cardforge/api/internal/model"
)

// Flashcard field messages, shared with the client edit form.
const (
	MsgFrontRequired = "Przód fiszki jest wymagany"
	MsgFrontTooLong  = "Przód fiszki nie może przekraczać 200 znaków"
	MsgBackRequired  = "Tył fiszki jest wymagany"
	MsgBackTooLong   = "Tył fiszki nie może przekraczać 500 znaków"
)

func ValidateFront(front string) string {
	if strings.TrimSpace(front) == "" {
		return MsgFrontRequired
	}
	if len([]rune(front)) > model.FrontMaxLength {
		return MsgFrontTooLong
	}
	return ""
}

func ValidateBack(back string) string {
	if strings.TrimSpace(back) == "" {
		return MsgBackRequired
	}
	if len([]rune(back)) > model.BackMaxLength {
		return MsgBackTooLong
	}
	return ""
}

// FlashcardInput is one element of a create request.
type FlashcardInput struct {
	Front        string `json:"front"`
	Back         string `json:"back"`
	Source       string `json:"source"`
	GenerationID *int64 `json:"generation_id"`
}

// ValidateFlashcardInput checks a single flashcard for creation. AI-sourced
// cards must carry a generation_id; manual cards must not.
func ValidateFlashcardInput(index int, in FlashcardInput) string {
	if msg := ValidateFront(in.Front); msg != "" {
		return fmt.Sprintf("flashcards[%d].front: %s", index, msg)
	}
	if msg := ValidateBack(in.Back); msg != "" {
		return fmt.Sprintf("flashcards[%d].back: %s", index, msg)
	}
	if !model.IsValidSource(in.Source) {
		return fmt.Sprintf("flashcards[%d].source: must be one of manual, ai-full, ai-edited", index)
	}
	switch in.Source {
	case model.SourceManual:
		if in.GenerationID != nil {
			return fmt.Sprintf("flashcards[%d].generation_id: must be null for manual flashcards", index)
		}
	default:
		if in.GenerationID == nil {
			return fmt.Sprintf("flashcards[%d].generation_id: required for AI-sourced flashcards", index)
		}
	}
	return ""
}

// ValidateFlashcardBatch validates every element and returns all failures
// joined, or "" when the batch is clean.
func ValidateFlashcardBatch(inputs []FlashcardInput) string {
	if len(inputs) == 0 {
		return "flashcards: at least one flashcard is required"
	}
	var msgs []string
	for i, in := range inputs {
		if msg := ValidateFlashcardInput(i, in); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}
