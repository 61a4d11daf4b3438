package model

import "time"

type Flashcard struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"not null;index:idx_flashcards_user_created,priority:1" json:"userId"`
	Front        string    `gorm:"not null;size:200" json:"front"`
	Back         string    `gorm:"not null;size:500" json:"back"`
	Source       string    `gorm:"not null;size:20" json:"source"`
	GenerationID *int64    `gorm:"index" json:"generationId"`
	CreatedAt    time.Time `gorm:"index:idx_flashcards_user_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Flashcard) TableName() string {
	return "flashcards"
}

// Source constants
const (
	SourceManual   = "manual"
	SourceAIFull   = "ai-full"
	SourceAIEdited = "ai-edited"
)

// Content bounds shared by the API validators and the client edit form.
const (
	FrontMaxLength = 200
	BackMaxLength  = 500
)

// IsValidSource reports whether s is one of the allowed source values.
func IsValidSource(s string) bool {
	return s == SourceManual || s == SourceAIFull || s == SourceAIEdited
}
