package model

import "time"

// GenerationErrorLog is an append-only diagnostic record of failed AI
// generation attempts. It is written best-effort and never read back by
// application logic.
type GenerationErrorLog struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"not null;index" json:"userId"`
	Model            string    `gorm:"not null;size:255" json:"model"`
	SourceTextHash   string    `gorm:"not null;size:64" json:"sourceTextHash"`
	SourceTextLength int       `gorm:"not null" json:"sourceTextLength"`
	ErrorCode        string    `gorm:"not null;size:50" json:"errorCode"`
	ErrorMessage     string    `gorm:"type:text" json:"errorMessage"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (GenerationErrorLog) TableName() string {
	return "generation_error_logs"
}

// ErrorCode constants
const (
	ErrorCodeLLMRequest    = "llm_request_failed"
	ErrorCodeLLMParse      = "llm_parse_failed"
	ErrorCodeLLMEmpty      = "llm_empty_response"
	ErrorCodePersistFailed = "persist_failed"
)
