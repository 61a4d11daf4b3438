package model

import (
	"time"

	"gorm.io/datatypes"
)

type Generation struct {
	ID                    int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                int64          `gorm:"not null;index:idx_generations_user_created,priority:1" json:"userId"`
	Model                 string         `gorm:"not null;size:255" json:"model"`
	SourceTextHash        string         `gorm:"not null;size:64;index" json:"sourceTextHash"`
	SourceTextLength      int            `gorm:"not null" json:"sourceTextLength"`
	GeneratedCount        int            `gorm:"not null;default:0" json:"generatedCount"`
	GenerationDurationMs  int64          `gorm:"not null;default:0" json:"generationDurationMs"`
	AcceptedUneditedCount int            `gorm:"not null;default:0" json:"acceptedUneditedCount"`
	AcceptedEditedCount   int            `gorm:"not null;default:0" json:"acceptedEditedCount"`
	Proposals             datatypes.JSON `json:"proposals,omitempty"`
	CreatedAt             time.Time      `gorm:"index:idx_generations_user_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

func (Generation) TableName() string {
	return "generations"
}
