package model

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Provider     string    `gorm:"not null;size:20;default:'local'" json:"provider"`
	ProviderID   string    `gorm:"size:255" json:"-"`
	Name         string    `gorm:"size:255" json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Provider constants
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)
