package service

import (
	"context"
	"errors"

	"github.com/cardforge/api/internal/apperr"
	"github.com/cardforge/api/internal/model"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// DeleteAccount removes the user and everything they own in one transaction.
// Flashcards go first so their generation references never dangle mid-delete.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.Flashcard{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Generation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.GenerationErrorLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return apperr.Classify("failed to delete account", err)
	}
	return nil
}
