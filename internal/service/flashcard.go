package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cardforge/api/internal/apperr"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/validator"
	"gorm.io/gorm"
)

type FlashcardService struct {
	db *gorm.DB
}

func NewFlashcardService(db *gorm.DB) *FlashcardService {
	return &FlashcardService{db: db}
}

// GetPaginated returns one page of the user's flashcards ordered by creation
// time descending, plus the total count. page and limit are normalized
// upstream.
func (s *FlashcardService) GetPaginated(ctx context.Context, userID int64, page, limit int) ([]model.Flashcard, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Flashcard{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, apperr.Classify("failed to count flashcards", err)
	}

	flashcards := make([]model.Flashcard, 0, limit)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&flashcards).Error
	if err != nil {
		return nil, 0, apperr.Classify("failed to list flashcards", err)
	}

	return flashcards, total, nil
}

// CreateMultiple inserts the batch in one transaction after confirming every
// referenced generation belongs to the user. A single unknown or foreign
// generation ID fails the whole request; nothing is inserted.
func (s *FlashcardService) CreateMultiple(ctx context.Context, userID int64, inputs []validator.FlashcardInput) ([]model.Flashcard, error) {
	if invalid, err := s.invalidGenerationIDs(ctx, userID, inputs); err != nil {
		return nil, err
	} else if len(invalid) > 0 {
		details := make([]string, len(invalid))
		for i, id := range invalid {
			details[i] = fmt.Sprintf("%d", id)
		}
		return nil, apperr.Validation(
			"one or more generation IDs do not belong to the user",
			"invalid generation_id values: "+strings.Join(details, ", "),
		)
	}

	flashcards := make([]model.Flashcard, len(inputs))
	for i, in := range inputs {
		flashcards[i] = model.Flashcard{
			UserID:       userID,
			Front:        in.Front,
			Back:         in.Back,
			Source:       in.Source,
			GenerationID: in.GenerationID,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&flashcards).Error
	})
	if err != nil {
		return nil, apperr.Classify("failed to create flashcards", err)
	}

	return flashcards, nil
}

// invalidGenerationIDs returns the referenced generation IDs that do not
// exist under the given user.
func (s *FlashcardService) invalidGenerationIDs(ctx context.Context, userID int64, inputs []validator.FlashcardInput) ([]int64, error) {
	requested := make(map[int64]struct{})
	for _, in := range inputs {
		if in.GenerationID != nil {
			requested[*in.GenerationID] = struct{}{}
		}
	}
	if len(requested) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}

	var owned []int64
	err := s.db.WithContext(ctx).Model(&model.Generation{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Pluck("id", &owned).Error
	if err != nil {
		return nil, apperr.Classify("failed to verify generation ownership", err)
	}

	ownedSet := make(map[int64]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	var invalid []int64
	for id := range requested {
		if _, ok := ownedSet[id]; !ok {
			invalid = append(invalid, id)
		}
	}
	sort.Slice(invalid, func(i, j int) bool { return invalid[i] < invalid[j] })
	return invalid, nil
}

type UpdateFlashcardCommand struct {
	ID     int64
	UserID int64
	Front  *string
	Back   *string
	Source *string
}

// Update applies a partial update to front/back/source. NotFound when no row
// matches {id, user_id}.
func (s *FlashcardService) Update(ctx context.Context, cmd UpdateFlashcardCommand) (*model.Flashcard, error) {
	updates := map[string]interface{}{}
	if cmd.Front != nil {
		updates["front"] = *cmd.Front
	}
	if cmd.Back != nil {
		updates["back"] = *cmd.Back
	}
	if cmd.Source != nil {
		updates["source"] = *cmd.Source
	}
	if len(updates) == 0 {
		return nil, apperr.Validation("no fields to update", "provide at least one of front, back, source")
	}

	result := s.db.WithContext(ctx).Model(&model.Flashcard{}).
		Where("id = ? AND user_id = ?", cmd.ID, cmd.UserID).
		Updates(updates)
	if result.Error != nil {
		return nil, apperr.Classify("failed to update flashcard", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("flashcard not found")
	}

	var flashcard model.Flashcard
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", cmd.ID, cmd.UserID).
		First(&flashcard).Error; err != nil {
		return nil, apperr.Classify("failed to reload flashcard", err)
	}
	return &flashcard, nil
}

// Delete removes the flashcard matching {id, user_id}. NotFound when no row
// matched.
func (s *FlashcardService) Delete(ctx context.Context, id, userID int64) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Flashcard{})
	if result.Error != nil {
		return apperr.Classify("failed to delete flashcard", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("flashcard not found")
	}
	return nil
}
