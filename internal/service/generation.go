package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/cardforge/api/internal/apperr"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/validator"
	"gorm.io/gorm"
)

type GenerationService struct {
	db *gorm.DB
}

func NewGenerationService(db *gorm.DB) *GenerationService {
	return &GenerationService{db: db}
}

// HashSourceText content-addresses the source text for duplicate detection.
func HashSourceText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

type CreateGenerationCommand struct {
	UserID           int64
	Model            string
	SourceTextHash   string
	SourceTextLength int
	GeneratedCount   int
	DurationMs       int64
	Proposals        []byte
}

func (s *GenerationService) Create(ctx context.Context, cmd CreateGenerationCommand) (*model.Generation, error) {
	generation := model.Generation{
		UserID:               cmd.UserID,
		Model:                cmd.Model,
		SourceTextHash:       cmd.SourceTextHash,
		SourceTextLength:     cmd.SourceTextLength,
		GeneratedCount:       cmd.GeneratedCount,
		GenerationDurationMs: cmd.DurationMs,
		Proposals:            cmd.Proposals,
	}
	if err := s.db.WithContext(ctx).Create(&generation).Error; err != nil {
		return nil, apperr.Classify("failed to create generation", err)
	}
	return &generation, nil
}

// CheckDuplicateSource reports whether the user already ran a generation over
// identical source text.
func (s *GenerationService) CheckDuplicateSource(ctx context.Context, userID int64, text string) (bool, error) {
	hash := HashSourceText(text)
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Generation{}).
		Where("user_id = ? AND source_text_hash = ?", userID, hash).
		Count(&count).Error
	if err != nil {
		return false, apperr.Classify("failed to check duplicate source", err)
	}
	return count > 0, nil
}

func (s *GenerationService) GetByID(ctx context.Context, id, userID int64) (*model.Generation, error) {
	var generation model.Generation
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&generation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("generation not found")
		}
		return nil, apperr.Classify("failed to load generation", err)
	}
	return &generation, nil
}

// GetPaginated returns generation metadata newest-first; the stored proposal
// payload is omitted from list responses.
func (s *GenerationService) GetPaginated(ctx context.Context, userID int64, page, limit int) ([]model.Generation, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Generation{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, apperr.Classify("failed to count generations", err)
	}

	generations := make([]model.Generation, 0, limit)
	err := s.db.WithContext(ctx).
		Omit("proposals").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&generations).Error
	if err != nil {
		return nil, 0, apperr.Classify("failed to list generations", err)
	}
	return generations, total, nil
}

type BulkAcceptResult struct {
	Flashcards            []model.Flashcard
	AcceptedUneditedCount int
	AcceptedEditedCount   int
}

// BulkAccept inserts the reviewed flashcards and updates the generation's
// acceptance counters in a single transaction.
func (s *GenerationService) BulkAccept(ctx context.Context, generationID, userID int64, inputs []validator.FlashcardInput) (*BulkAcceptResult, error) {
	var result BulkAcceptResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var generation model.Generation
		if err := tx.Where("id = ? AND user_id = ?", generationID, userID).
			First(&generation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("generation not found")
			}
			return err
		}

		unedited, edited := 0, 0
		flashcards := make([]model.Flashcard, len(inputs))
		for i, in := range inputs {
			switch in.Source {
			case model.SourceAIFull:
				unedited++
			case model.SourceAIEdited:
				edited++
			default:
				return apperr.Validation(
					"accepted flashcards must be AI-sourced",
					"source must be ai-full or ai-edited",
				)
			}
			flashcards[i] = model.Flashcard{
				UserID:       userID,
				Front:        in.Front,
				Back:         in.Back,
				Source:       in.Source,
				GenerationID: &generation.ID,
			}
		}

		if err := tx.Create(&flashcards).Error; err != nil {
			return err
		}

		if err := tx.Model(&generation).Updates(map[string]interface{}{
			"accepted_unedited_count": gorm.Expr("accepted_unedited_count + ?", unedited),
			"accepted_edited_count":   gorm.Expr("accepted_edited_count + ?", edited),
		}).Error; err != nil {
			return err
		}

		result.Flashcards = flashcards
		result.AcceptedUneditedCount = generation.AcceptedUneditedCount + unedited
		result.AcceptedEditedCount = generation.AcceptedEditedCount + edited
		return nil
	})
	if err != nil {
		return nil, apperr.Classify("failed to accept flashcards", err)
	}

	return &result, nil
}
