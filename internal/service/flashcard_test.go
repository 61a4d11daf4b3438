package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cardforge/api/internal/apperr"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/validator"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func TestGetPaginated(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")
	other := createTestUser(t, db, "b@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		card := model.Flashcard{
			UserID:    user.ID,
			Front:     fmt.Sprintf("front %d", i),
			Back:      "back",
			Source:    model.SourceManual,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&card).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Another user's card must never leak into the page.
	if err := db.Create(&model.Flashcard{UserID: other.ID, Front: "x", Back: "y", Source: model.SourceManual}).Error; err != nil {
		t.Fatalf("seed other: %v", err)
	}

	cards, total, err := svc.GetPaginated(context.Background(), user.ID, 2, 10)
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(cards) != 10 {
		t.Fatalf("len = %d, want 10", len(cards))
	}
	// Page 2 of a descending order starts at the 11th newest: "front 14".
	if cards[0].Front != "front 14" {
		t.Errorf("first card on page 2 = %q, want %q", cards[0].Front, "front 14")
	}
	for i := 1; i < len(cards); i++ {
		if cards[i].CreatedAt.After(cards[i-1].CreatedAt) {
			t.Errorf("cards not in descending creation order at index %d", i)
		}
	}

	// Last page is short.
	cards, _, err = svc.GetPaginated(context.Background(), user.ID, 3, 10)
	if err != nil {
		t.Fatalf("GetPaginated page 3: %v", err)
	}
	if len(cards) != 5 {
		t.Errorf("last page len = %d, want 5", len(cards))
	}
}

func TestCreateMultipleManual(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")

	inputs := []validator.FlashcardInput{
		{Front: "f1", Back: "b1", Source: model.SourceManual},
		{Front: "f2", Back: "b2", Source: model.SourceManual},
	}
	cards, err := svc.CreateMultiple(context.Background(), user.ID, inputs)
	if err != nil {
		t.Fatalf("CreateMultiple: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("created %d cards", len(cards))
	}
	for _, c := range cards {
		if c.UserID != user.ID {
			t.Errorf("card not tagged with owner: %+v", c)
		}
		if c.ID == 0 {
			t.Error("card ID not populated")
		}
	}
}

func TestCreateMultipleOwnershipCheck(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")
	other := createTestUser(t, db, "b@example.com")

	owned := createTestGeneration(t, db, user.ID)
	foreign := createTestGeneration(t, db, other.ID)

	inputs := []validator.FlashcardInput{
		{Front: "ok", Back: "ok", Source: model.SourceAIFull, GenerationID: &owned.ID},
		{Front: "bad", Back: "bad", Source: model.SourceAIFull, GenerationID: &foreign.ID},
	}
	_, err := svc.CreateMultiple(context.Background(), user.ID, inputs)
	if err == nil {
		t.Fatal("expected ownership failure")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}
	if !strings.Contains(appErr.Details, fmt.Sprintf("%d", foreign.ID)) {
		t.Errorf("details should list offending ID: %q", appErr.Details)
	}

	// All-or-nothing: the valid card must not have been inserted either.
	var count int64
	db.Model(&model.Flashcard{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no rows inserted, got %d", count)
	}
}

func TestCreateMultipleUnknownGenerationID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")

	inputs := []validator.FlashcardInput{
		{Front: "f", Back: "b", Source: model.SourceAIEdited, GenerationID: int64Ptr(9999)},
	}
	_, err := svc.CreateMultiple(context.Background(), user.ID, inputs)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestUpdateFlashcard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")

	card := model.Flashcard{UserID: user.ID, Front: "old", Back: "old", Source: model.SourceAIFull}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated, err := svc.Update(context.Background(), UpdateFlashcardCommand{
		ID:     card.ID,
		UserID: user.ID,
		Front:  strPtr("new front"),
		Source: strPtr(model.SourceAIEdited),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Front != "new front" || updated.Back != "old" || updated.Source != model.SourceAIEdited {
		t.Errorf("partial update wrong: %+v", updated)
	}
}

func TestUpdateFlashcardNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")
	other := createTestUser(t, db, "b@example.com")

	card := model.Flashcard{UserID: other.ID, Front: "f", Back: "b", Source: model.SourceManual}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Right ID, wrong user: must look like not-found, not forbidden.
	_, err := svc.Update(context.Background(), UpdateFlashcardCommand{
		ID: card.ID, UserID: user.ID, Front: strPtr("x"),
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("kind = %v, want not_found", apperr.KindOf(err))
	}
}

func TestUpdateFlashcardNoFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	_, err := svc.Update(context.Background(), UpdateFlashcardCommand{ID: 1, UserID: 1})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestDeleteFlashcard(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFlashcardService(db)
	user := createTestUser(t, db, "a@example.com")

	card := model.Flashcard{UserID: user.ID, Front: "f", Back: "b", Source: model.SourceManual}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(context.Background(), card.ID, user.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), card.ID, user.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("second delete kind = %v, want not_found", apperr.KindOf(err))
	}
}
