package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cardforge/api/internal/apperr"
	"github.com/cardforge/api/internal/client"
	"github.com/cardforge/api/internal/middleware"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/service"
	"github.com/cardforge/api/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GenerationHandler struct {
	generations  *service.GenerationService
	errorLog     *service.ErrorLogService
	llm          *client.OpenRouterClient
	defaultModel string
}

// errNoFlashcards marks a structurally valid model response that contained an
// empty proposal list.
var errNoFlashcards = errors.New("model returned no flashcards")

func NewGenerationHandler(generations *service.GenerationService, errorLog *service.ErrorLogService, llm *client.OpenRouterClient, defaultModel string) *GenerationHandler {
	return &GenerationHandler{
		generations:  generations,
		errorLog:     errorLog,
		llm:          llm,
		defaultModel: defaultModel,
	}
}

// ProposalDTO is the transient review state of one generated flashcard,
// pending user acceptance or edit.
type ProposalDTO struct {
	ID       string `json:"id"`
	Front    string `json:"front"`
	Back     string `json:"back"`
	IsEdited bool   `json:"isEdited"`
	Source   string `json:"source"`
}

type CreateGenerationRequest struct {
	SourceText string `json:"source_text"`
	Model      string `json:"model"`
}

type CreateGenerationResponse struct {
	GenerationID   int64         `json:"generation_id"`
	Proposals      []ProposalDTO `json:"proposals"`
	GeneratedCount int           `json:"generated_count"`
	Duplicate      bool          `json:"duplicate"`
}

// Create runs one AI generation: validate the source text, warn on duplicate
// submissions, call the model, persist the generation record, and return the
// proposals for review.
func (h *GenerationHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg := validator.ValidateSourceText(req.SourceText); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}

	modelName := req.Model
	if modelName == "" {
		modelName = h.defaultModel
	}

	ctx := c.Request.Context()
	sourceHash := service.HashSourceText(req.SourceText)
	sourceLen := len([]rune(req.SourceText))

	duplicate, err := h.generations.CheckDuplicateSource(ctx, userID, req.SourceText)
	if err != nil {
		respondError(c, err)
		return
	}

	messages := []client.Message{
		{Role: "system", Content: client.FlashcardSystemPrompt},
		{Role: "user", Content: req.SourceText},
	}

	start := time.Now()
	var payload client.ProposalsPayload
	err = h.llm.GenerateStructuredResponse(ctx, messages,
		client.FlashcardSchemaName, client.FlashcardSchema,
		&client.Options{Model: modelName}, &payload)
	elapsed := time.Since(start)

	if err != nil {
		middleware.RecordGeneration(false, modelName, elapsed)
		h.logGenerationError(userID, modelName, sourceHash, sourceLen, err)
		respondError(c, apperr.Unavailable("AI generation failed", err))
		return
	}

	if len(payload.Flashcards) == 0 {
		middleware.RecordGeneration(false, modelName, elapsed)
		h.logGenerationError(userID, modelName, sourceHash, sourceLen, errNoFlashcards)
		respondError(c, apperr.Unavailable("AI generation returned no flashcards", errNoFlashcards))
		return
	}
	middleware.RecordGeneration(true, modelName, elapsed)

	proposals := make([]ProposalDTO, len(payload.Flashcards))
	for i, p := range payload.Flashcards {
		proposals[i] = ProposalDTO{
			ID:     uuid.NewString(),
			Front:  p.Front,
			Back:   p.Back,
			Source: model.SourceAIFull,
		}
	}

	proposalsJSON, err := json.Marshal(proposals)
	if err != nil {
		respondError(c, apperr.Internal("failed to encode proposals", err))
		return
	}

	generation, err := h.generations.Create(ctx, service.CreateGenerationCommand{
		UserID:           userID,
		Model:            modelName,
		SourceTextHash:   sourceHash,
		SourceTextLength: sourceLen,
		GeneratedCount:   len(proposals),
		DurationMs:       elapsed.Milliseconds(),
		Proposals:        proposalsJSON,
	})
	if err != nil {
		h.logGenerationError(userID, modelName, sourceHash, sourceLen, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateGenerationResponse{
		GenerationID:   generation.ID,
		Proposals:      proposals,
		GeneratedCount: len(proposals),
		Duplicate:      duplicate,
	})
}

type GenerationListResponse struct {
	Data       []model.Generation `json:"data"`
	Pagination PaginationDTO      `json:"pagination"`
}

// List returns the user's generation metadata, newest first.
func (h *GenerationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, limit = validator.NormalizePagination(page, limit)

	generations, total, err := h.generations.GetPaginated(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerationListResponse{
		Data:       generations,
		Pagination: PaginationDTO{Page: page, Limit: limit, Total: total},
	})
}

type AcceptFlashcardsRequest struct {
	Flashcards []validator.FlashcardInput `json:"flashcards"`
}

type AcceptFlashcardsResponse struct {
	Flashcards            []model.Flashcard `json:"flashcards"`
	AcceptedUneditedCount int               `json:"accepted_unedited_count"`
	AcceptedEditedCount   int               `json:"accepted_edited_count"`
}

// Accept persists reviewed proposals and updates the generation's acceptance
// counters in one transaction.
func (h *GenerationHandler) Accept(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	generationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid generation id"})
		return
	}

	var req AcceptFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if len(req.Flashcards) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: "flashcards: at least one flashcard is required"})
		return
	}
	for _, in := range req.Flashcards {
		if msg := validator.ValidateFront(in.Front); msg != "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
			return
		}
		if msg := validator.ValidateBack(in.Back); msg != "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
			return
		}
	}

	result, err := h.generations.BulkAccept(c.Request.Context(), generationID, userID, req.Flashcards)
	if err != nil {
		respondError(c, err)
		return
	}

	unedited, edited := 0, 0
	for _, card := range result.Flashcards {
		if card.Source == model.SourceAIEdited {
			edited++
		} else {
			unedited++
		}
	}
	middleware.RecordAccepted(unedited, edited)

	c.JSON(http.StatusCreated, AcceptFlashcardsResponse{
		Flashcards:            result.Flashcards,
		AcceptedUneditedCount: result.AcceptedUneditedCount,
		AcceptedEditedCount:   result.AcceptedEditedCount,
	})
}

// logGenerationError records diagnostics without ever joining the request's
// control flow.
func (h *GenerationHandler) logGenerationError(userID int64, modelName, sourceHash string, sourceLen int, cause error) {
	code := model.ErrorCodeLLMRequest
	switch {
	case errors.Is(cause, errNoFlashcards):
		code = model.ErrorCodeLLMEmpty
	case errors.Is(cause, client.ErrInvalidJSON):
		code = model.ErrorCodeLLMParse
	}

	entry := model.GenerationErrorLog{
		UserID:           userID,
		Model:            modelName,
		SourceTextHash:   sourceHash,
		SourceTextLength: sourceLen,
		ErrorCode:        code,
		ErrorMessage:     cause.Error(),
	}

	go h.errorLog.Log(context.Background(), entry)
}
