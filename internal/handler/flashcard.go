package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/cardforge/api/internal/cache"
	"github.com/cardforge/api/internal/middleware"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/service"
	"github.com/cardforge/api/internal/validator"
	"github.com/gin-gonic/gin"
)

type FlashcardHandler struct {
	flashcards *service.FlashcardService
	cache      *cache.RedisCache
}

func NewFlashcardHandler(flashcards *service.FlashcardService, redisCache *cache.RedisCache) *FlashcardHandler {
	return &FlashcardHandler{flashcards: flashcards, cache: redisCache}
}

type FlashcardListResponse struct {
	Data       []model.Flashcard `json:"data"`
	Pagination PaginationDTO     `json:"pagination"`
}

// List returns one page of the user's flashcards, newest first.
func (h *FlashcardHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, limit = validator.NormalizePagination(page, limit)

	ctx := c.Request.Context()

	// Serve from cache when possible; treat any cache failure as a miss.
	var cacheKey string
	if h.cache != nil {
		if version, err := h.cache.UserVersion(ctx, userID); err == nil {
			cacheKey = cache.ListPageKey(userID, version, page, limit)
			if cached, err := h.cache.Get(ctx, cacheKey); err == nil {
				var response FlashcardListResponse
				if err := json.Unmarshal(cached, &response); err == nil {
					c.JSON(http.StatusOK, response)
					return
				}
			}
		}
	}

	flashcards, total, err := h.flashcards.GetPaginated(ctx, userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := FlashcardListResponse{
		Data:       flashcards,
		Pagination: PaginationDTO{Page: page, Limit: limit, Total: total},
	}

	if h.cache != nil && cacheKey != "" {
		if body, err := json.Marshal(response); err == nil {
			if err := h.cache.Set(ctx, cacheKey, body); err != nil {
				log.Printf("[Flashcards] cache set failed: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

type CreateFlashcardsRequest struct {
	Flashcards []validator.FlashcardInput `json:"flashcards"`
}

type CreateFlashcardsResponse struct {
	Flashcards []model.Flashcard `json:"flashcards"`
}

// Create inserts a batch of flashcards, all-or-nothing.
func (h *FlashcardHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateFlashcardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg := validator.ValidateFlashcardBatch(req.Flashcards); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
		return
	}

	flashcards, err := h.flashcards.CreateMultiple(c.Request.Context(), userID, req.Flashcards)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateCache(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, CreateFlashcardsResponse{Flashcards: flashcards})
}

type UpdateFlashcardRequest struct {
	Front  *string `json:"front"`
	Back   *string `json:"back"`
	Source *string `json:"source"`
}

// Update applies a partial edit to one flashcard.
func (h *FlashcardHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid flashcard id"})
		return
	}

	var req UpdateFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Front != nil {
		if msg := validator.ValidateFront(*req.Front); msg != "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
			return
		}
	}
	if req.Back != nil {
		if msg := validator.ValidateBack(*req.Back); msg != "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: msg})
			return
		}
	}
	if req.Source != nil && !model.IsValidSource(*req.Source) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: "source must be one of manual, ai-full, ai-edited"})
		return
	}

	flashcard, err := h.flashcards.Update(c.Request.Context(), service.UpdateFlashcardCommand{
		ID:     id,
		UserID: userID,
		Front:  req.Front,
		Back:   req.Back,
		Source: req.Source,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, flashcard)
}

// Delete removes one flashcard.
func (h *FlashcardHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid flashcard id"})
		return
	}

	if err := h.flashcards.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}

	h.invalidateCache(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"message": "flashcard deleted"})
}

func (h *FlashcardHandler) invalidateCache(ctx context.Context, userID int64) {
	if h.cache == nil {
		return
	}
	if err := h.cache.BumpUserVersion(ctx, userID); err != nil {
		log.Printf("[Flashcards] cache invalidation failed for user %d: %v", userID, err)
	}
}
