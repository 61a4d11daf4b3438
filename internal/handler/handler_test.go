package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cardforge/api/internal/auth"
	"github.com/cardforge/api/internal/client"
	"github.com/cardforge/api/internal/middleware"
	"github.com/cardforge/api/internal/model"
	"github.com/cardforge/api/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Generation{},
		&model.Flashcard{},
		&model.GenerationErrorLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupRouter wires the API the way cmd/server does, minus Redis and with an
// optional fake LLM client.
func setupRouter(t *testing.T, db *gorm.DB, llm *client.OpenRouterClient) *gin.Engine {
	t.Helper()

	flashcardService := service.NewFlashcardService(db)
	generationService := service.NewGenerationService(db)
	errorLogService := service.NewErrorLogService(db)
	userService := service.NewUserService(db)

	authHandler := NewAuthHandler(db, testJWTSecret, nil, "http://localhost:3000")
	flashcardHandler := NewFlashcardHandler(flashcardService, nil)
	generationHandler := NewGenerationHandler(generationService, errorLogService, llm, "test/model")
	userHandler := NewUserHandler(userService)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/refresh", authHandler.RefreshToken)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(testJWTSecret))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/flashcards", flashcardHandler.List)
	authed.POST("/flashcards", flashcardHandler.Create)
	authed.PUT("/flashcards/:id", flashcardHandler.Update)
	authed.DELETE("/flashcards/:id", flashcardHandler.Delete)
	authed.POST("/generations", generationHandler.Create)
	authed.GET("/generations", generationHandler.List)
	authed.POST("/generations/:id/accept", generationHandler.Accept)
	authed.DELETE("/users/me", userHandler.DeleteAccount)

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, email string) (*model.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("pass12")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &model.User{Email: email, PasswordHash: hash, Provider: model.ProviderLocal}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err := auth.GenerateAccessToken(user, testJWTSecret)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return user, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// newFakeLLM returns an OpenRouter client wired to a fake completion server.
func newFakeLLM(t *testing.T, handler http.HandlerFunc) *client.OpenRouterClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.NewOpenRouterClient(srv.URL, "test-key", "test/model")
}

func llmReply(content string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return body
}
