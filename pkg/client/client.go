// Package client is a Go SDK for the cardforge API: a thin HTTP wrapper, a
// page-caching flashcard store, and the proposal edit form used during
// AI-generation review.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type AuthResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

type Flashcard struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Front        string    `json:"front"`
	Back         string    `json:"back"`
	Source       string    `json:"source"`
	GenerationID *int64    `json:"generationId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type FlashcardPage struct {
	Data       []Flashcard `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed apiError
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || parsed.Error == "" {
			parsed.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: parsed.Error, Details: parsed.Details}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login authenticates with email and password and stores the issued access
// token for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	if result.Session != nil {
		c.token = result.Session.AccessToken
	}
	return &result, nil
}

// ListFlashcards fetches one page of flashcards.
func (c *Client) ListFlashcards(ctx context.Context, page, limit int) (*FlashcardPage, error) {
	path := fmt.Sprintf("/api/flashcards?page=%d&limit=%d", page, limit)
	var result FlashcardPage
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type UpdateFlashcardInput struct {
	Front  *string `json:"front,omitempty"`
	Back   *string `json:"back,omitempty"`
	Source *string `json:"source,omitempty"`
}

// UpdateFlashcard applies a partial edit and returns the updated card.
func (c *Client) UpdateFlashcard(ctx context.Context, id int64, input UpdateFlashcardInput) (*Flashcard, error) {
	var result Flashcard
	path := fmt.Sprintf("/api/flashcards/%d", id)
	if err := c.do(ctx, http.MethodPut, path, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteFlashcard removes one flashcard.
func (c *Client) DeleteFlashcard(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/flashcards/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
