package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OpenRouterClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewOpenRouterClient(srv.URL, "test-key", "test/model")
}

func chatReply(content string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return body
}

func TestGenerateResponseValidationFailsFast(t *testing.T) {
	called := false
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	tests := []struct {
		name     string
		messages []Message
	}{
		{"empty list", nil},
		{"blank content", []Message{{Role: "user", Content: "   "}}},
		{"bad role", []Message{{Role: "function", Content: "hi"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.GenerateResponse(context.Background(), tt.messages, nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if called {
		t.Error("validation failures must not reach the network")
	}
}

func TestGenerateResponse(t *testing.T) {
	var gotReq chatRequest
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write(chatReply("hello"))
	})

	temp := 0.2
	content, err := c.GenerateResponse(context.Background(),
		[]Message{{Role: "user", Content: "hi"}},
		&Options{Model: "override/model", Temperature: &temp})
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if content != "hello" {
		t.Errorf("content = %q", content)
	}
	if gotReq.Model != "override/model" {
		t.Errorf("per-call model not applied: %q", gotReq.Model)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.2 {
		t.Error("per-call temperature not applied")
	}
	if c.LastError() != nil {
		t.Errorf("lastErr should clear on success: %v", c.LastError())
	}
}

func TestGenerateResponseAPIErrorRecorded(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := c.GenerateResponse(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry status: %v", err)
	}
	if c.LastError() == nil {
		t.Error("lastErr should record the failure")
	}
}

func TestGenerateResponseEmptyChoices(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := c.GenerateResponse(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil); err == nil {
		t.Error("expected error for missing content")
	}
}

func TestGenerateStructuredResponse(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("response_format hint missing")
		}
		w.Write(chatReply(`{"flashcards":[{"front":"Q","back":"A"}]}`))
	})

	var payload ProposalsPayload
	err := c.GenerateStructuredResponse(context.Background(),
		[]Message{{Role: "system", Content: FlashcardSystemPrompt}, {Role: "user", Content: "text"}},
		FlashcardSchemaName, FlashcardSchema, nil, &payload)
	if err != nil {
		t.Fatalf("GenerateStructuredResponse: %v", err)
	}
	if len(payload.Flashcards) != 1 || payload.Flashcards[0].Front != "Q" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestGenerateStructuredResponseParseError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatReply("not json at all"))
	})

	var payload ProposalsPayload
	err := c.GenerateStructuredResponse(context.Background(),
		[]Message{{Role: "user", Content: "text"}},
		FlashcardSchemaName, FlashcardSchema, nil, &payload)
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}
}
