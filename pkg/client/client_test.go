package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["email"] != "user@example.com" {
				t.Errorf("email = %q", body["email"])
			}
			json.NewEncoder(w).Encode(AuthResult{
				User:    &User{ID: 1, Email: "user@example.com"},
				Session: &Session{AccessToken: "token-abc", RefreshToken: "refresh-xyz", ExpiresIn: 900},
			})
		case "/api/flashcards":
			if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
				t.Errorf("Authorization = %q", got)
			}
			json.NewEncoder(w).Encode(pageResponse(nil, 1, 20, 0))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.Login(context.Background(), "user@example.com", "pass12")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Session == nil || result.Session.AccessToken != "token-abc" {
		t.Fatalf("session = %+v", result.Session)
	}

	// The stored token must ride along on the next request.
	if _, err := c.ListFlashcards(context.Background(), 1, 20); err != nil {
		t.Fatalf("ListFlashcards: %v", err)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid email or password"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "user@example.com", "wrong")
	if err == nil {
		t.Fatal("expected login error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid email or password" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
