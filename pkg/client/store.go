package client

import (
	"context"
	"sync"
)

// Store caches the current page of flashcards and mirrors server mutations
// locally, so update/delete don't force a re-fetch. All fields are guarded by
// the mutex; read them through Snapshot.
type Store struct {
	client *Client

	mu          sync.Mutex
	flashcards  []Flashcard
	currentPage int
	totalPages  int
	total       int64
	limit       int
	loading     bool
	err         error
}

func NewStore(client *Client) *Store {
	return &Store{
		client: client,
		limit:  20,
	}
}

// StoreState is a copy of the store's state at one point in time.
type StoreState struct {
	Flashcards  []Flashcard
	CurrentPage int
	TotalPages  int
	Total       int64
	Limit       int
	Loading     bool
	Err         error
}

func (s *Store) Snapshot() StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()

	flashcards := make([]Flashcard, len(s.flashcards))
	copy(flashcards, s.flashcards)

	return StoreState{
		Flashcards:  flashcards,
		CurrentPage: s.currentPage,
		TotalPages:  s.totalPages,
		Total:       s.total,
		Limit:       s.limit,
		Loading:     s.loading,
		Err:         s.err,
	}
}

// Fetch loads one page from the server and replaces the cached page. The
// loading flag is cleared on every path, success or failure.
func (s *Store) Fetch(ctx context.Context, page, limit int) error {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	result, err := s.client.ListFlashcards(ctx, page, limit)
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.flashcards = result.Data
	s.currentPage = result.Pagination.Page
	s.limit = result.Pagination.Limit
	s.total = result.Pagination.Total
	s.totalPages = totalPages(result.Pagination.Total, result.Pagination.Limit)
	s.mu.Unlock()

	return nil
}

// Update edits a flashcard on the server, then replaces it in the cached
// page by ID.
func (s *Store) Update(ctx context.Context, id int64, input UpdateFlashcardInput) error {
	updated, err := s.client.UpdateFlashcard(ctx, id, input)
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	for i := range s.flashcards {
		if s.flashcards[i].ID == id {
			s.flashcards[i] = *updated
			break
		}
	}
	s.err = nil
	s.mu.Unlock()

	return nil
}

// Delete removes a flashcard on the server, then filters it out of the
// cached page and recomputes the totals locally.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteFlashcard(ctx, id); err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	filtered := s.flashcards[:0]
	for _, card := range s.flashcards {
		if card.ID != id {
			filtered = append(filtered, card)
		}
	}
	s.flashcards = filtered
	if s.total > 0 {
		s.total--
	}
	s.totalPages = totalPages(s.total, s.limit)
	s.err = nil
	s.mu.Unlock()

	return nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
