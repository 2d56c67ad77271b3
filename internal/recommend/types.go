package recommend

import (
	"context"
	"errors"
)

var (
	// ErrSearchBackend marks failures of the full-text backend.
	ErrSearchBackend = errors.New("search backend error")
	// ErrBookNotFound is returned by Searcher.GetBook for ids missing from the index.
	ErrBookNotFound = errors.New("book not found")
)

// BookView is the projection of an indexed book document served to clients.
type BookView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Topic  string `json:"topic"`
}

type Result struct {
	Hits     []BookView `json:"books_hit"`
	Relevant []BookView `json:"books_relevant"`
}

// Searcher is the full-text side: match on book name and point lookups by id.
type Searcher interface {
	MatchBooks(ctx context.Context, query string, size int) ([]BookView, error)
	GetBook(ctx context.Context, id string) (BookView, error)
}

// Neighbors is the embedding side. *embedding.Index implements it.
type Neighbors interface {
	NearestBooks(bookID string, k int) ([]string, error)
}
