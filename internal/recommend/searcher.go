package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yungbote/bookgraph/internal/platform/search"
)

// BookDocument is the indexed form of a book.
type BookDocument struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Topic   string `json:"topic"`
	Summary string `json:"summary,omitempty"`
}

// IndexSearcher adapts the search client to Searcher. Queries match on the name field.
type IndexSearcher struct {
	client *search.Client
}

func NewIndexSearcher(client *search.Client) *IndexSearcher {
	return &IndexSearcher{client: client}
}

func (s *IndexSearcher) MatchBooks(ctx context.Context, query string, size int) ([]BookView, error) {
	hits, err := s.client.Match(ctx, "name", query, size)
	if err != nil {
		return nil, err
	}
	out := make([]BookView, 0, len(hits))
	for _, h := range hits {
		view, err := viewFromHit(h)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *IndexSearcher) GetBook(ctx context.Context, id string) (BookView, error) {
	hit, err := s.client.Get(ctx, id)
	if errors.Is(err, search.ErrNotFound) {
		return BookView{}, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if err != nil {
		return BookView{}, err
	}
	return viewFromHit(hit)
}

func viewFromHit(h search.Hit) (BookView, error) {
	var doc BookDocument
	if len(h.Source) > 0 {
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return BookView{}, fmt.Errorf("decode book %s: %w", h.ID, err)
		}
	}
	return BookView{ID: h.ID, Name: doc.Name, Author: doc.Author, Topic: doc.Topic}, nil
}
