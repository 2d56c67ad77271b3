package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/bookgraph/internal/observability"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

const DefaultCandidatePool = 500

type Service struct {
	searcher  Searcher
	neighbors Neighbors
	pool      int
	log       *logger.Logger
	metrics   *observability.Metrics
}

type Option func(*Service)

// WithCandidatePool sets how many embedding neighbors are fetched before truncation.
func WithCandidatePool(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pool = n
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(searcher Searcher, neighbors Neighbors, log *logger.Logger, opts ...Option) (*Service, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher required")
	}
	if neighbors == nil {
		return nil, fmt.Errorf("embedding index required")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		searcher:  searcher,
		neighbors: neighbors,
		pool:      DefaultCandidatePool,
		log:       log.With("service", "Recommend"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search matches query against book names, then ranks books related to the top hit
// by embedding distance. Related ids are taken from a pool of CandidatePool neighbors
// before being cut to maxRelevant, so non-book neighbors do not shrink the result early.
func (s *Service) Search(ctx context.Context, query string, maxHit, maxRelevant int) (Result, error) {
	res := Result{Hits: []BookView{}, Relevant: []BookView{}}
	if maxHit <= 0 {
		s.metrics.IncRecommend("empty")
		return res, nil
	}

	hits, err := s.searcher.MatchBooks(ctx, query, maxHit)
	if err != nil {
		s.metrics.IncRecommend("error")
		return Result{}, fmt.Errorf("%w: match %q: %w", ErrSearchBackend, query, err)
	}
	if len(hits) > maxHit {
		hits = hits[:maxHit]
	}
	if len(hits) == 0 {
		s.metrics.IncRecommend("empty")
		return res, nil
	}
	res.Hits = hits

	ids, err := s.neighbors.NearestBooks(hits[0].ID, s.pool)
	if err != nil {
		s.metrics.IncRecommend("error")
		return Result{}, err
	}
	if maxRelevant < 0 {
		maxRelevant = 0
	}
	if len(ids) > maxRelevant {
		ids = ids[:maxRelevant]
	}

	for _, id := range ids {
		view, err := s.searcher.GetBook(ctx, id)
		if errors.Is(err, ErrBookNotFound) {
			s.log.Warn("Related book missing from search index", "book_id", id, "query_book_id", hits[0].ID)
			continue
		}
		if err != nil {
			s.metrics.IncRecommend("error")
			return Result{}, fmt.Errorf("%w: get %s: %w", ErrSearchBackend, id, err)
		}
		res.Relevant = append(res.Relevant, view)
	}
	s.metrics.IncRecommend("hit")
	return res, nil
}
