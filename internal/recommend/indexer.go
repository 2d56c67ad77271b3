package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/bookgraph/internal/parser"
	"github.com/yungbote/bookgraph/internal/platform/logger"
	"github.com/yungbote/bookgraph/internal/platform/search"
)

const (
	DefaultAnalyzer       = "ik_max_word"
	DefaultSearchAnalyzer = "ik_smart"
)

// bookIndex is the subset of the search client the indexer writes through.
type bookIndex interface {
	IndexExists(ctx context.Context) (bool, error)
	CreateIndex(ctx context.Context, body map[string]any) error
	Create(ctx context.Context, id string, doc any) error
}

// BookIndexer loads bibliographic records into the book search index.
type BookIndexer struct {
	index          bookIndex
	analyzer       string
	searchAnalyzer string
	log            *logger.Logger
}

func NewBookIndexer(client *search.Client, analyzer, searchAnalyzer string, log *logger.Logger) (*BookIndexer, error) {
	if client == nil {
		return nil, fmt.Errorf("search client required")
	}
	return newBookIndexer(client, analyzer, searchAnalyzer, log), nil
}

func newBookIndexer(index bookIndex, analyzer, searchAnalyzer string, log *logger.Logger) *BookIndexer {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(analyzer) == "" {
		analyzer = DefaultAnalyzer
	}
	if strings.TrimSpace(searchAnalyzer) == "" {
		searchAnalyzer = DefaultSearchAnalyzer
	}
	return &BookIndexer{
		index:          index,
		analyzer:       analyzer,
		searchAnalyzer: searchAnalyzer,
		log:            log.With("service", "BookIndexer"),
	}
}

// EnsureIndex creates the index with text mappings for every document field if it does not exist.
func (x *BookIndexer) EnsureIndex(ctx context.Context) error {
	exists, err := x.index.IndexExists(ctx)
	if err != nil {
		return fmt.Errorf("check book index: %w", err)
	}
	if exists {
		return nil
	}
	if err := x.index.CreateIndex(ctx, x.mapping()); err != nil {
		return fmt.Errorf("create book index: %w", err)
	}
	x.log.Info("Created book index", "analyzer", x.analyzer, "search_analyzer", x.searchAnalyzer)
	return nil
}

func (x *BookIndexer) mapping() map[string]any {
	props := map[string]any{}
	for _, field := range []string{"name", "author", "topic", "summary"} {
		props[field] = map[string]any{
			"type":            "text",
			"analyzer":        x.analyzer,
			"search_analyzer": x.searchAnalyzer,
		}
	}
	return map[string]any{"mappings": map[string]any{"properties": props}}
}

// IndexRecord writes the record's book document keyed by book_id.
// It reports false without error when the document was already indexed.
func (x *BookIndexer) IndexRecord(ctx context.Context, rec parser.Record) (bool, error) {
	id := strings.TrimSpace(rec.Get(parser.ColBookID))
	if id == "" {
		return false, parser.ErrMissingBookID
	}
	doc := BookDocument{
		Name:    rec.Get(parser.ColBookNameStr),
		Author:  rec.Get(parser.ColAuthorStr),
		Topic:   rec.Get(parser.ColTopicStr),
		Summary: rec.Get(parser.ColSummary),
	}
	err := x.index.Create(ctx, id, doc)
	if errors.Is(err, search.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
