package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/yungbote/bookgraph/internal/parser"
)

// RecordSource yields records in input order and io.EOF when exhausted.
type RecordSource interface {
	Next(ctx context.Context) (parser.Record, error)
}

// CSVSource reads rows laid out in parser.Header order.
type CSVSource struct {
	r          *csv.Reader
	skipHeader bool
	line       int
}

type CSVOption func(*CSVSource)

// WithHeaderRow controls whether the first row is treated as a header and skipped. Default true.
func WithHeaderRow(skip bool) CSVOption {
	return func(s *CSVSource) { s.skipHeader = skip }
}

// WithComma sets the field delimiter (default ',').
func WithComma(r rune) CSVOption {
	return func(s *CSVSource) { s.r.Comma = r }
}

func NewCSVSource(r io.Reader, opts ...CSVOption) *CSVSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	s := &CSVSource{r: cr, skipHeader: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVSource) Next(ctx context.Context) (parser.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for {
		row, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}
		s.line++
		if s.skipHeader && s.line == 1 {
			continue
		}
		return parser.RecordFromRow(row), nil
	}
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []parser.Record
	pos     int
}

func NewSliceSource(records ...parser.Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(ctx context.Context) (parser.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}
