package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yungbote/bookgraph/internal/parser"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

// BookSink receives book documents. IndexRecord reports whether a new document was written.
type BookSink interface {
	IndexRecord(ctx context.Context, rec parser.Record) (bool, error)
}

type BookStats struct {
	Rows    int
	Created int
	Existed int
	Failed  int
}

// IndexBooks feeds every record of src into sink in input order. Already indexed books are counted, not rewritten.
func IndexBooks(ctx context.Context, src RecordSource, sink BookSink, log *logger.Logger, opts Options) (BookStats, error) {
	if sink == nil {
		return BookStats{}, fmt.Errorf("book sink required")
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("service", "BookIndexing")
	every := opts.ProgressEvery
	if every == 0 {
		every = defaultProgressEvery
	}

	var stats BookStats
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if opts.Limit > 0 && stats.Rows >= opts.Limit {
			break
		}
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++
		row := stats.Rows

		created, err := sink.IndexRecord(ctx, rec)
		switch {
		case err == nil && created:
			stats.Created++
		case err == nil:
			stats.Existed++
		case !opts.ContinueOnError || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return stats, fmt.Errorf("row %d (book_id=%q): %w", row, strings.TrimSpace(rec.Get(parser.ColBookID)), err)
		default:
			stats.Failed++
			log.Error("Book indexing failed (continuing)", "row", row, "book_id", rec.Get(parser.ColBookID), "error", err)
		}

		if every > 0 && row%every == 0 {
			log.Info("Book indexing progress", "rows", row, "created", stats.Created, "elapsed", time.Since(start).Round(time.Millisecond).String())
		}
	}
	log.Info("Book indexing finished",
		"rows", stats.Rows, "created", stats.Created, "existed", stats.Existed, "failed", stats.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return stats, nil
}
