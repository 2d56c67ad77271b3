package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yungbote/bookgraph/internal/data/graph"
	"github.com/yungbote/bookgraph/internal/domain"
	"github.com/yungbote/bookgraph/internal/observability"
	"github.com/yungbote/bookgraph/internal/parser"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

const defaultProgressEvery = 100

type Options struct {
	// ContinueOnError logs and counts a failing record instead of stopping the run.
	ContinueOnError bool
	// ProgressEvery is the row interval for progress logs. Zero means the default, negative disables.
	ProgressEvery int
	// Limit stops after this many rows when positive.
	Limit int
}

type Stats struct {
	Rows     int
	Failed   int
	Warnings int
	Skipped  int
}

// Orchestrator drives records through the parser into a graph store, one record at a time.
type Orchestrator struct {
	store   graph.Store
	log     *logger.Logger
	metrics *observability.Metrics
	opts    Options
}

func NewOrchestrator(store graph.Store, log *logger.Logger, metrics *observability.Metrics, opts Options) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("graph store required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = defaultProgressEvery
	}
	return &Orchestrator{
		store:   store,
		log:     log.With("service", "IngestOrchestrator"),
		metrics: metrics,
		opts:    opts,
	}, nil
}

// RecordResult describes what one record contributed.
type RecordResult struct {
	BookID   string
	Edges    int
	Skipped  int
	Warnings []string
}

// IngestRecord parses rec, upserts the book node and then every relation in order.
// The first backend error aborts the record; earlier writes stay in place.
func (o *Orchestrator) IngestRecord(ctx context.Context, rec parser.Record) (RecordResult, error) {
	parsed, err := parser.Parse(rec)
	if err != nil {
		return RecordResult{}, err
	}
	res := RecordResult{BookID: parsed.Book.ID, Warnings: parsed.Warnings}
	for _, w := range parsed.Warnings {
		o.log.Warn("Record parse warning", "book_id", parsed.Book.ID, "warning", w)
	}
	o.metrics.AddIngestWarnings(len(parsed.Warnings))

	err = o.store.UpsertNode(ctx, parsed.Book)
	o.metrics.IncGraphUpsert("node", err == nil)
	if err != nil {
		return res, err
	}

	for _, rel := range parsed.Relations() {
		if missing := missingEndpoint(rel); missing != "" {
			res.Skipped++
			o.log.Warn("Skipping relation with empty endpoint identifier",
				"book_id", parsed.Book.ID, "label", rel.Label, "endpoint", missing)
			continue
		}
		err := o.store.UpsertEdge(ctx, rel.From, rel.To, rel.Label)
		o.metrics.IncGraphUpsert("edge", err == nil)
		if err != nil {
			return res, err
		}
		res.Edges++
	}
	return res, nil
}

// Run ingests every record of src sequentially in input order.
func (o *Orchestrator) Run(ctx context.Context, src RecordSource) (Stats, error) {
	var stats Stats
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if o.opts.Limit > 0 && stats.Rows >= o.opts.Limit {
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

		res, err := o.IngestRecord(ctx, rec)
		stats.Warnings += len(res.Warnings)
		stats.Skipped += res.Skipped
		o.metrics.IncIngestRecord(err == nil)
		if err != nil {
			if !o.opts.ContinueOnError || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, fmt.Errorf("row %d (book_id=%q): %w", row, strings.TrimSpace(rec.Get(parser.ColBookID)), err)
			}
			stats.Failed++
			o.log.Error("Record ingestion failed (continuing)", "row", row, "book_id", rec.Get(parser.ColBookID), "error", err)
		}

		if o.opts.ProgressEvery > 0 && row%o.opts.ProgressEvery == 0 {
			o.log.Info("Ingestion progress", "rows", row, "failed", stats.Failed, "elapsed", time.Since(start).Round(time.Millisecond).String())
		}
	}
	o.log.Info("Ingestion finished",
		"rows", stats.Rows, "failed", stats.Failed, "warnings", stats.Warnings, "skipped", stats.Skipped,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return stats, nil
}

func missingEndpoint(rel domain.Relation) string {
	for _, e := range []domain.Entity{rel.From, rel.To} {
		if _, v := domain.Identity(e); strings.TrimSpace(v) == "" {
			return string(e.Kind())
		}
	}
	return ""
}
