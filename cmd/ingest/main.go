package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/bookgraph/internal/app"
	"github.com/yungbote/bookgraph/internal/ingest"
)

func main() {
	var (
		csvPath         string
		tsv             bool
		noHeader        bool
		continueOnError bool
		limit           int
		progressEvery   int
	)
	flag.StringVar(&csvPath, "csv", "data/books.csv", "bibliographic export (local path or gs://bucket/object)")
	flag.BoolVar(&tsv, "tsv", false, "input is tab separated")
	flag.BoolVar(&noHeader, "no-header", false, "input has no header row")
	flag.BoolVar(&continueOnError, "continue-on-error", false, "log failing rows and keep going")
	flag.IntVar(&limit, "limit", 0, "stop after this many rows (0 = all)")
	flag.IntVar(&progressEvery, "progress-every", 0, "rows between progress logs (0 = config, negative disables)")
	flag.Parse()

	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.New(ctx, "bookgraph-ingest")
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}

	opts := a.IngestOptions()
	opts.ContinueOnError = opts.ContinueOnError || continueOnError
	opts.Limit = limit
	if progressEvery != 0 {
		opts.ProgressEvery = progressEvery
	}
	code := run(ctx, a, csvPath, csvOptions(tsv, noHeader), opts)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Close(closeCtx)
	os.Exit(code)
}

func csvOptions(tsv, noHeader bool) []ingest.CSVOption {
	opts := []ingest.CSVOption{ingest.WithHeaderRow(!noHeader)}
	if tsv {
		opts = append(opts, ingest.WithComma('\t'))
	}
	return opts
}

func run(ctx context.Context, a *app.App, csvPath string, csvOpts []ingest.CSVOption, opts ingest.Options) int {
	src, err := a.OpenRecords(ctx, csvPath, csvOpts...)
	if err != nil {
		a.Log.Error("Open records failed", "path", csvPath, "error", err)
		return 1
	}
	stats, err := a.RunIngest(ctx, src, opts)
	if err != nil {
		a.Log.Error("Ingestion failed", "path", csvPath, "rows", stats.Rows, "error", err)
		return 1
	}
	fmt.Printf("ingested rows=%d failed=%d skipped_relations=%d warnings=%d\n", stats.Rows, stats.Failed, stats.Skipped, stats.Warnings)
	return 0
}
