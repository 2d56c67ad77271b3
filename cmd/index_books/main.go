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
		analyzer        string
		searchAnalyzer  string
		continueOnError bool
		limit           int
	)
	flag.StringVar(&csvPath, "csv", "data/books.csv", "bibliographic export (local path or gs://bucket/object)")
	flag.BoolVar(&tsv, "tsv", false, "input is tab separated")
	flag.StringVar(&analyzer, "analyzer", "", "index-time analyzer for text fields (default from config)")
	flag.StringVar(&searchAnalyzer, "search-analyzer", "", "query-time analyzer for text fields (default from config)")
	flag.BoolVar(&continueOnError, "continue-on-error", false, "log failing rows and keep going")
	flag.IntVar(&limit, "limit", 0, "stop after this many rows (0 = all)")
	flag.Parse()

	ctx, stop := app.SignalContext(context.Background())
	defer stop()

	a, err := app.New(ctx, "bookgraph-index-books")
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	if analyzer != "" {
		a.Cfg.Search.Analyzer = analyzer
	}
	if searchAnalyzer != "" {
		a.Cfg.Search.SearchAnalyzer = searchAnalyzer
	}

	var csvOpts []ingest.CSVOption
	if tsv {
		csvOpts = append(csvOpts, ingest.WithComma('\t'))
	}
	opts := a.IngestOptions()
	opts.ContinueOnError = opts.ContinueOnError || continueOnError
	opts.Limit = limit
	code := run(ctx, a, csvPath, csvOpts, opts)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Close(closeCtx)
	os.Exit(code)
}

func run(ctx context.Context, a *app.App, csvPath string, csvOpts []ingest.CSVOption, opts ingest.Options) int {
	src, err := a.OpenRecords(ctx, csvPath, csvOpts...)
	if err != nil {
		a.Log.Error("Open records failed", "path", csvPath, "error", err)
		return 1
	}
	stats, err := a.RunIndexBooks(ctx, src, opts)
	if err != nil {
		a.Log.Error("Book indexing failed", "path", csvPath, "rows", stats.Rows, "error", err)
		return 1
	}
	fmt.Printf("indexed rows=%d created=%d existed=%d failed=%d\n", stats.Rows, stats.Created, stats.Existed, stats.Failed)
	return 0
}
