package app

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/yungbote/bookgraph/internal/data/graph"
	"github.com/yungbote/bookgraph/internal/domain"
	"github.com/yungbote/bookgraph/internal/ingest"
	"github.com/yungbote/bookgraph/internal/platform/search"
	"github.com/yungbote/bookgraph/internal/recommend"
)

// IngestOptions returns the configured ingestion options.
func (a *App) IngestOptions() ingest.Options {
	return ingest.Options{
		ContinueOnError: a.Cfg.Ingest.ContinueOnError,
		ProgressEvery:   a.Cfg.Ingest.ProgressEvery,
	}
}

// OpenRecords opens a local or gs:// CSV export. The returned source is valid until the app closes.
func (a *App) OpenRecords(ctx context.Context, location string, opts ...ingest.CSVOption) (ingest.RecordSource, error) {
	rc, err := a.Artifacts.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return rc.Close() })
	return ingest.NewCSVSource(bufio.NewReader(rc), opts...), nil
}

// RunIngest loads every record of src into the configured graph store.
func (a *App) RunIngest(ctx context.Context, src ingest.RecordSource, opts ingest.Options) (ingest.Stats, error) {
	store, err := a.OpenGraphStore(ctx)
	if err != nil {
		return ingest.Stats{}, err
	}
	o, err := ingest.NewOrchestrator(store, a.Log, a.Metrics, opts)
	if err != nil {
		return ingest.Stats{}, err
	}
	return o.Run(ctx, src)
}

func (a *App) SearchClient() (*search.Client, error) {
	sc := a.Cfg.Search
	return search.New(a.Log, search.Config{
		URL:        sc.URL,
		Index:      sc.Index,
		Username:   sc.Username,
		Password:   sc.Password,
		Timeout:    sc.Timeout.Duration,
		MaxRetries: sc.MaxRetries,
	})
}

// RunIndexBooks creates the book index if needed and writes one document per record.
func (a *App) RunIndexBooks(ctx context.Context, src ingest.RecordSource, opts ingest.Options) (ingest.BookStats, error) {
	client, err := a.SearchClient()
	if err != nil {
		return ingest.BookStats{}, err
	}
	indexer, err := recommend.NewBookIndexer(client, a.Cfg.Search.Analyzer, a.Cfg.Search.SearchAnalyzer, a.Log)
	if err != nil {
		return ingest.BookStats{}, err
	}
	if err := indexer.EnsureIndex(ctx); err != nil {
		return ingest.BookStats{}, err
	}
	return ingest.IndexBooks(ctx, src, indexer, a.Log, opts)
}

// RunExportTriplets writes every edge of the graph store to w as head<TAB>label<TAB>tail lines.
func (a *App) RunExportTriplets(ctx context.Context, w io.Writer) (int, error) {
	store, err := a.OpenGraphStore(ctx)
	if err != nil {
		return 0, err
	}
	return ExportTriplets(ctx, store, w)
}

// ExportTriplets streams store's edges to w. The store must support export.
func ExportTriplets(ctx context.Context, store graph.Store, w io.Writer) (int, error) {
	exporter, ok := store.(graph.TripletExporter)
	if !ok {
		return 0, fmt.Errorf("graph store %T does not support triplet export", store)
	}
	bw := bufio.NewWriter(w)
	n := 0
	err := exporter.ExportTriplets(ctx, func(t domain.Triplet) error {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", t.Head, t.Label, t.Tail); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("export triplets: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush triplets: %w", err)
	}
	return n, nil
}
