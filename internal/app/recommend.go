package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/bookgraph/internal/embedding"
	apphttp "github.com/yungbote/bookgraph/internal/http"
	httpH "github.com/yungbote/bookgraph/internal/http/handlers"
	"github.com/yungbote/bookgraph/internal/platform/redisdb"
	"github.com/yungbote/bookgraph/internal/recommend"
)

// NewRecommendServer loads the embedding index, connects the search backend and
// an optional redis cache, and assembles the HTTP server.
func (a *App) NewRecommendServer(ctx context.Context) (*apphttp.Server, error) {
	client, err := a.SearchClient()
	if err != nil {
		return nil, err
	}

	var idx *embedding.Index
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		idx, err = embedding.LoadIndex(gctx, a.Log, a.Artifacts, a.Cfg.Embedding.IDsPath, a.Cfg.Embedding.VectorsPath)
		return err
	})
	g.Go(func() error {
		exists, err := client.IndexExists(gctx)
		if err != nil {
			a.Log.Warn("Search backend not reachable at startup (continuing)", "url", a.Cfg.Search.URL, "error", err)
			return nil
		}
		if !exists {
			a.Log.Warn("Book index does not exist; run index_books first", "index", a.Cfg.Search.Index)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load embedding index: %w", err)
	}

	var searcher recommend.Searcher = recommend.NewIndexSearcher(client)
	if a.Cfg.Redis.Addr != "" {
		rdb, err := redisdb.New(ctx, a.Log, redisdb.Config{
			Addr:     a.Cfg.Redis.Addr,
			Password: a.Cfg.Redis.Password,
			DB:       a.Cfg.Redis.DB,
		})
		if err != nil {
			a.Log.Warn("Redis unavailable; book cache disabled", "addr", a.Cfg.Redis.Addr, "error", err)
		} else {
			a.onClose(func(context.Context) error { return rdb.Close() })
			searcher = recommend.NewCachedBooks(searcher, rdb, a.Cfg.Redis.TTL.Duration, a.Log, a.Metrics)
		}
	}

	svc, err := recommend.NewService(searcher, idx, a.Log,
		recommend.WithCandidatePool(a.Cfg.Embedding.CandidatePool),
		recommend.WithMetrics(a.Metrics),
	)
	if err != nil {
		return nil, err
	}

	return apphttp.NewServer(a.Cfg.HTTP, apphttp.RouterConfig{
		Log:          a.Log,
		Metrics:      a.Metrics,
		ServiceName:  a.serviceName,
		CORSOrigins:  a.Cfg.HTTP.CORSOrigins,
		BooksHandler: httpH.NewBooksHandler(svc, a.Log),
		HealthHandler: httpH.NewHealthHandler(httpH.ReadinessCheck{
			Name: "search",
			Check: func(ctx context.Context) error {
				exists, err := client.IndexExists(ctx)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("index %q missing", a.Cfg.Search.Index)
				}
				return nil
			},
		}),
	}), nil
}

// RunRecommendServer serves the recommendation API until ctx is cancelled.
func (a *App) RunRecommendServer(ctx context.Context) error {
	srv, err := a.NewRecommendServer(ctx)
	if err != nil {
		return err
	}
	a.Log.Info("Recommend server listening", "addr", a.Cfg.HTTP.Addr)
	return srv.Run(ctx)
}
