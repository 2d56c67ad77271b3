package app

import (
	"context"
	"fmt"

	"github.com/yungbote/bookgraph/internal/data/graph"
	"github.com/yungbote/bookgraph/internal/platform/gremlindb"
	"github.com/yungbote/bookgraph/internal/platform/neo4jdb"
)

// OpenGraphStore connects the configured graph backend. The store is closed with the app.
func (a *App) OpenGraphStore(ctx context.Context) (graph.Store, error) {
	backend, err := graph.ParseBackend(a.Cfg.Graph.Backend)
	if err != nil {
		return nil, err
	}

	var store graph.Store
	switch backend {
	case graph.BackendNeo4j:
		nc := a.Cfg.Graph.Neo4j
		client, err := neo4jdb.New(ctx, a.Log, neo4jdb.Config{
			URI:            nc.URI,
			User:           nc.User,
			Password:       nc.Password,
			Database:       nc.Database,
			ConnectTimeout: nc.ConnectTimeout.Duration,
			MaxPoolSize:    nc.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		s, err := graph.NewNeo4jStore(client, a.Log)
		if err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		s.EnsureSchema(ctx)
		store = s
	case graph.BackendGremlin:
		gc := a.Cfg.Graph.Gremlin
		client, err := gremlindb.New(a.Log, gremlindb.Config{
			URL:             gc.URL,
			TraversalSource: gc.TraversalSource,
			ConnectTimeout:  gc.ConnectTimeout.Duration,
			InsecureTLS:     gc.InsecureTLS,
		})
		if err != nil {
			return nil, err
		}
		s, err := graph.NewGremlinStore(client, a.Log)
		if err != nil {
			client.Close()
			return nil, err
		}
		store = s
	case graph.BackendMemory:
		a.Log.Warn("Using in-memory graph store; data is discarded on exit")
		store = graph.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported graph backend %q", backend)
	}

	a.onClose(store.Close)
	a.Log.Info("Graph store ready", "backend", string(backend))
	return store, nil
}
