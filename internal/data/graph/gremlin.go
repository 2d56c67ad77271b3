package graph

import (
	"context"
	"fmt"

	gremlingo "github.com/apache/tinkerpop/gremlin-go/v3/driver"

	"github.com/yungbote/bookgraph/internal/domain"
	"github.com/yungbote/bookgraph/internal/platform/gremlindb"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

var __ = gremlingo.T__

type GremlinStore struct {
	g      *gremlingo.GraphTraversalSource
	closer func()
	log    *logger.Logger
}

func NewGremlinStore(client *gremlindb.Client, log *logger.Logger) (*GremlinStore, error) {
	if client == nil || client.G == nil {
		return nil, fmt.Errorf("gremlin client required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GremlinStore{
		g:      client.G,
		closer: client.Close,
		log:    log.With("service", "GremlinGraphStore"),
	}, nil
}

func (s *GremlinStore) UpsertNode(ctx context.Context, e domain.Entity) error {
	if err := validateEntity(e); err != nil {
		return err
	}
	if err := iterate(ctx, upsertNodeTraversal(s.g, e)); err != nil {
		return fmt.Errorf("gremlin upsert node %s: %w", domain.RefOf(e), err)
	}
	return nil
}

func (s *GremlinStore) UpsertEdge(ctx context.Context, from, to domain.Entity, label string) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if err := s.UpsertNode(ctx, from); err != nil {
		return err
	}
	if err := s.UpsertNode(ctx, to); err != nil {
		return err
	}
	if err := iterate(ctx, upsertEdgeTraversal(s.g, from, to, label)); err != nil {
		return fmt.Errorf("gremlin upsert edge %s -[%s]-> %s: %w", domain.RefOf(from), label, domain.RefOf(to), err)
	}
	return nil
}

// upsertNodeTraversal finds the vertex by (label, identifier) or adds it with every present property.
func upsertNodeTraversal(g *gremlingo.GraphTraversalSource, e domain.Entity) *gremlingo.GraphTraversal {
	label := string(e.Kind())
	key, value := domain.Identity(e)

	create := __.AddV(label)
	for _, p := range e.Properties() {
		create = create.Property(gremlingo.Cardinality.Single, p.Key, p.Value)
	}
	return g.V().Has(label, key, value).Fold().Coalesce(__.Unfold(), create)
}

// upsertEdgeTraversal adds from -[label]-> to unless an edge with that label already joins them.
func upsertEdgeTraversal(g *gremlingo.GraphTraversalSource, from, to domain.Entity, label string) *gremlingo.GraphTraversal {
	fromKey, fromValue := domain.Identity(from)
	toKey, toValue := domain.Identity(to)

	return g.V().Has(string(from.Kind()), fromKey, fromValue).As("s").
		V().Has(string(to.Kind()), toKey, toValue).
		Coalesce(
			__.InE(label).Where(__.OutV().As("s")),
			__.AddE(label).From("s"),
		)
}

func (s *GremlinStore) Close(context.Context) error {
	if s.closer != nil {
		s.closer()
	}
	return nil
}

// iterate submits t and waits for completion or ctx cancellation.
// The driver has no per-request cancellation, so a cancelled wait leaves the request in flight.
func iterate(ctx context.Context, t *gremlingo.GraphTraversal) error {
	select {
	case err := <-t.Iterate():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
