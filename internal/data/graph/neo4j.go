package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/bookgraph/internal/domain"
	"github.com/yungbote/bookgraph/internal/platform/logger"
	"github.com/yungbote/bookgraph/internal/platform/neo4jdb"
)

// cypherRunner is the part of neo4jdb.Client the store needs.
type cypherRunner interface {
	ExecuteQuery(ctx context.Context, cypher string, params map[string]any, write bool) ([]*neo4j.Record, error)
	Stream(ctx context.Context, cypher string, params map[string]any, fn func(*neo4j.Record) error) error
}

type Neo4jStore struct {
	run    cypherRunner
	closer func(ctx context.Context) error
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) (*Neo4jStore, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j client required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Neo4jStore{
		run:    client,
		closer: client.Close,
		log:    log.With("service", "Neo4jGraphStore"),
	}, nil
}

// EnsureSchema creates one uniqueness constraint per kind on its identifier property.
// Failures are logged and skipped: constraints back the MERGE upserts but are not required by them.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) {
	for _, kind := range domain.Kinds() {
		key := domain.IdentifierKey(kind)
		name := fmt.Sprintf("bookgraph_%s_%s_unique", strings.ToLower(string(kind)), key)
		q := fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			quoteIdent(name), quoteIdent(string(kind)), quoteIdent(key))
		if _, err := s.run.ExecuteQuery(ctx, q, nil, true); err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "kind", kind, "error", err)
		}
	}
}

func (s *Neo4jStore) UpsertNode(ctx context.Context, e domain.Entity) error {
	if err := validateEntity(e); err != nil {
		return err
	}
	key, value := domain.Identity(e)
	q := fmt.Sprintf("MERGE (n:%s {%s: $identity}) ON CREATE SET n += $props",
		quoteIdent(string(e.Kind())), quoteIdent(key))
	params := map[string]any{
		"identity": value,
		"props":    domain.PropertyMap(e),
	}
	if _, err := s.run.ExecuteQuery(ctx, q, params, true); err != nil {
		return fmt.Errorf("neo4j upsert node %s: %w", domain.RefOf(e), err)
	}
	return nil
}

func (s *Neo4jStore) UpsertEdge(ctx context.Context, from, to domain.Entity, label string) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if err := s.UpsertNode(ctx, from); err != nil {
		return err
	}
	if err := s.UpsertNode(ctx, to); err != nil {
		return err
	}
	fromKey, fromValue := domain.Identity(from)
	toKey, toValue := domain.Identity(to)
	q := fmt.Sprintf("MATCH (a:%s {%s: $from}), (b:%s {%s: $to}) MERGE (a)-[:%s]->(b)",
		quoteIdent(string(from.Kind())), quoteIdent(fromKey),
		quoteIdent(string(to.Kind())), quoteIdent(toKey),
		quoteIdent(label))
	params := map[string]any{"from": fromValue, "to": toValue}
	if _, err := s.run.ExecuteQuery(ctx, q, params, true); err != nil {
		return fmt.Errorf("neo4j upsert edge %s -[%s]-> %s: %w", domain.RefOf(from), label, domain.RefOf(to), err)
	}
	return nil
}

const exportTripletsQuery = `MATCH (h)-[r]->(t)
RETURN labels(h)[0] AS head_kind, coalesce(h.id, h.name) AS head_ident,
       type(r) AS label,
       labels(t)[0] AS tail_kind, coalesce(t.id, t.name) AS tail_ident`

func (s *Neo4jStore) ExportTriplets(ctx context.Context, fn func(domain.Triplet) error) error {
	err := s.run.Stream(ctx, exportTripletsQuery, nil, func(rec *neo4j.Record) error {
		t, ok := tripletFromRecord(rec)
		if !ok {
			s.log.Warn("Skipping edge without identifiable endpoints", "keys", rec.Keys, "values", rec.Values)
			return nil
		}
		return fn(t)
	})
	if err != nil {
		return fmt.Errorf("neo4j export triplets: %w", err)
	}
	return nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

func tripletFromRecord(rec *neo4j.Record) (domain.Triplet, bool) {
	str := func(key string) string {
		v, ok := rec.Get(key)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	headKind, headIdent := str("head_kind"), str("head_ident")
	tailKind, tailIdent := str("tail_kind"), str("tail_ident")
	label := str("label")
	if headKind == "" || headIdent == "" || tailKind == "" || tailIdent == "" || label == "" {
		return domain.Triplet{}, false
	}
	return domain.Triplet{
		Head:  domain.QualifiedID(domain.Kind(headKind), headIdent),
		Label: label,
		Tail:  domain.QualifiedID(domain.Kind(tailKind), tailIdent),
	}, true
}

// quoteIdent backtick-quotes a label, relationship type or property key so that
// data-derived names (including non-ASCII role labels) are safe to splice into Cypher.
func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
