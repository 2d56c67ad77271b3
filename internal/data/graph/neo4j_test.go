package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/bookgraph/internal/domain"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

type recordedQuery struct {
	cypher string
	params map[string]any
	write  bool
}

type fakeRunner struct {
	queries []recordedQuery
	records []*neo4j.Record
	failOn  string
	err     error
}

func (f *fakeRunner) ExecuteQuery(_ context.Context, cypher string, params map[string]any, write bool) ([]*neo4j.Record, error) {
	f.queries = append(f.queries, recordedQuery{cypher: cypher, params: params, write: write})
	if f.failOn != "" && strings.Contains(cypher, f.failOn) {
		return nil, f.err
	}
	return nil, nil
}

func (f *fakeRunner) Stream(_ context.Context, cypher string, params map[string]any, fn func(*neo4j.Record) error) error {
	f.queries = append(f.queries, recordedQuery{cypher: cypher, params: params})
	for _, rec := range f.records {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func newTestNeo4jStore(r *fakeRunner) *Neo4jStore {
	return &Neo4jStore{run: r, log: logger.Nop()}
}

func TestNeo4jUpsertNodeUsesMerge(t *testing.T) {
	r := &fakeRunner{}
	s := newTestNeo4jStore(r)

	err := s.UpsertNode(context.Background(), domain.Person{Name: "刘孝标", Country: "南朝梁"})
	if err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	if len(r.queries) != 1 {
		t.Fatalf("queries: want=1 got=%d", len(r.queries))
	}
	q := r.queries[0]
	want := "MERGE (n:`Person` {`name`: $identity}) ON CREATE SET n += $props"
	if q.cypher != want {
		t.Fatalf("cypher:\nwant=%s\ngot =%s", want, q.cypher)
	}
	if !q.write {
		t.Fatalf("expected write routing")
	}
	if q.params["identity"] != "刘孝标" {
		t.Fatalf("identity: got=%v", q.params["identity"])
	}
	props := q.params["props"].(map[string]any)
	if props["country"] != "南朝梁" || props["name"] != "刘孝标" {
		t.Fatalf("props: got=%v", props)
	}
}

func TestNeo4jUpsertNodeOmitsMissingOptional(t *testing.T) {
	r := &fakeRunner{}
	s := newTestNeo4jStore(r)
	if err := s.UpsertNode(context.Background(), domain.Person{Name: "龚斌"}); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	props := r.queries[0].params["props"].(map[string]any)
	if _, ok := props["country"]; ok {
		t.Fatalf("country should be omitted, got=%v", props)
	}
}

func TestNeo4jUpsertEdgeQuotesLabel(t *testing.T) {
	r := &fakeRunner{}
	s := newTestNeo4jStore(r)

	err := s.UpsertEdge(context.Background(), domain.Person{Name: "龚斌"}, domain.Book{ID: "b1", Name: "世说新语"}, "主编")
	if err != nil {
		t.Fatalf("UpsertEdge: %v", err)
	}
	if len(r.queries) != 3 {
		t.Fatalf("queries: want=3 got=%d", len(r.queries))
	}
	if !strings.Contains(r.queries[0].cypher, "`Person`") || !strings.Contains(r.queries[1].cypher, "`Book` {`id`") {
		t.Fatalf("endpoint upserts out of order: %q / %q", r.queries[0].cypher, r.queries[1].cypher)
	}
	edge := r.queries[2]
	want := "MATCH (a:`Person` {`name`: $from}), (b:`Book` {`id`: $to}) MERGE (a)-[:`主编`]->(b)"
	if edge.cypher != want {
		t.Fatalf("cypher:\nwant=%s\ngot =%s", want, edge.cypher)
	}
	if edge.params["from"] != "龚斌" || edge.params["to"] != "b1" {
		t.Fatalf("params: got=%v", edge.params)
	}
}

func TestNeo4jUpsertEdgeRejectsEmptyLabel(t *testing.T) {
	r := &fakeRunner{}
	s := newTestNeo4jStore(r)
	err := s.UpsertEdge(context.Background(), domain.Topic{Name: "历史"}, domain.Book{ID: "b1"}, " ")
	if !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("want ErrInvalidLabel, got=%v", err)
	}
	if len(r.queries) != 0 {
		t.Fatalf("no query expected, got=%d", len(r.queries))
	}
}

func TestNeo4jUpsertEdgeStopsOnEndpointFailure(t *testing.T) {
	boom := errors.New("connection reset")
	r := &fakeRunner{failOn: "`Publisher`", err: boom}
	s := newTestNeo4jStore(r)
	err := s.UpsertEdge(context.Background(), domain.Publisher{ID: "p1", Name: "中华书局"}, domain.Book{ID: "b1"}, domain.LabelPublish)
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped backend error, got=%v", err)
	}
	if !strings.Contains(err.Error(), "Publisher/p1") {
		t.Fatalf("error should name the entity: %v", err)
	}
	if len(r.queries) != 1 {
		t.Fatalf("queries: want=1 got=%d", len(r.queries))
	}
}

func TestNeo4jEnsureSchemaIsBestEffort(t *testing.T) {
	r := &fakeRunner{failOn: "`Topic`", err: errors.New("unsupported")}
	s := newTestNeo4jStore(r)
	s.EnsureSchema(context.Background())
	if len(r.queries) != len(domain.Kinds()) {
		t.Fatalf("constraints: want=%d got=%d", len(domain.Kinds()), len(r.queries))
	}
	for _, q := range r.queries {
		if !strings.HasPrefix(q.cypher, "CREATE CONSTRAINT") || !strings.Contains(q.cypher, "IS UNIQUE") {
			t.Fatalf("unexpected schema query: %s", q.cypher)
		}
	}
}

func TestNeo4jExportTriplets(t *testing.T) {
	keys := []string{"head_kind", "head_ident", "label", "tail_kind", "tail_ident"}
	r := &fakeRunner{records: []*neo4j.Record{
		{Keys: keys, Values: []any{"Person", "龚斌", "主编", "Book", "b1"}},
		{Keys: keys, Values: []any{"Book", "b1", "IS_IN_SERIES", "BookSeries", "上卷/精装"}},
		{Keys: keys, Values: []any{"Book", nil, "HAS_TOPIC", "Topic", "历史"}},
	}}
	s := newTestNeo4jStore(r)

	var got []domain.Triplet
	err := s.ExportTriplets(context.Background(), func(tr domain.Triplet) error {
		got = append(got, tr)
		return nil
	})
	if err != nil {
		t.Fatalf("ExportTriplets: %v", err)
	}
	want := []domain.Triplet{
		{Head: "Person/龚斌", Label: "主编", Tail: "Book/b1"},
		{Head: "Book/b1", Label: "IS_IN_SERIES", Tail: "BookSeries/上卷/精装"},
	}
	if len(got) != len(want) {
		t.Fatalf("triplets: want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("triplet %d: want=%v got=%v", i, want[i], got[i])
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent("a`b"); got != "`a``b`" {
		t.Fatalf("quoteIdent: got=%s", got)
	}
}
