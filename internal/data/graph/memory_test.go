package graph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/bookgraph/internal/domain"
)

func TestMemoryUpsertNodeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	for i := 0; i < 3; i++ {
		if err := m.UpsertNode(ctx, domain.Book{ID: "b1", Name: "红楼梦"}); err != nil {
			t.Fatalf("UpsertNode: %v", err)
		}
	}
	if m.NodeCount() != 1 {
		t.Fatalf("nodes: want=1 got=%d", m.NodeCount())
	}
}

func TestMemoryUpsertNodeNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.UpsertNode(ctx, domain.Book{ID: "b1", Name: "红楼梦"})
	_ = m.UpsertNode(ctx, domain.Book{ID: "b1", Name: "石头记"})
	props, ok := m.Node(domain.Ref{Kind: domain.KindBook, Value: "b1"})
	if !ok {
		t.Fatalf("node missing")
	}
	if props["name"] != "红楼梦" {
		t.Fatalf("name: want=%q got=%v", "红楼梦", props["name"])
	}
}

func TestMemoryUpsertEdgeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	person := domain.Person{Name: "张三"}
	book := domain.Book{ID: "b1", Name: "红楼梦"}
	for i := 0; i < 3; i++ {
		if err := m.UpsertEdge(ctx, person, book, domain.LabelWrite); err != nil {
			t.Fatalf("UpsertEdge: %v", err)
		}
	}
	if m.NodeCount() != 2 || m.EdgeCount() != 1 {
		t.Fatalf("want 2 nodes / 1 edge, got %d / %d", m.NodeCount(), m.EdgeCount())
	}
	if err := m.UpsertEdge(ctx, person, book, "主编"); err != nil {
		t.Fatalf("UpsertEdge: %v", err)
	}
	if m.EdgeCount() != 2 {
		t.Fatalf("distinct labels coexist: want=2 got=%d", m.EdgeCount())
	}
}

func TestMemoryConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.UpsertEdge(ctx, domain.Topic{Name: "历史"}, domain.Book{ID: "b1"}, domain.LabelHasTopic)
		}()
	}
	wg.Wait()
	if m.NodeCount() != 2 || m.EdgeCount() != 1 {
		t.Fatalf("want 2 nodes / 1 edge, got %d / %d", m.NodeCount(), m.EdgeCount())
	}
}

func TestMemoryRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.UpsertNode(ctx, domain.Book{}); !errors.Is(err, ErrInvalidEntity) {
		t.Fatalf("want ErrInvalidEntity, got=%v", err)
	}
	if err := m.UpsertEdge(ctx, domain.Topic{Name: "x"}, domain.Book{ID: "b"}, ""); !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("want ErrInvalidLabel, got=%v", err)
	}
	if m.NodeCount() != 0 {
		t.Fatalf("nothing should be stored, got=%d", m.NodeCount())
	}
}

func TestMemoryExportTriplets(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.UpsertEdge(ctx, domain.Publisher{ID: "p1"}, domain.Book{ID: "b1"}, domain.LabelPublish)
	_ = m.UpsertEdge(ctx, domain.Book{ID: "b1"}, domain.CNCategory{ID: "I242"}, domain.LabelIsInCNCategory)
	_ = m.UpsertEdge(ctx, domain.Publisher{ID: "p1"}, domain.Book{ID: "b1"}, domain.LabelPublish)

	var got []domain.Triplet
	if err := m.ExportTriplets(ctx, func(tr domain.Triplet) error {
		got = append(got, tr)
		return nil
	}); err != nil {
		t.Fatalf("ExportTriplets: %v", err)
	}
	want := []domain.Triplet{
		{Head: "Publisher/p1", Label: "PUBLISH", Tail: "Book/b1"},
		{Head: "Book/b1", Label: "IS_IN_CN_CATEGORY", Tail: "CNCategory/I242"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("triplets: want=%v got=%v", want, got)
	}
}

func TestParseBackend(t *testing.T) {
	tests := map[string]Backend{"": BackendNeo4j, "Neo4j": BackendNeo4j, " gremlin ": BackendGremlin, "memory": BackendMemory}
	for in, want := range tests {
		got, err := ParseBackend(in)
		if err != nil || got != want {
			t.Fatalf("ParseBackend(%q): want=%s got=%s err=%v", in, want, got, err)
		}
	}
	if _, err := ParseBackend("janus"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
