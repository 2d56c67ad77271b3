package graph

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/bookgraph/internal/domain"
	"github.com/yungbote/bookgraph/internal/platform/gremlindb"
	"github.com/yungbote/bookgraph/internal/platform/logger"
	"github.com/yungbote/bookgraph/internal/platform/neo4jdb"
)

func TestNeo4jStoreIntegration(t *testing.T) {
	if strings.TrimSpace(os.Getenv("NEO4J_INTEGRATION")) != "1" {
		t.Skip("set NEO4J_INTEGRATION=1 to run")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := neo4jdb.New(ctx, logger.Nop(), neo4jdb.Config{
		URI:      os.Getenv("NEO4J_URI"),
		User:     os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
	})
	if err != nil {
		t.Fatalf("neo4jdb.New: %v", err)
	}
	store, err := NewNeo4jStore(client, logger.Nop())
	if err != nil {
		t.Fatalf("NewNeo4jStore: %v", err)
	}
	defer store.Close(ctx)
	store.EnsureSchema(ctx)

	suffix := time.Now().UTC().Format("20060102150405.000000000")
	exerciseStore(t, ctx, store, suffix)
}

func TestGremlinStoreIntegration(t *testing.T) {
	if strings.TrimSpace(os.Getenv("GREMLIN_INTEGRATION")) != "1" {
		t.Skip("set GREMLIN_INTEGRATION=1 to run")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gremlindb.New(logger.Nop(), gremlindb.Config{URL: os.Getenv("GREMLIN_URL")})
	if err != nil {
		t.Fatalf("gremlindb.New: %v", err)
	}
	store, err := NewGremlinStore(client, logger.Nop())
	if err != nil {
		t.Fatalf("NewGremlinStore: %v", err)
	}
	defer store.Close(ctx)

	suffix := time.Now().UTC().Format("20060102150405.000000000")
	exerciseStore(t, ctx, store, suffix)
}

// exerciseStore writes everything twice. Edge uniqueness is checked through the
// exporter when the backend has one.
func exerciseStore(t *testing.T, ctx context.Context, s Store, suffix string) {
	t.Helper()
	book := domain.Book{ID: "it-book-" + suffix, Name: "红楼梦"}
	person := domain.Person{Name: "曹雪芹-" + suffix, Country: "清"}
	for i := 0; i < 2; i++ {
		if err := s.UpsertNode(ctx, book); err != nil {
			t.Fatalf("UpsertNode: %v", err)
		}
		if err := s.UpsertEdge(ctx, person, book, "主编"); err != nil {
			t.Fatalf("UpsertEdge: %v", err)
		}
	}
	exp, ok := s.(TripletExporter)
	if !ok {
		return
	}
	count := 0
	err := exp.ExportTriplets(ctx, func(tr domain.Triplet) error {
		if tr.Head == domain.QualifiedID(domain.KindPerson, person.Name) && tr.Tail == domain.QualifiedID(domain.KindBook, book.ID) && tr.Label == "主编" {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ExportTriplets: %v", err)
	}
	if count != 1 {
		t.Fatalf("edge count: want=1 got=%d", count)
	}
}
