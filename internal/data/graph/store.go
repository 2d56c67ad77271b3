package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/bookgraph/internal/domain"
)

// Store is the idempotent write surface every graph backend implements.
// UpsertNode creates a node keyed by (kind, identifier) unless it already exists and never
// modifies an existing one. UpsertEdge upserts both endpoints and then creates the
// (from, to, label) edge only if it is absent.
type Store interface {
	UpsertNode(ctx context.Context, e domain.Entity) error
	UpsertEdge(ctx context.Context, from, to domain.Entity, label string) error
	Close(ctx context.Context) error
}

// TripletExporter streams every edge as a (head, label, tail) triplet of qualified identifiers.
type TripletExporter interface {
	ExportTriplets(ctx context.Context, fn func(domain.Triplet) error) error
}

type Backend string

const (
	BackendNeo4j   Backend = "neo4j"
	BackendGremlin Backend = "gremlin"
	BackendMemory  Backend = "memory"
)

func ParseBackend(raw string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(raw))); b {
	case BackendNeo4j, BackendGremlin, BackendMemory:
		return b, nil
	case "":
		return BackendNeo4j, nil
	default:
		return "", fmt.Errorf("unknown graph backend %q (want neo4j, gremlin or memory)", raw)
	}
}

var (
	ErrInvalidLabel  = errors.New("relation label required")
	ErrInvalidEntity = errors.New("entity identifier required")
)

func validateEntity(e domain.Entity) error {
	if e == nil {
		return ErrInvalidEntity
	}
	if _, v := domain.Identity(e); strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidEntity, e.Kind())
	}
	return nil
}

func validateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return ErrInvalidLabel
	}
	return nil
}
