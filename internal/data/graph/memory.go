package graph

import (
	"context"
	"sort"
	"sync"

	"github.com/yungbote/bookgraph/internal/domain"
)

type memoryEdge struct {
	from  domain.Ref
	to    domain.Ref
	label string
}

// MemoryStore keeps the graph in process. It is used for dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[domain.Ref]map[string]any
	edges map[memoryEdge]struct{}
	order []memoryEdge
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: map[domain.Ref]map[string]any{},
		edges: map[memoryEdge]struct{}{},
	}
}

func (m *MemoryStore) UpsertNode(_ context.Context, e domain.Entity) error {
	if err := validateEntity(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertNodeLocked(e)
	return nil
}

func (m *MemoryStore) UpsertEdge(_ context.Context, from, to domain.Entity, label string) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	if err := validateEntity(from); err != nil {
		return err
	}
	if err := validateEntity(to); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertNodeLocked(from)
	m.upsertNodeLocked(to)
	key := memoryEdge{from: domain.RefOf(from), to: domain.RefOf(to), label: label}
	if _, ok := m.edges[key]; ok {
		return nil
	}
	m.edges[key] = struct{}{}
	m.order = append(m.order, key)
	return nil
}

func (m *MemoryStore) upsertNodeLocked(e domain.Entity) {
	ref := domain.RefOf(e)
	if _, ok := m.nodes[ref]; ok {
		return
	}
	m.nodes[ref] = domain.PropertyMap(e)
}

// Node returns a copy of the stored attributes of ref.
func (m *MemoryStore) Node(ref domain.Ref) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	props, ok := m.nodes[ref]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out, true
}

func (m *MemoryStore) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

func (m *MemoryStore) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

// Refs lists stored node refs sorted by qualified identifier.
func (m *MemoryStore) Refs() []domain.Ref {
	m.mu.RLock()
	out := make([]domain.Ref, 0, len(m.nodes))
	for ref := range m.nodes {
		out = append(out, ref)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ExportTriplets yields edges in insertion order.
func (m *MemoryStore) ExportTriplets(ctx context.Context, fn func(domain.Triplet) error) error {
	m.mu.RLock()
	edges := append([]memoryEdge(nil), m.order...)
	m.mu.RUnlock()
	for _, e := range edges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(domain.Triplet{Head: e.from.String(), Label: e.label, Tail: e.to.String()}); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }
