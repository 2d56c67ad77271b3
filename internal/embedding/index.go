package embedding

import (
	"container/heap"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/bookgraph/internal/domain"
)

var ErrNotFound = errors.New("embedding not found")

var bookPrefix = string(domain.KindBook) + "/"

// Neighbor is one search result. Distance is the squared L2 distance.
type Neighbor struct {
	ID       string
	Distance float32
}

// Index is an exact L2 index over row-aligned ids and vectors. It is immutable
// after New and safe for concurrent queries.
type Index struct {
	ids  []string
	pos  map[string]int
	dim  int
	data []float32
}

func New(ids []string, vectors [][]float32) (*Index, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("embedding: %d ids but %d vectors", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("embedding: empty index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("embedding: zero dimension")
	}
	idx := &Index{
		ids:  make([]string, len(ids)),
		pos:  make(map[string]int, len(ids)),
		dim:  dim,
		data: make([]float32, 0, len(ids)*dim),
	}
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("embedding: empty id at row %d", i)
		}
		if prev, dup := idx.pos[id]; dup {
			return nil, fmt.Errorf("embedding: duplicate id %q at rows %d and %d", id, prev, i)
		}
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("embedding: row %d has dimension %d, want %d", i, len(vectors[i]), dim)
		}
		idx.ids[i] = id
		idx.pos[id] = i
		idx.data = append(idx.data, vectors[i]...)
	}
	return idx, nil
}

func (x *Index) Len() int { return len(x.ids) }
func (x *Index) Dim() int { return x.dim }

func (x *Index) Contains(id string) bool {
	_, ok := x.pos[id]
	return ok
}

// Vector returns a copy of the embedding stored for id.
func (x *Index) Vector(id string) ([]float32, bool) {
	i, ok := x.pos[id]
	if !ok {
		return nil, false
	}
	return append([]float32(nil), x.row(i)...), true
}

// Nearest returns up to k rows closest to the row stored under id, nearest first,
// ties broken by row order. The query row itself is never returned.
func (x *Index) Nearest(id string, k int) ([]Neighbor, error) {
	i, ok := x.pos[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return x.search(x.row(i), k, i), nil
}

// Search returns up to k rows closest to q. q must have the index dimension.
func (x *Index) Search(q []float32, k int) ([]Neighbor, error) {
	if len(q) != x.dim {
		return nil, fmt.Errorf("embedding: query dimension %d, want %d", len(q), x.dim)
	}
	return x.search(q, k, -1), nil
}

// NearestBooks returns ids of books related to bookID. It asks for k+1 neighbors with the
// query row counted first, drops it, keeps Book entries and strips their prefix, so the
// result holds at most k ids and may hold fewer.
func (x *Index) NearestBooks(bookID string, k int) ([]string, error) {
	key := bookPrefix + bookID
	i, ok := x.pos[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if k <= 0 {
		return []string{}, nil
	}
	neighbors := x.search(x.row(i), k, i)
	out := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		if rest, ok := strings.CutPrefix(n.ID, bookPrefix); ok {
			out = append(out, rest)
		}
	}
	return out, nil
}

func (x *Index) row(i int) []float32 {
	return x.data[i*x.dim : (i+1)*x.dim]
}

func (x *Index) search(q []float32, k int, exclude int) []Neighbor {
	if k <= 0 {
		return []Neighbor{}
	}
	h := make(maxHeap, 0, k+1)
	for i := range x.ids {
		if i == exclude {
			continue
		}
		c := candidate{row: i, dist: squaredL2(q, x.row(i))}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		if c.less(h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}
	out := make([]Neighbor, len(h))
	for j := len(h) - 1; j >= 0; j-- {
		c := heap.Pop(&h).(candidate)
		out[j] = Neighbor{ID: x.ids[c.row], Distance: c.dist}
	}
	return out
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

type candidate struct {
	row  int
	dist float32
}

// less orders by distance, then by row.
func (c candidate) less(o candidate) bool {
	if c.dist != o.dist {
		return c.dist < o.dist
	}
	return c.row < o.row
}

// maxHeap keeps the worst kept candidate at the root.
type maxHeap []candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[j].less(h[i]) }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(v any)        { *h = append(*h, v.(candidate)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
