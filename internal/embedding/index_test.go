package embedding

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	ids := []string{"Book/b1", "Topic/历史", "Book/b2", "Person/张三", "Book/b3", "Book/b4"}
	vectors := [][]float32{
		{0, 0},
		{0.1, 0},
		{1, 0},
		{0, 1.5},
		{2, 0},
		{0, 0},
	}
	idx, err := New(ids, vectors)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		vectors [][]float32
	}{
		{"length mismatch", []string{"a"}, [][]float32{{1}, {2}}},
		{"empty", nil, nil},
		{"zero dim", []string{"a"}, [][]float32{{}}},
		{"ragged", []string{"a", "b"}, [][]float32{{1, 2}, {1}}},
		{"duplicate", []string{"a", "a"}, [][]float32{{1}, {2}}},
		{"empty id", []string{""}, [][]float32{{1}}},
	}
	for _, tt := range tests {
		if _, err := New(tt.ids, tt.vectors); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
}

func TestNearestOrderAndSelfExclusion(t *testing.T) {
	idx := testIndex(t)
	got, err := idx.Nearest("Book/b1", 3)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	want := []string{"Book/b4", "Topic/历史", "Book/b2"}
	if len(got) != len(want) {
		t.Fatalf("len: want=%d got=%d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("rank %d: want=%s got=%s", i, want[i], got[i].ID)
		}
	}
	if got[0].Distance != 0 || got[2].Distance != 1 {
		t.Fatalf("distances: %v", got)
	}
}

func TestNearestClampsK(t *testing.T) {
	idx := testIndex(t)
	got, err := idx.Nearest("Book/b1", 100)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(got) != idx.Len()-1 {
		t.Fatalf("len: want=%d got=%d", idx.Len()-1, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Fatalf("not ascending at %d: %v", i, got)
		}
	}
}

func TestNearestTiesBrokenByRow(t *testing.T) {
	idx, err := New([]string{"q", "c", "a", "b"}, [][]float32{{0}, {1}, {1}, {-1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, _ := idx.Nearest("q", 3)
	if got[0].ID != "c" || got[1].ID != "a" || got[2].ID != "b" {
		t.Fatalf("tie order: %v", got)
	}
}

func TestNearestBooks(t *testing.T) {
	idx := testIndex(t)
	got, err := idx.NearestBooks("b1", 3)
	if err != nil {
		t.Fatalf("NearestBooks: %v", err)
	}
	// three nearest others are b4, Topic/历史, b2; the topic is filtered out
	if strings.Join(got, ",") != "b4,b2" {
		t.Fatalf("NearestBooks: got=%v", got)
	}
}

func TestNearestBooksUnknown(t *testing.T) {
	idx := testIndex(t)
	_, err := idx.NearestBooks("nope", 2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got=%v", err)
	}
	if !strings.Contains(err.Error(), "Book/nope") {
		t.Fatalf("error should carry the key: %v", err)
	}
}

func TestNearestBooksZeroK(t *testing.T) {
	idx := testIndex(t)
	got, err := idx.NearestBooks("b1", 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("want empty, got=%v err=%v", got, err)
	}
}

func TestNearestBooksNeverReturnsSelf(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n, dim = 200, 8
	ids := make([]string, n)
	vectors := make([][]float32, n)
	for i := range ids {
		if i%3 == 0 {
			ids[i] = fmt.Sprintf("Topic/t%d", i)
		} else {
			ids[i] = fmt.Sprintf("Book/b%d", i)
		}
		v := make([]float32, dim)
		for j := range v {
			v[j] = float32(rng.Intn(3))
		}
		vectors[i] = v
	}
	idx, err := New(ids, vectors)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 1; i < n; i += 3 {
		book := fmt.Sprintf("b%d", i)
		for _, k := range []int{1, 5, 50, 500} {
			got, err := idx.NearestBooks(book, k)
			if err != nil {
				t.Fatalf("NearestBooks(%s, %d): %v", book, k, err)
			}
			if len(got) > k {
				t.Fatalf("NearestBooks(%s, %d): %d results", book, k, len(got))
			}
			for _, id := range got {
				if id == book {
					t.Fatalf("NearestBooks(%s, %d) returned itself", book, k)
				}
			}
		}
	}
}

func TestSearchDimension(t *testing.T) {
	idx := testIndex(t)
	if _, err := idx.Search([]float32{1}, 1); err == nil {
		t.Fatalf("expected dimension error")
	}
	got, err := idx.Search([]float32{2, 0}, 1)
	if err != nil || len(got) != 1 || got[0].ID != "Book/b3" {
		t.Fatalf("Search: got=%v err=%v", got, err)
	}
}

func TestVectorReturnsCopy(t *testing.T) {
	idx := testIndex(t)
	v, ok := idx.Vector("Book/b2")
	if !ok || v[0] != 1 {
		t.Fatalf("Vector: %v %v", v, ok)
	}
	v[0] = 42
	again, _ := idx.Vector("Book/b2")
	if again[0] != 1 {
		t.Fatalf("index mutated through returned vector")
	}
}
