package embedding

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/yungbote/bookgraph/internal/platform/artifact"
	"github.com/yungbote/bookgraph/internal/platform/logger"
)

// LoadIDs reads an entities.tsv file: one row per line, the qualified id in the second
// tab-separated column. Blank lines are ignored.
func LoadIDs(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var ids []string
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < 2 || cols[1] == "" {
			return nil, fmt.Errorf("entities line %d: want <row>\\t<id>, got %q", line, text)
		}
		ids = append(ids, cols[1])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("entities read: %w", err)
	}
	return ids, nil
}

// LoadVectors reads a 2-D float32 or float64 .npy array into rows.
func LoadVectors(r io.Reader) ([][]float32, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("npy header: %w", err)
	}
	shape := nr.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("npy: want 2-D array, got shape %v", shape)
	}
	if nr.Header.Descr.Fortran {
		return nil, fmt.Errorf("npy: fortran-order arrays are not supported")
	}
	rows, cols := shape[0], shape[1]

	var flat []float32
	switch nr.Header.Descr.Type {
	case "<f4", "f4":
		if err := nr.Read(&flat); err != nil {
			return nil, fmt.Errorf("npy read: %w", err)
		}
	case "<f8", "f8":
		var wide []float64
		if err := nr.Read(&wide); err != nil {
			return nil, fmt.Errorf("npy read: %w", err)
		}
		flat = make([]float32, len(wide))
		for i, v := range wide {
			flat[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("npy: unsupported dtype %q (want <f4 or <f8)", nr.Header.Descr.Type)
	}
	if len(flat) != rows*cols {
		return nil, fmt.Errorf("npy: read %d values for shape %v", len(flat), shape)
	}

	out := make([][]float32, rows)
	for i := range out {
		out[i] = flat[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return out, nil
}

// LoadIndex opens both artifacts through opener and builds the index.
func LoadIndex(ctx context.Context, log *logger.Logger, opener artifact.Opener, idsPath, vectorsPath string) (*Index, error) {
	if log == nil {
		log = logger.Nop()
	}
	ids, err := withArtifact(ctx, opener, idsPath, LoadIDs)
	if err != nil {
		return nil, err
	}
	vectors, err := withArtifact(ctx, opener, vectorsPath, LoadVectors)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("embedding artifacts disagree: %s has %d ids, %s has %d rows", idsPath, len(ids), vectorsPath, len(vectors))
	}
	idx, err := New(ids, vectors)
	if err != nil {
		return nil, err
	}
	log.Info("Embedding index loaded", "rows", idx.Len(), "dim", idx.Dim(), "ids", idsPath, "vectors", vectorsPath)
	return idx, nil
}

func withArtifact[T any](ctx context.Context, opener artifact.Opener, location string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := opener.Open(ctx, location)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	v, err := read(bufio.NewReader(rc))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", location, err)
	}
	return v, nil
}
