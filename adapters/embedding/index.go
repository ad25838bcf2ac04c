// Package embedding loads word vectors in the fastText/word2vec text format and answers
// similarity and nearest-neighbour queries over them.
package embedding

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ulikunitz/xz"
	"gonum.org/v1/gonum/floats"

	"textattack/domain/core"
	"textattack/ports"
)

// Index is an in-memory, read-only word vector table. Vectors are stored unit-normalized,
// so cosine similarity is a dot product.
type Index struct {
	dim     int
	words   []string
	unit    [][]float64
	raw     [][]float64
	lookup  map[string]int
	mu      sync.RWMutex
	nearest map[string][]ports.Neighbor
}

var _ ports.WordEmbedding = (*Index)(nil)

// New builds an index from explicit vectors. All vectors must share one non-zero dimension.
func New(vectors map[string][]float64) (*Index, error) {
	words := make([]string, 0, len(vectors))
	for w := range vectors {
		words = append(words, w)
	}
	sort.Strings(words)

	idx := newIndex()
	for _, w := range words {
		if err := idx.add(w, vectors[w]); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func newIndex() *Index {
	return &Index{lookup: map[string]int{}, nearest: map[string][]ports.Neighbor{}}
}

// LoadFile reads a .vec file, transparently decompressing .gz and .xz.
// A missing or unreadable file is a resource error.
func LoadFile(ctx context.Context, path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewResourceError("word embedding "+path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, core.NewResourceError("word embedding "+path, fmt.Errorf("gzip error: %w", err))
		}
		defer gr.Close()
		reader = gr
	} else if strings.HasSuffix(lower, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, core.NewResourceError("word embedding "+path, fmt.Errorf("xz error: %w", err))
		}
		reader = xr
	}

	idx, err := Parse(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return idx, nil
}

// Parse reads the text vector format: an optional "<count> <dim>" header line, then one
// word per line followed by its components.
func Parse(ctx context.Context, r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	idx := newIndex()
	line := 0
	for scanner.Scan() {
		line++
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				continue
			}
		}

		vec := make([]float64, len(fields)-1)
		for i, s := range fields[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, core.NewResourceError("word embedding", fmt.Errorf("line %d: %w", line, err))
			}
			vec[i] = v
		}
		if err := idx.add(fields[0], vec); err != nil {
			return nil, core.NewResourceError("word embedding", fmt.Errorf("line %d: %w", line, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewResourceError("word embedding", err)
	}
	return idx, nil
}

func (x *Index) add(word string, vec []float64) error {
	if len(vec) == 0 {
		return fmt.Errorf("word %q has no components", word)
	}
	if x.dim == 0 {
		x.dim = len(vec)
	} else if len(vec) != x.dim {
		return fmt.Errorf("word %q has %d components, expected %d", word, len(vec), x.dim)
	}
	if _, dup := x.lookup[word]; dup {
		return nil
	}

	unit := make([]float64, len(vec))
	copy(unit, vec)
	if n := floats.Norm(unit, 2); n > 0 {
		floats.Scale(1/n, unit)
	}
	x.lookup[word] = len(x.words)
	x.words = append(x.words, word)
	x.raw = append(x.raw, vec)
	x.unit = append(x.unit, unit)
	return nil
}

func (x *Index) Dim() int { return x.dim }

// Len returns the vocabulary size.
func (x *Index) Len() int { return len(x.words) }

// Vector returns a copy of the stored vector for word.
func (x *Index) Vector(word string) ([]float64, bool) {
	i, ok := x.lookup[word]
	if !ok {
		return nil, false
	}
	out := make([]float64, x.dim)
	copy(out, x.raw[i])
	return out, true
}

func (x *Index) Similarity(a, b string) (float64, bool) {
	i, ok := x.lookup[a]
	if !ok {
		return 0, false
	}
	j, ok := x.lookup[b]
	if !ok {
		return 0, false
	}
	return floats.Dot(x.unit[i], x.unit[j]), true
}

// Nearest scans the whole vocabulary. Results are cached per word for the largest k asked so far.
func (x *Index) Nearest(word string, k int) []ports.Neighbor {
	i, ok := x.lookup[word]
	if !ok || k <= 0 {
		return nil
	}

	x.mu.RLock()
	cached, hit := x.nearest[word]
	x.mu.RUnlock()
	if hit && (len(cached) >= k || len(cached) == len(x.words)-1) {
		return append([]ports.Neighbor(nil), cached[:min(k, len(cached))]...)
	}

	all := make([]ports.Neighbor, 0, len(x.words)-1)
	for j, w := range x.words {
		if j == i {
			continue
		}
		all = append(all, ports.Neighbor{Word: w, Similarity: floats.Dot(x.unit[i], x.unit[j])})
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Similarity > all[b].Similarity })
	if len(all) > k {
		all = all[:k]
	}

	x.mu.Lock()
	x.nearest[word] = all
	x.mu.Unlock()
	return append([]ports.Neighbor(nil), all...)
}
