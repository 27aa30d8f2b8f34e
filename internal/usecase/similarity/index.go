package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/smartstyle-cloud/styledex/internal/domain"
	"github.com/smartstyle-cloud/styledex/internal/domain/catalog"
)

// Neighbor is one ranked entry of a neighbor query.
type Neighbor struct {
	ID    string
	Score float64
}

// Index is a precomputed pairwise cosine-similarity structure over the
// embedding vectors of one catalog snapshot. Immutable once built; all
// queries are pure reads. Per-id rankings are computed lazily and cached.
type Index struct {
	ids []string
	pos map[string]int
	sim [][]float64

	mu     sync.Mutex
	ranked map[string][]Neighbor
}

// Build embeds every item's combined text once, in store id order, then
// computes the full pairwise cosine-similarity matrix. Fails with
// domain.ErrEmbeddingProviderError on any provider failure and with
// domain.ErrVectorDimMismatch when vectors within the build disagree on
// dimension. No partial index is retained on failure.
func Build(ctx context.Context, store *catalog.Store, embed domain.Embedder) (*Index, error) {
	items := store.All()

	ids := make([]string, len(items))
	vectors := make([][]float32, len(items))
	dim := -1

	for i, item := range items {
		res, err := embed.Embed(ctx, item.CombinedText())
		if err != nil {
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				err = fmt.Errorf("%v: %w", err, domain.ErrEmbeddingProviderError)
			}
			return nil, fmt.Errorf("embed item %q: %w", item.ID(), err)
		}
		if dim == -1 {
			dim = len(res.Embedding)
		}
		if len(res.Embedding) != dim {
			return nil, fmt.Errorf(
				"embed item %q: got dimension %d, want %d: %w",
				item.ID(), len(res.Embedding), dim, domain.ErrVectorDimMismatch,
			)
		}
		ids[i] = item.ID()
		vectors[i] = res.Embedding
	}

	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		sim[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := cosine(vectors[i], vectors[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}

	pos := make(map[string]int, n)
	for i, id := range ids {
		pos[id] = i
	}

	return &Index{
		ids:    ids,
		pos:    pos,
		sim:    sim,
		ranked: make(map[string][]Neighbor),
	}, nil
}

// cosine computes dot(a,b) / (norm(a)*norm(b)). A zero-norm operand yields 0
// rather than NaN so that orderings stay well-defined.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Size returns the number of indexed items.
func (x *Index) Size() int { return len(x.ids) }

// Similarity returns the cosine similarity between two indexed items.
func (x *Index) Similarity(a, b string) (float64, error) {
	i, ok := x.pos[a]
	if !ok {
		return 0, fmt.Errorf("similarity %q: %w", a, domain.ErrItemNotFound)
	}
	j, ok := x.pos[b]
	if !ok {
		return 0, fmt.Errorf("similarity %q: %w", b, domain.ErrItemNotFound)
	}
	return x.sim[i][j], nil
}

// Neighbors returns every other indexed item ordered by descending score,
// ties broken by ascending id. The item itself is always excluded. Rankings
// are cached per query id; the returned slice is shared and must be treated
// as read-only.
func (x *Index) Neighbors(id string) ([]Neighbor, error) {
	i, ok := x.pos[id]
	if !ok {
		return nil, fmt.Errorf("neighbors %q: %w", id, domain.ErrItemNotFound)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if cached, ok := x.ranked[id]; ok {
		return cached, nil
	}

	neighbors := make([]Neighbor, 0, len(x.ids)-1)
	for j, other := range x.ids {
		if j == i {
			continue
		}
		neighbors = append(neighbors, Neighbor{ID: other, Score: x.sim[i][j]})
	}

	// Explicit secondary key: float ties must not depend on iteration order.
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].Score != neighbors[b].Score {
			return neighbors[a].Score > neighbors[b].Score
		}
		return neighbors[a].ID < neighbors[b].ID
	})

	x.ranked[id] = neighbors
	return neighbors, nil
}
