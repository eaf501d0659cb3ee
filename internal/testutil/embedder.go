package testutil

import (
	"context"
	"hash/fnv"
	"math"
)

// EmbedDimension matches the vector columns in the schema.
const EmbedDimension = 768

// Embedder produces deterministic pseudo-embeddings without network
// calls. Identical texts always map to identical vectors, so exact
// matches rank at distance zero; beyond that the geometry carries no
// semantic meaning.
type Embedder struct{}

func (Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		h := fnv.New64a()
		_, _ = h.Write([]byte(text))
		seed := h.Sum64()

		vec := make([]float32, EmbedDimension)
		var norm float64
		for j := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			v := float32(int32(seed>>33)) / float32(math.MaxInt32)
			vec[j] = v
			norm += float64(v) * float64(v)
		}
		// Normalize so cosine distance behaves.
		n := float32(math.Sqrt(norm))
		for j := range vec {
			vec[j] /= n
		}
		out[i] = vec
	}
	return out, nil
}
