package ports

// Neighbor is a vocabulary word with its cosine similarity to a query word.
type Neighbor struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// WordEmbedding is a read-only word vector index.
type WordEmbedding interface {
	Dim() int
	Vector(word string) ([]float64, bool)
	// Similarity returns the cosine similarity of two words; ok is false if either is unknown.
	Similarity(a, b string) (sim float64, ok bool)
	// Nearest returns up to k neighbours of word ordered by decreasing similarity, excluding word itself.
	Nearest(word string, k int) []Neighbor
}
