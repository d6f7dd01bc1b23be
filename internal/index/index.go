// Package index holds the in-process embedding index: one vector per dataset
// record, searched by exact cosine similarity. An index is immutable once
// built; a stale index is rebuilt from a fresh snapshot, never patched.
package index

import (
	"math"
	"sort"
)

// Entry pairs a record's position in its snapshot with its embedding vector.
type Entry struct {
	RecordID int
	Vector   []float32
}

// Hit is one search result, ordered by descending similarity.
type Hit struct {
	RecordID int
	Score    float64
}

// Index is a searchable set of embeddings built from one dataset snapshot.
// Hash and EmbedModel identify the snapshot and model the vectors came from;
// both are verified before a persisted index is trusted.
type Index struct {
	Hash       string
	EmbedModel string
	Dim        int
	Entries    []Entry
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.Entries)
}

// Search returns the k entries nearest the query vector by cosine similarity,
// most similar first. k is clamped to the index size.
func (ix *Index) Search(query []float32, k int) []Hit {
	if k <= 0 || len(ix.Entries) == 0 {
		return nil
	}
	if k > len(ix.Entries) {
		k = len(ix.Entries)
	}

	hits := make([]Hit, len(ix.Entries))
	for i, e := range ix.Entries {
		hits[i] = Hit{RecordID: e.RecordID, Score: cosineSimilarity(query, e.Vector)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].RecordID < hits[j].RecordID
	})

	return hits[:k]
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
