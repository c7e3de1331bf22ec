package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"cinechat/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Documents are keyed by ID; re-upserting an ID replaces it.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	docs      []domain.IndexedDocument
	byID      map[string]int
}

func NewStorage() *Storage { return &Storage{byID: make(map[string]int)} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.docs = nil
	s.byID = make(map[string]int)
	return nil
}

func (s *Storage) Upsert(_ context.Context, docs []domain.IndexedDocument, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return errors.New("documents and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i, d := range docs {
		if j, ok := s.byID[d.ID]; ok {
			s.docs[j] = d
			s.vectors[j] = vectors[i]
			continue
		}
		s.byID[d.ID] = len(s.docs)
		s.docs = append(s.docs, d)
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float32, topK int, filter *domain.Filter) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 4
	}
	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(s.docs))
	for i := range s.docs {
		if !filter.Match(s.docs[i].Metadata) {
			continue
		}
		candidates = append(candidates, scored{i, cosine(s.vectors[i], vector)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]domain.RetrievalResult, 0, topK)
	for _, c := range candidates[:topK] {
		results = append(results, domain.RetrievalResult{Document: s.docs[c.idx], Score: c.score})
	}
	return results, nil
}

func (s *Storage) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *Storage) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.docs = nil
	s.byID = make(map[string]int)
	return nil
}

func (s *Storage) Close() error { return nil }

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
