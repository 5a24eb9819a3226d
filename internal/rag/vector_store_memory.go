package rag

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryVectorStore 内存向量存储
// 用于开发与测试环境，不跨进程持久化。
type MemoryVectorStore struct {
	mu     sync.RWMutex
	chunks []VectorChunk
}

// NewMemoryVectorStore 创建内存向量存储
func NewMemoryVectorStore() *MemoryVectorStore {
	return &MemoryVectorStore{}
}

func (s *MemoryVectorStore) InsertChunks(ctx context.Context, chunks []VectorChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// 整批追加，同一文档的分块要么全部可见要么全部不可见
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func (s *MemoryVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	queryNorm := vectorNorm(req.QueryEmbedding)
	if queryNorm == 0 {
		return []SearchMatch{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchMatch, 0, req.Limit)
	for _, chunk := range s.chunks {
		if req.DocumentID != "" && chunk.DocumentID != req.DocumentID {
			continue
		}
		results = append(results, SearchMatch{
			DocumentID: chunk.DocumentID,
			Page:       chunk.Page,
			Text:       chunk.Text,
			Score:      cosineSimilarity(req.QueryEmbedding, chunk.Embedding, queryNorm),
		})
	}

	sortMatchesByScore(results)
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func (s *MemoryVectorStore) Ready() bool {
	return true
}

// Len 返回已存储的分块数量
func (s *MemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func sortMatchesByScore(matches []SearchMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func cosineSimilarity(a, b []float32, normA float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) != len(b) {
		minLen := len(a)
		if len(b) < minLen {
			minLen = len(b)
		}
		a = a[:minLen]
		b = b[:minLen]
	}

	var dot float64
	var normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * math.Sqrt(normB))
}
