package rag

import "context"

// VectorChunk 待入库的分块向量
type VectorChunk struct {
	DocumentID string
	Page       int
	Text       string
	Embedding  []float32
}

// VectorSearchRequest 向量检索请求
type VectorSearchRequest struct {
	QueryEmbedding []float32
	Limit          int
	DocumentID     string // 可选：按document_id过滤
}

// SearchMatch 检索结果
type SearchMatch struct {
	DocumentID string
	Page       int
	Text       string
	Score      float64
}

// VectorStore 向量存储抽象
// 仅追加：没有原地更新，也不提供删除。检索是只读的。
type VectorStore interface {
	InsertChunks(ctx context.Context, chunks []VectorChunk) error
	Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error)
	Ready() bool
}
