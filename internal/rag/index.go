package rag

import (
	"context"

	"github.com/docqa/backend-go/internal/errors"
	"github.com/docqa/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Index 嵌入索引：嵌入器与向量存储的组合
// Insert为仅追加写入，Search为只读检索，二者互不阻塞。
type Index struct {
	embedder Embedder
	store    VectorStore
	logger   *zap.Logger
}

// NewIndex 创建嵌入索引
func NewIndex(embedder Embedder, store VectorStore) *Index {
	return &Index{
		embedder: embedder,
		store:    store,
		logger:   logger.Named("index"),
	}
}

// Insert 为每个分块计算嵌入向量并整批写入存储
// 嵌入服务或存储不可用时返回IndexUnavailable。
func (i *Index) Insert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if !i.embedder.Ready() {
		return errors.NewIndexUnavailableError("embedding service not configured")
	}

	vectorChunks := make([]VectorChunk, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := i.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return errors.NewIndexUnavailableError("embedding service unreachable").WithCause(err)
		}
		vectorChunks = append(vectorChunks, VectorChunk{
			DocumentID: chunk.DocumentID,
			Page:       chunk.Page,
			Text:       chunk.Text,
			Embedding:  embedding,
		})
	}

	if err := i.store.InsertChunks(ctx, vectorChunks); err != nil {
		return errors.NewIndexUnavailableError("vector store unreachable").WithCause(err)
	}

	i.logger.Info("chunks indexed",
		zap.String("document_id", chunks[0].DocumentID),
		zap.Int("count", len(vectorChunks)))
	return nil
}

// Search 嵌入查询文本并做近似最近邻检索
// 结果按相似度降序，最多k条；documentID非空时按元数据过滤。
func (i *Index) Search(ctx context.Context, query string, k int, documentID string) ([]Candidate, error) {
	if !i.embedder.Ready() {
		return nil, errors.NewIndexUnavailableError("embedding service not configured")
	}

	embedding, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.NewIndexUnavailableError("embedding service unreachable").WithCause(err)
	}

	matches, err := i.store.Search(ctx, VectorSearchRequest{
		QueryEmbedding: embedding,
		Limit:          k,
		DocumentID:     documentID,
	})
	if err != nil {
		return nil, errors.NewIndexUnavailableError("vector store unreachable").WithCause(err)
	}

	candidates := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		candidates = append(candidates, Candidate{
			Chunk: Chunk{
				DocumentID: match.DocumentID,
				Page:       match.Page,
				Text:       match.Text,
			},
			Score: match.Score,
		})
	}
	return candidates, nil
}
