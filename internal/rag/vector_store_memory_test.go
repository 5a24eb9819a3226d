package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryVectorStoreSearchRanking(t *testing.T) {
	store := NewMemoryVectorStore()
	ctx := context.Background()

	err := store.InsertChunks(ctx, []VectorChunk{
		{DocumentID: "doc-1", Page: 1, Text: "exact", Embedding: []float32{1, 0, 0}},
		{DocumentID: "doc-1", Page: 2, Text: "close", Embedding: []float32{1, 1, 0}},
		{DocumentID: "doc-1", Page: 3, Text: "orthogonal", Embedding: []float32{0, 0, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	matches, err := store.Search(ctx, VectorSearchRequest{
		QueryEmbedding: []float32{1, 0, 0},
		Limit:          2,
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Text)
	assert.Equal(t, "close", matches[1].Text)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryVectorStoreDocumentFilter(t *testing.T) {
	store := NewMemoryVectorStore()
	ctx := context.Background()

	err := store.InsertChunks(ctx, []VectorChunk{
		{DocumentID: "doc-a", Page: 1, Text: "from a", Embedding: []float32{1, 0}},
		{DocumentID: "doc-b", Page: 1, Text: "from b", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	matches, err := store.Search(ctx, VectorSearchRequest{
		QueryEmbedding: []float32{1, 0},
		Limit:          10,
		DocumentID:     "doc-b",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc-b", matches[0].DocumentID)

	// 不存在的文档过滤返回空结果而不是错误
	matches, err = store.Search(ctx, VectorSearchRequest{
		QueryEmbedding: []float32{1, 0},
		Limit:          10,
		DocumentID:     "doc-missing",
	})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryVectorStoreAppendOnly(t *testing.T) {
	store := NewMemoryVectorStore()
	ctx := context.Background()

	require.NoError(t, store.InsertChunks(ctx, []VectorChunk{
		{DocumentID: "doc-1", Page: 1, Text: "first", Embedding: []float32{1, 0}},
	}))
	require.NoError(t, store.InsertChunks(ctx, []VectorChunk{
		{DocumentID: "doc-1", Page: 1, Text: "second", Embedding: []float32{0, 1}},
	}))

	// 重复写入同一文档只会追加，不会覆盖
	assert.Equal(t, 2, store.Len())
}
