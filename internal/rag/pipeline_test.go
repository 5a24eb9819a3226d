package rag

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/docqa/backend-go/internal/config"
	apperrors "github.com/docqa/backend-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader 返回预置页面，路径映射到不同文档
type fakeLoader struct {
	pages map[string][]Page
	err   error
}

func (l *fakeLoader) Load(ctx context.Context, path string) ([]Page, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.pages[path], nil
}

// wordHashEmbedder 确定性的词袋嵌入，共享词越多余弦相似度越高
type wordHashEmbedder struct{}

func (wordHashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?")
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

func (wordHashEmbedder) Dimensions() int {
	return 64
}

func (wordHashEmbedder) Ready() bool {
	return true
}

func newTestPipeline(t *testing.T, loader PageLoader, chat ChatClient) (*Pipeline, *MemoryVectorStore) {
	t.Helper()
	store := NewMemoryVectorStore()
	index := NewIndex(wordHashEmbedder{}, store)
	cfg := config.RAGConfig{
		ChunkSize:        200,
		ChunkOverlap:     20,
		RetrievalBreadth: 100,
		TopK:             2,
		SnippetLength:    200,
		MaxSources:       10,
	}
	pipeline := NewPipeline(
		loader,
		NewChunker(cfg.ChunkSize, cfg.ChunkOverlap, RuneLength),
		index,
		NewRetriever(index, cfg.RetrievalBreadth),
		NewReranker(PassthroughScorer{}),
		NewSynthesizer(chat),
		cfg,
		nil,
	)
	return pipeline, store
}

func TestPipelineEndToEnd(t *testing.T) {
	loader := &fakeLoader{pages: map[string][]Page{
		"france.pdf": {
			{Number: 1, Text: "The capital of France is Paris. Paris is known for the Eiffel Tower."},
			{Number: 2, Text: "French cuisine includes baguettes and cheese."},
		},
	}}
	chat := &fakeChat{ready: true, reply: `{"question":"What is the capital of France?","answer":"Paris","confidence":0.9}`}
	pipeline, store := newTestPipeline(t, loader, chat)
	ctx := context.Background()

	docID, err := pipeline.IngestDocument(ctx, "france.pdf", "doc-france")
	require.NoError(t, err)
	assert.Equal(t, "doc-france", docID)
	assert.Greater(t, store.Len(), 0)

	result, err := pipeline.Query(ctx, "What is the capital of France?", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "Paris", result.Answer)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, "What is the capital of France?", result.Question)

	require.NotEmpty(t, result.Sources)
	require.NotEmpty(t, result.RerankedSources)
	assert.LessOrEqual(t, len(result.RerankedSources), 2)
	for _, source := range result.Sources {
		assert.Equal(t, "doc-france", source.DocumentID)
		assert.GreaterOrEqual(t, source.Page, 1)
		assert.NotEmpty(t, source.Snippet)
	}

	// 最相关的来源应出自提到首都的那一页
	assert.Contains(t, result.RerankedSources[0].Snippet, "Paris")
}

func TestQueryEmptyIndexIsDeterministic(t *testing.T) {
	chat := &fakeChat{ready: true, reply: `{"question":"q","answer":"should not be called","confidence":0.9}`}
	pipeline, _ := newTestPipeline(t, &fakeLoader{}, chat)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := pipeline.Query(ctx, "anything at all?", "", 4)
		require.NoError(t, err)
		assert.Equal(t, AnswerUnknown, result.Answer)
		assert.Equal(t, 0.0, result.Confidence)
		assert.NotNil(t, result.Sources)
		assert.Empty(t, result.Sources)
		assert.NotNil(t, result.RerankedSources)
		assert.Empty(t, result.RerankedSources)
	}
	// 零候选时不触发语言模型
	assert.Empty(t, chat.lastPrompt)
}

func TestQueryDocumentFilterIsolation(t *testing.T) {
	loader := &fakeLoader{pages: map[string][]Page{
		"france.pdf":  {{Number: 1, Text: "The capital of France is Paris."}},
		"germany.pdf": {{Number: 1, Text: "The capital of Germany is Berlin."}},
	}}
	chat := &fakeChat{ready: true, reply: `{"question":"q","answer":"Berlin","confidence":0.8}`}
	pipeline, _ := newTestPipeline(t, loader, chat)
	ctx := context.Background()

	_, err := pipeline.IngestDocument(ctx, "france.pdf", "doc-france")
	require.NoError(t, err)
	_, err = pipeline.IngestDocument(ctx, "germany.pdf", "doc-germany")
	require.NoError(t, err)

	result, err := pipeline.Query(ctx, "What is the capital?", "doc-germany", 4)
	require.NoError(t, err)
	for _, source := range result.Sources {
		assert.Equal(t, "doc-germany", source.DocumentID)
	}
	for _, source := range result.RerankedSources {
		assert.Equal(t, "doc-germany", source.DocumentID)
	}
}

func TestQueryFilterOnUnknownDocument(t *testing.T) {
	loader := &fakeLoader{pages: map[string][]Page{
		"france.pdf": {{Number: 1, Text: "The capital of France is Paris."}},
	}}
	chat := &fakeChat{ready: true, reply: `{"question":"q","answer":"Paris","confidence":0.9}`}
	pipeline, _ := newTestPipeline(t, loader, chat)
	ctx := context.Background()

	_, err := pipeline.IngestDocument(ctx, "france.pdf", "doc-france")
	require.NoError(t, err)

	// 过滤一个不存在的文档等价于空索引
	result, err := pipeline.Query(ctx, "What is the capital?", "doc-missing", 4)
	require.NoError(t, err)
	assert.Equal(t, AnswerUnknown, result.Answer)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Sources)
}

func TestIngestNoExtractableText(t *testing.T) {
	loader := &fakeLoader{pages: map[string][]Page{
		"scanned.pdf": {{Number: 1, Text: "   "}, {Number: 2, Text: ""}},
	}}
	pipeline, store := newTestPipeline(t, loader, &fakeChat{ready: true})

	_, err := pipeline.IngestDocument(context.Background(), "scanned.pdf", "doc-scanned")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoExtractableText))
	// 失败的摄取不得写入索引
	assert.Equal(t, 0, store.Len())
}

func TestIngestGeneratesDocumentID(t *testing.T) {
	loader := &fakeLoader{pages: map[string][]Page{
		"france.pdf": {{Number: 1, Text: "The capital of France is Paris."}},
	}}
	pipeline, _ := newTestPipeline(t, loader, &fakeChat{ready: true})

	docID, err := pipeline.IngestDocument(context.Background(), "france.pdf", "")
	require.NoError(t, err)
	assert.NotEmpty(t, docID)
}

func TestQueryBlankQuestion(t *testing.T) {
	pipeline, _ := newTestPipeline(t, &fakeLoader{}, &fakeChat{ready: true})

	_, err := pipeline.Query(context.Background(), "   ", "", 4)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestQuerySynthesisViolationSurfaces(t *testing.T) {
	loader := &fakeLoader{pages: map[string][]Page{
		"france.pdf": {{Number: 1, Text: "The capital of France is Paris."}},
	}}
	chat := &fakeChat{ready: true, reply: "Paris, obviously."}
	pipeline, _ := newTestPipeline(t, loader, chat)
	ctx := context.Background()

	_, err := pipeline.IngestDocument(ctx, "france.pdf", "doc-france")
	require.NoError(t, err)

	_, err = pipeline.Query(ctx, "What is the capital of France?", "", 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSynthesisViolation))
}
