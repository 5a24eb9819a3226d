package rag

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/docqa/backend-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScorer 按预置分数表打分
type fixedScorer struct {
	scores []float64
	err    error
}

func (s *fixedScorer) ScoreAll(ctx context.Context, question string, passages []string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores[:len(passages)], nil
}

func (s *fixedScorer) Ready() bool {
	return true
}

func makeCandidates(texts ...string) []Candidate {
	candidates := make([]Candidate, len(texts))
	for i, text := range texts {
		candidates[i] = Candidate{
			Chunk: Chunk{DocumentID: "doc-1", Page: i + 1, Text: text},
			Score: float64(len(texts) - i),
		}
	}
	return candidates
}

func TestRerankOrdersByScoreDesc(t *testing.T) {
	reranker := NewReranker(&fixedScorer{scores: []float64{0.1, 0.9, 0.5, 0.7}})
	candidates := makeCandidates("a", "b", "c", "d")

	reranked, err := reranker.Rerank(context.Background(), "q", candidates, 4)
	require.NoError(t, err)
	require.Len(t, reranked, 4)
	assert.Equal(t, "b", reranked[0].Chunk.Text)
	assert.Equal(t, "d", reranked[1].Chunk.Text)
	assert.Equal(t, "c", reranked[2].Chunk.Text)
	assert.Equal(t, "a", reranked[3].Chunk.Text)
}

func TestRerankResultIsSubsetOfInput(t *testing.T) {
	reranker := NewReranker(&fixedScorer{scores: []float64{0.2, 0.8, 0.4}})
	candidates := makeCandidates("alpha", "beta", "gamma")

	reranked, err := reranker.Rerank(context.Background(), "q", candidates, 2)
	require.NoError(t, err)
	require.Len(t, reranked, 2)

	inputs := map[string]bool{}
	for _, candidate := range candidates {
		inputs[candidate.Chunk.Text] = true
	}
	for _, r := range reranked {
		assert.True(t, inputs[r.Chunk.Text], "reranked chunk %q not in input", r.Chunk.Text)
	}
}

func TestRerankStableOnTies(t *testing.T) {
	// 同分时保持召回顺序
	reranker := NewReranker(&fixedScorer{scores: []float64{0.5, 0.5, 0.5}})
	candidates := makeCandidates("first", "second", "third")

	reranked, err := reranker.Rerank(context.Background(), "q", candidates, 3)
	require.NoError(t, err)
	assert.Equal(t, "first", reranked[0].Chunk.Text)
	assert.Equal(t, "second", reranked[1].Chunk.Text)
	assert.Equal(t, "third", reranked[2].Chunk.Text)
}

func TestRerankTruncatesToMin(t *testing.T) {
	reranker := NewReranker(&fixedScorer{scores: []float64{0.3, 0.6, 0.9}})
	candidates := makeCandidates("a", "b", "c")

	// k大于候选数时返回全部候选
	reranked, err := reranker.Rerank(context.Background(), "q", candidates, 10)
	require.NoError(t, err)
	assert.Len(t, reranked, 3)

	// k小于候选数时截断到k
	reranked, err = reranker.Rerank(context.Background(), "q", candidates, 1)
	require.NoError(t, err)
	require.Len(t, reranked, 1)
	assert.Equal(t, "c", reranked[0].Chunk.Text)
}

func TestRerankEmptyCandidates(t *testing.T) {
	reranker := NewReranker(&fixedScorer{})

	reranked, err := reranker.Rerank(context.Background(), "q", nil, 4)
	require.NoError(t, err)
	assert.NotNil(t, reranked)
	assert.Empty(t, reranked)
}

func TestRerankScorerFailure(t *testing.T) {
	reranker := NewReranker(&fixedScorer{err: errors.New("rerank api down")})
	candidates := makeCandidates("a", "b")

	_, err := reranker.Rerank(context.Background(), "q", candidates, 2)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
}

func TestPassthroughScorerPreservesRetrievalOrder(t *testing.T) {
	reranker := NewReranker(PassthroughScorer{})
	candidates := makeCandidates("most", "middle", "least")

	reranked, err := reranker.Rerank(context.Background(), "q", candidates, 3)
	require.NoError(t, err)
	require.Len(t, reranked, 3)
	assert.Equal(t, "most", reranked[0].Chunk.Text)
	assert.Equal(t, "middle", reranked[1].Chunk.Text)
	assert.Equal(t, "least", reranked[2].Chunk.Text)
}
