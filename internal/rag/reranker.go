package rag

import (
	"context"
	"sort"

	"github.com/docqa/backend-go/internal/errors"
	"github.com/docqa/backend-go/internal/rerank"
)

// Scorer 交叉编码器打分接口
// 对(question, passage)联合打分，分数越大越相关，无固定范围。
type Scorer interface {
	ScoreAll(ctx context.Context, question string, passages []string) ([]float64, error)
	Ready() bool
}

// CrossEncoderScorer 基于重排序API的交叉编码器
type CrossEncoderScorer struct {
	client *rerank.Client
}

// NewCrossEncoderScorer 创建交叉编码器打分器
func NewCrossEncoderScorer(client *rerank.Client) *CrossEncoderScorer {
	return &CrossEncoderScorer{client: client}
}

func (s *CrossEncoderScorer) ScoreAll(ctx context.Context, question string, passages []string) ([]float64, error) {
	resp, err := s.client.CreateRerank(ctx, question, passages)
	if err != nil {
		return nil, err
	}

	// API返回 index -> score，缺失的索引记0分
	scores := make([]float64, len(passages))
	for _, result := range resp.Output.Results {
		if result.Index >= 0 && result.Index < len(scores) {
			scores[result.Index] = result.RelevanceScore
		}
	}
	return scores, nil
}

func (s *CrossEncoderScorer) Ready() bool {
	return s.client != nil && s.client.Ready()
}

// PassthroughScorer 未配置交叉编码器时的退化打分器
// 直接沿用召回阶段的相似度，重排序退化为恒等重排。
type PassthroughScorer struct{}

func (PassthroughScorer) ScoreAll(ctx context.Context, question string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	for i := range scores {
		scores[i] = float64(len(passages) - i)
	}
	return scores, nil
}

func (PassthroughScorer) Ready() bool {
	return true
}

// Reranker 重排序器
// 对候选集合做纯函数式的重打分与截断：输出是输入的严格子集重排。
type Reranker struct {
	scorer Scorer
}

// NewReranker 创建重排序器
func NewReranker(scorer Scorer) *Reranker {
	if scorer == nil {
		scorer = PassthroughScorer{}
	}
	return &Reranker{scorer: scorer}
}

// Rerank 重打分并截断到k条
// 按分数降序稳定排序：同分保持召回顺序；len(result) == min(k, len(candidates))。
func (r *Reranker) Rerank(ctx context.Context, question string, candidates []Candidate, k int) ([]RerankedCandidate, error) {
	if len(candidates) == 0 {
		return []RerankedCandidate{}, nil
	}

	passages := make([]string, len(candidates))
	for i, candidate := range candidates {
		passages[i] = candidate.Chunk.Text
	}

	scores, err := r.scorer.ScoreAll(ctx, question, passages)
	if err != nil {
		return nil, errors.NewSystemError(errors.ErrCodeExternalService, "reranker unavailable").WithCause(err)
	}

	reranked := make([]RerankedCandidate, len(candidates))
	for i, candidate := range candidates {
		reranked[i] = RerankedCandidate{
			Chunk: candidate.Chunk,
			Score: scores[i],
		}
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	if k < 0 {
		k = 0
	}
	if len(reranked) > k {
		reranked = reranked[:k]
	}
	return reranked, nil
}
