package rag

import (
	"context"
	"strings"
	"time"

	"github.com/docqa/backend-go/internal/config"
	"github.com/docqa/backend-go/internal/errors"
	"github.com/docqa/backend-go/internal/logger"
	"github.com/docqa/backend-go/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline 检索增强问答流水线
// 对外只开放两个入口：IngestDocument 与 Query。
// 每次调用都是独立的工作单元，除向量索引外不持有跨请求状态。
type Pipeline struct {
	loader      PageLoader
	chunker     *Chunker
	index       *Index
	retriever   *Retriever
	reranker    *Reranker
	synthesizer *Synthesizer
	cfg         config.RAGConfig
	collector   *metrics.Collector
	logger      *zap.Logger
}

// NewPipeline 组装流水线
func NewPipeline(
	loader PageLoader,
	chunker *Chunker,
	index *Index,
	retriever *Retriever,
	reranker *Reranker,
	synthesizer *Synthesizer,
	cfg config.RAGConfig,
	collector *metrics.Collector,
) *Pipeline {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.SnippetLength <= 0 {
		cfg.SnippetLength = 200
	}
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = 10
	}
	return &Pipeline{
		loader:      loader,
		chunker:     chunker,
		index:       index,
		retriever:   retriever,
		reranker:    reranker,
		synthesizer: synthesizer,
		cfg:         cfg,
		collector:   collector,
		logger:      logger.Named("pipeline"),
	}
}

// IngestDocument 摄取文档：提取页面 → 分块 → 嵌入入库
// documentID为空时生成新ID；同一ID重复摄取会产生重复分块（仅追加存储的已知限制）。
func (p *Pipeline) IngestDocument(ctx context.Context, filePath, documentID string) (string, error) {
	start := time.Now()
	if documentID == "" {
		documentID = uuid.NewString()
	}

	docID, err := p.ingest(ctx, filePath, documentID)
	if err != nil {
		p.collector.ObserveIngest(string(errors.AsAppError(err).Code), 0, time.Since(start))
		return "", err
	}
	return docID, nil
}

func (p *Pipeline) ingest(ctx context.Context, filePath, documentID string) (string, error) {
	start := time.Now()

	pages, err := p.loader.Load(ctx, filePath)
	if err != nil {
		return "", errors.NewSystemError(errors.ErrCodeInternalServer, "failed to load document").WithCause(err)
	}

	chunks := p.chunker.Split(pages, documentID)
	if len(chunks) == 0 {
		// 页面存在但没有任何可提取文本：致命前置条件，索引保持不变
		return "", errors.NewNoExtractableTextError(documentID)
	}

	if err := p.index.Insert(ctx, chunks); err != nil {
		return "", err
	}

	p.collector.ObserveIngest("success", len(chunks), time.Since(start))
	p.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)))
	return documentID, nil
}

// Query 回答问题：召回 → 重排序 → 合成
// 零候选时直接返回"I don't know"且置信度为0，不触发重排序与语言模型。
func (p *Pipeline) Query(ctx context.Context, question, documentID string, k int) (*AnswerResult, error) {
	start := time.Now()

	result, candidates, err := p.query(ctx, question, documentID, k)
	if err != nil {
		p.collector.ObserveQuery(string(errors.AsAppError(err).Code), len(candidates), time.Since(start))
		return nil, err
	}
	p.collector.ObserveQuery("success", len(candidates), time.Since(start))
	return result, nil
}

func (p *Pipeline) query(ctx context.Context, question, documentID string, k int) (*AnswerResult, []Candidate, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, nil, errors.NewInvalidInputError("question must not be empty")
	}
	if k <= 0 {
		k = p.cfg.TopK
	}

	candidates, err := p.retriever.Retrieve(ctx, question, documentID)
	if err != nil {
		return nil, nil, err
	}

	if len(candidates) == 0 {
		// 空索引或过滤条件不匹配：确定性的"不知道"结果
		p.logger.Debug("empty retrieval", zap.String("document_id", documentID))
		return &AnswerResult{
			Question:        question,
			Answer:          AnswerUnknown,
			Confidence:      0.0,
			Sources:         []SourceDocument{},
			RerankedSources: []SourceDocument{},
		}, candidates, nil
	}

	reranked, err := p.reranker.Rerank(ctx, question, candidates, k)
	if err != nil {
		return nil, candidates, err
	}

	answer, confidence, err := p.synthesizer.Synthesize(ctx, question, reranked)
	if err != nil {
		return nil, candidates, err
	}

	result := &AnswerResult{
		Question:        question,
		Answer:          answer,
		Confidence:      confidence,
		Sources:         p.sourcesFromCandidates(candidates),
		RerankedSources: p.sourcesFromReranked(reranked),
	}

	p.logger.Info("query answered",
		zap.Int("candidates", len(candidates)),
		zap.Int("reranked", len(reranked)),
		zap.Float64("confidence", confidence))
	return result, candidates, nil
}

// sourcesFromCandidates 召回来源引用，截断以控制响应体大小
func (p *Pipeline) sourcesFromCandidates(candidates []Candidate) []SourceDocument {
	limit := p.cfg.MaxSources
	if len(candidates) < limit {
		limit = len(candidates)
	}
	sources := make([]SourceDocument, 0, limit)
	for _, candidate := range candidates[:limit] {
		sources = append(sources, p.sourceFromChunk(candidate.Chunk))
	}
	return sources
}

func (p *Pipeline) sourcesFromReranked(reranked []RerankedCandidate) []SourceDocument {
	sources := make([]SourceDocument, 0, len(reranked))
	for _, candidate := range reranked {
		sources = append(sources, p.sourceFromChunk(candidate.Chunk))
	}
	return sources
}

func (p *Pipeline) sourceFromChunk(chunk Chunk) SourceDocument {
	return SourceDocument{
		DocumentID: chunk.DocumentID,
		Page:       chunk.Page,
		Snippet:    truncateRunes(chunk.Text, p.cfg.SnippetLength),
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
