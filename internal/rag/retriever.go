package rag

import (
	"context"
)

// Retriever 召回器：以固定宽度从嵌入索引拉取候选
// 宽度大于最终TopK，给重排序阶段留出提升精度的余地。
type Retriever struct {
	index   *Index
	breadth int
}

// NewRetriever 创建召回器
func NewRetriever(index *Index, breadth int) *Retriever {
	if breadth <= 0 {
		breadth = 100
	}
	return &Retriever{
		index:   index,
		breadth: breadth,
	}
}

// Retrieve 按语义相似度召回候选分块
// documentID非空时只在该文档内检索；零候选不是错误，由上层短路处理。
func (r *Retriever) Retrieve(ctx context.Context, question, documentID string) ([]Candidate, error) {
	return r.index.Search(ctx, question, r.breadth, documentID)
}
