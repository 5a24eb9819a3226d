package rag

// AnswerUnknown 上下文无法支撑答案时返回的固定文本
const AnswerUnknown = "I don't know"

// Page 文档单页的提取文本
type Page struct {
	Number int // 1-based；无页码来源为0
	Text   string
}

// Chunk 分块后的文本结构，嵌入与检索的最小单元
type Chunk struct {
	DocumentID string
	Page       int
	Text       string
}

// Candidate 单次查询的召回候选（重排序前）
type Candidate struct {
	Chunk Chunk
	Score float64 // 相似度，越大越相关
}

// RerankedCandidate 重排序后的候选
type RerankedCandidate struct {
	Chunk Chunk
	Score float64 // 交叉编码器相关性分数，无固定范围
}

// SourceDocument 答案中的来源引用
type SourceDocument struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Snippet    string `json:"snippet"`
}

// AnswerResult 查询响应
type AnswerResult struct {
	Question        string           `json:"question"`
	Answer          string           `json:"answer"`
	Confidence      float64          `json:"confidence"`
	Sources         []SourceDocument `json:"sources"`
	RerankedSources []SourceDocument `json:"rerankedsources"`
}
