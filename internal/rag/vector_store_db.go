package rag

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// chunkRecord document_chunks表的行结构
type chunkRecord struct {
	ID            uint   `gorm:"primaryKey;column:id;autoIncrement"`
	DocumentID    string `gorm:"column:document_id;size:64;index;not null"`
	Page          int    `gorm:"column:page"`
	Content       string `gorm:"column:content;type:text;not null"`
	EmbeddingJSON string `gorm:"column:embedding;type:text;not null"`
}

func (chunkRecord) TableName() string {
	return "document_chunks"
}

// DatabaseVectorStore 基于PostgreSQL的退化向量存储
// 候选行拉回内存后计算余弦相似度，适合中小规模索引。
type DatabaseVectorStore struct {
	db *gorm.DB
}

// NewDatabaseVectorStore 创建数据库向量存储
func NewDatabaseVectorStore(db *gorm.DB) (VectorStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	if err := db.AutoMigrate(&chunkRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate document_chunks: %w", err)
	}
	return &DatabaseVectorStore{db: db}, nil
}

func (s *DatabaseVectorStore) InsertChunks(ctx context.Context, chunks []VectorChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	records := make([]chunkRecord, 0, len(chunks))
	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return err
		}
		records = append(records, chunkRecord{
			DocumentID:    chunk.DocumentID,
			Page:          chunk.Page,
			Content:       chunk.Text,
			EmbeddingJSON: string(embeddingJSON),
		})
	}

	// 单事务提交，保证同一文档的分块整体可见
	return s.db.WithContext(ctx).Create(&records).Error
}

func (s *DatabaseVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	query := s.db.WithContext(ctx).Model(&chunkRecord{})
	if req.DocumentID != "" {
		query = query.Where("document_id = ?", req.DocumentID)
	}

	var rows []chunkRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	queryNorm := vectorNorm(req.QueryEmbedding)
	if queryNorm == 0 {
		return []SearchMatch{}, nil
	}

	results := make([]SearchMatch, 0, req.Limit)
	for _, row := range rows {
		var embedding []float32
		if err := json.Unmarshal([]byte(row.EmbeddingJSON), &embedding); err != nil {
			continue
		}
		results = append(results, SearchMatch{
			DocumentID: row.DocumentID,
			Page:       row.Page,
			Text:       row.Content,
			Score:      cosineSimilarity(req.QueryEmbedding, embedding, queryNorm),
		})
	}

	sortMatchesByScore(results)
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

func (s *DatabaseVectorStore) Ready() bool {
	return s.db != nil
}
