package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docqa/backend-go/internal/logger"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	VectorSize int
	Distance   string
	Database   string
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
	distance     string
}

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "doc_chunks"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
		distance:     formatMilvusDistance(opts.Distance),
	}, nil
}

func formatMilvusDistance(value string) string {
	switch strings.ToUpper(value) {
	case "DOT", "IP", "INNER_PRODUCT":
		return "IP"
	case "L2", "EUCLIDEAN":
		return "L2"
	default:
		return "COSINE"
	}
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "Document chunk embeddings",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "page",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.vectorSize),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// 创建索引 - 根据距离类型选择索引
	var index entity.Index
	var indexErr error
	switch s.distance {
	case "IP":
		index, indexErr = entity.NewIndexHNSW(entity.IP, 8, 64)
	case "L2":
		index, indexErr = entity.NewIndexHNSW(entity.L2, 8, 64)
	default:
		index, indexErr = entity.NewIndexHNSW(entity.COSINE, 8, 64)
	}
	if indexErr != nil {
		return fmt.Errorf("failed to create index: %w", indexErr)
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

func (s *milvusVectorStore) InsertChunks(ctx context.Context, chunks []VectorChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	documentIDs := make([]string, 0, len(chunks))
	pages := make([]int64, 0, len(chunks))
	contents := make([]string, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.vectorSize {
			return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(chunk.Embedding), s.vectorSize)
		}
		documentIDs = append(documentIDs, chunk.DocumentID)
		pages = append(pages, int64(chunk.Page))
		contents = append(contents, chunk.Text)
		vectors = append(vectors, chunk.Embedding)
	}

	// 一次Insert提交整个文档的分块
	_, err := s.milvusClient.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("document_id", documentIDs),
		entity.NewColumnInt64("page", pages),
		entity.NewColumnVarChar("content", contents),
		entity.NewColumnFloatVector("vector", s.vectorSize, vectors),
	)
	if err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		// 刷新失败不影响插入
		logger.Warn("failed to flush collection", zap.String("collection", s.collection), zap.Error(err))
	}
	return nil
}

func (s *milvusVectorStore) Search(ctx context.Context, req VectorSearchRequest) ([]SearchMatch, error) {
	if len(req.QueryEmbedding) == 0 {
		return nil, nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	expr := ""
	if req.DocumentID != "" {
		expr = fmt.Sprintf(`document_id == "%s"`, strings.ReplaceAll(req.DocumentID, `"`, ``))
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(req.QueryEmbedding)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		expr,
		[]string{"document_id", "page", "content"},
		[]entity.Vector{queryVector},
		"vector",
		entity.MetricType(s.distance),
		req.Limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []SearchMatch{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchMatch{}, nil
	}

	var documentIDs []string
	var pages []int64
	var contents []string
	for _, field := range result.Fields {
		switch field.Name() {
		case "document_id":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				documentIDs = val.Data()
			}
		case "page":
			if val, ok := field.(*entity.ColumnInt64); ok {
				pages = val.Data()
			}
		case "content":
			if val, ok := field.(*entity.ColumnVarChar); ok {
				contents = val.Data()
			}
		}
	}

	results := make([]SearchMatch, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		match := SearchMatch{}
		if i < len(documentIDs) {
			match.DocumentID = documentIDs[i]
		}
		if i < len(pages) {
			match.Page = int(pages[i])
		}
		if i < len(contents) {
			match.Text = contents[i]
		}
		if i < len(result.Scores) {
			match.Score = float64(result.Scores[i])
		}
		results = append(results, match)
	}
	return results, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
