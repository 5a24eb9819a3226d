package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
)

// Embedder 定义文本向量化接口
// 同一部署下，相同文本必须产生相同向量。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Ready() bool
}

var embeddingDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder 使用OpenAI Embedding API
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	limiter    sync.Mutex
}

// NewOpenAIEmbedder 创建OpenAI嵌入向量生成器
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	apiKey = strings.TrimSpace(apiKey)
	if model == "" {
		model = "text-embedding-3-small"
	}

	var client *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}

	dims, ok := embeddingDimensions[model]
	if !ok {
		dims = 1536
	}

	return &OpenAIEmbedder{
		client:     client,
		model:      model,
		dimensions: dims,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is empty")
	}
	if e.client == nil {
		return nil, errors.New("openai client not initialized")
	}

	e.limiter.Lock()
	defer e.limiter.Unlock()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response empty")
	}

	embedding := resp.Data[0].Embedding
	result := make([]float32, len(embedding))
	copy(result, embedding)
	return result, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Ready() bool {
	return e.client != nil
}

// CachingEmbedder 带Redis缓存的嵌入器装饰层
// 相同文本的向量按 模型+文本哈希 缓存，TTL可配置。
// 缓存读写失败时静默回退到底层嵌入器。
type CachingEmbedder struct {
	inner  Embedder
	client *redis.Client
	model  string
	ttl    time.Duration
}

// NewCachingEmbedder 创建带缓存的嵌入器
func NewCachingEmbedder(inner Embedder, client *redis.Client, model string, ttl time.Duration) *CachingEmbedder {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachingEmbedder{
		inner:  inner,
		client: client,
		model:  model,
		ttl:    ttl,
	}
}

func (e *CachingEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(e.model + "\x00" + text))
	return "docqa:embedding:" + hex.EncodeToString(sum[:])
}

func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.client == nil {
		return e.inner.Embed(ctx, text)
	}

	key := e.cacheKey(text)
	if cached, err := e.client.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if err := json.Unmarshal(cached, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vec); err == nil {
		e.client.Set(ctx, key, payload, e.ttl)
	}
	return vec, nil
}

func (e *CachingEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *CachingEmbedder) Ready() bool {
	return e.inner.Ready()
}
