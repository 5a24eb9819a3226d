package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/docqa/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Client DashScope风格的重排序HTTP客户端
// 对(query, document)逐对联合打分，分数单调反映相关性，无固定范围。
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	limiter sync.Mutex
}

// Request 重排序请求
type Request struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      *int     `json:"top_n,omitempty"`
}

// Response 重排序响应
type Response struct {
	Output struct {
		Results []Result `json:"results"`
	} `json:"output"`
	RequestID string `json:"request_id"`
}

// Result 单条重排序结果
type Result struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Error API错误响应
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// NewClient 创建重排序客户端
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://dashscope.aliyuncs.com"
	}
	if model == "" {
		model = "gte-rerank"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateRerank 调用重排序接口
func (c *Client) CreateRerank(ctx context.Context, query string, documents []string) (*Response, error) {
	if !c.Ready() {
		return nil, fmt.Errorf("rerank client not initialized")
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("documents cannot be empty")
	}

	c.limiter.Lock()
	defer c.limiter.Unlock()

	jsonData, err := json.Marshal(Request{
		Model:     c.model,
		Query:     query,
		Documents: documents,
	})
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/services/rerank/rerank", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API调用失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp Error
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Message != "" {
			return nil, fmt.Errorf("rerank API错误: %s (code: %s, request_id: %s)",
				errorResp.Message, errorResp.Code, errorResp.RequestID)
		}
		return nil, fmt.Errorf("rerank API错误: HTTP %d - %s", resp.StatusCode, string(body))
	}

	var rerankResp Response
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	logger.Debug("rerank request finished",
		zap.String("model", c.model),
		zap.Int("document_count", len(documents)),
		zap.String("request_id", rerankResp.RequestID))

	return &rerankResp, nil
}

// Ready 检查客户端是否就绪
func (c *Client) Ready() bool {
	return c != nil && c.client != nil && c.apiKey != ""
}
