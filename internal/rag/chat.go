package rag

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient 语言模型补全接口
// 响应被视为不可信输入：可能不确定，也可能违反输出契约。
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Ready() bool
}

// OpenAIChatClient 使用OpenAI Chat Completion API
type OpenAIChatClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIChatClient 创建OpenAI聊天客户端
func NewOpenAIChatClient(apiKey, baseURL, model string, temperature float64, maxTokens int) *OpenAIChatClient {
	apiKey = strings.TrimSpace(apiKey)
	if model == "" {
		model = "gpt-4.1-mini"
	}

	var client *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		client = openai.NewClientWithConfig(cfg)
	}

	return &OpenAIChatClient{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
	}
}

func (c *OpenAIChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion response empty")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIChatClient) Ready() bool {
	return c.client != nil
}
