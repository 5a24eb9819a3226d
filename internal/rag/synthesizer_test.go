package rag

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/docqa/backend-go/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChat 返回固定响应的聊天客户端
type fakeChat struct {
	reply      string
	err        error
	ready      bool
	lastPrompt string
}

func (c *fakeChat) Complete(ctx context.Context, prompt string) (string, error) {
	c.lastPrompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *fakeChat) Ready() bool {
	return c.ready
}

func rerankedChunks(texts ...string) []RerankedCandidate {
	chunks := make([]RerankedCandidate, len(texts))
	for i, text := range texts {
		chunks[i] = RerankedCandidate{Chunk: Chunk{DocumentID: "doc-1", Page: 1, Text: text}}
	}
	return chunks
}

func TestSynthesizeValidContract(t *testing.T) {
	chat := &fakeChat{ready: true, reply: `{"question":"q","answer":"Paris","confidence":0.9}`}
	synthesizer := NewSynthesizer(chat)

	answer, confidence, err := synthesizer.Synthesize(context.Background(), "q", rerankedChunks("ctx"))
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer)
	assert.Equal(t, 0.9, confidence)
}

func TestSynthesizeConfidenceBoundaries(t *testing.T) {
	// 边界值0和1都是合法置信度
	for _, reply := range []string{
		`{"question":"q","answer":"a","confidence":0}`,
		`{"question":"q","answer":"a","confidence":1}`,
	} {
		chat := &fakeChat{ready: true, reply: reply}
		_, _, err := NewSynthesizer(chat).Synthesize(context.Background(), "q", rerankedChunks("ctx"))
		assert.NoError(t, err, "reply %s", reply)
	}
}

func TestSynthesizeContractViolations(t *testing.T) {
	cases := map[string]string{
		"not json":            `the answer is Paris`,
		"missing answer":      `{"question":"q","confidence":0.5}`,
		"missing question":    `{"answer":"a","confidence":0.5}`,
		"missing confidence":  `{"question":"q","answer":"a"}`,
		"unknown key":         `{"question":"q","answer":"a","confidence":0.5,"sources":[]}`,
		"trailing content":    `{"question":"q","answer":"a","confidence":0.5} extra`,
		"confidence too high": `{"question":"q","answer":"a","confidence":1.5}`,
		"confidence negative": `{"question":"q","answer":"a","confidence":-0.1}`,
		"wrong type":          `{"question":"q","answer":"a","confidence":"high"}`,
		"json array":          `[{"question":"q","answer":"a","confidence":0.5}]`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			chat := &fakeChat{ready: true, reply: reply}
			_, _, err := NewSynthesizer(chat).Synthesize(context.Background(), "q", rerankedChunks("ctx"))
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSynthesisViolation))
		})
	}
}

func TestSynthesizePromptContainsContextInOrder(t *testing.T) {
	chat := &fakeChat{ready: true, reply: `{"question":"q","answer":"a","confidence":0.5}`}
	synthesizer := NewSynthesizer(chat)

	_, _, err := synthesizer.Synthesize(context.Background(),
		"What is the capital?", rerankedChunks("first chunk", "second chunk"))
	require.NoError(t, err)

	assert.Contains(t, chat.lastPrompt, "What is the capital?")
	assert.Contains(t, chat.lastPrompt, "first chunk\n\nsecond chunk")
	assert.Less(t,
		strings.Index(chat.lastPrompt, "first chunk"),
		strings.Index(chat.lastPrompt, "second chunk"))
}

func TestSynthesizeChatNotConfigured(t *testing.T) {
	chat := &fakeChat{ready: false}
	_, _, err := NewSynthesizer(chat).Synthesize(context.Background(), "q", rerankedChunks("ctx"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
}

func TestSynthesizeChatFailure(t *testing.T) {
	chat := &fakeChat{ready: true, err: context.DeadlineExceeded}
	_, _, err := NewSynthesizer(chat).Synthesize(context.Background(), "q", rerankedChunks("ctx"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
}
