package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docqa/backend-go/internal/errors"
)

// promptTemplate 合成Prompt模板
// 限制模型只依据给定上下文作答，并要求严格的JSON输出契约。
const promptTemplate = `You are a question answering assistant. Answer the question using ONLY the context below. If the context does not contain the information needed, answer exactly "I don't know".

Context:
%s

Question: %s

Respond with a single JSON object with exactly these keys:
- "question": the question verbatim
- "answer": your answer as a string
- "confidence": a number between 0 and 1

Do not include any text outside the JSON object.`

// Synthesizer 答案合成器
// 将重排序后的分块与问题拼装为Prompt，调用语言模型，
// 并对响应做严格的JSON契约解析。
type Synthesizer struct {
	chat ChatClient
}

// NewSynthesizer 创建答案合成器
func NewSynthesizer(chat ChatClient) *Synthesizer {
	return &Synthesizer{chat: chat}
}

// Synthesize 合成答案
// 上下文按重排序顺序以空行连接；模型响应未通过契约解析时
// 返回SynthesisContractViolation，绝不降级为尽力解析。
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []RerankedCandidate) (string, float64, error) {
	if !s.chat.Ready() {
		return "", 0, errors.NewSystemError(errors.ErrCodeExternalService, "chat service not configured")
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Chunk.Text)
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), question)

	raw, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		return "", 0, errors.NewSystemError(errors.ErrCodeExternalService, "chat completion failed").WithCause(err)
	}

	answer, confidence, err := parseContract(raw)
	if err != nil {
		return "", 0, err
	}
	return answer, confidence, nil
}

// contractResponse 模型输出契约
type contractResponse struct {
	Question   *string  `json:"question"`
	Answer     *string  `json:"answer"`
	Confidence *float64 `json:"confidence"`
}

// parseContract 严格解析模型响应
// 必须是单个JSON对象，且恰好包含question/answer/confidence三个键，
// confidence必须落在[0,1]。任何偏差都是契约违规。
func parseContract(raw string) (string, float64, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()

	var resp contractResponse
	if err := dec.Decode(&resp); err != nil {
		return "", 0, errors.NewSynthesisContractError("model response is not a valid contract object").WithCause(err)
	}
	// 确保对象之后没有多余内容
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return "", 0, errors.NewSynthesisContractError("model response contains trailing content")
	}

	if resp.Question == nil || resp.Answer == nil || resp.Confidence == nil {
		return "", 0, errors.NewSynthesisContractError("model response missing required keys")
	}
	if *resp.Confidence < 0 || *resp.Confidence > 1 {
		return "", 0, errors.NewSynthesisContractError(
			fmt.Sprintf("confidence %v outside [0,1]", *resp.Confidence))
	}

	return *resp.Answer, *resp.Confidence, nil
}
