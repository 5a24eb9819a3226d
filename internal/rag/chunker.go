package rag

import (
	"strings"
	"unicode"
)

// LengthFunc 文本长度度量函数
type LengthFunc func(string) int

// RuneLength 按rune计数
func RuneLength(s string) int {
	return len([]rune(s))
}

// TokenLength 廉价的确定性token估算
// 连续的字母/数字记为一个token，其余非空白字符各记一个token。
func TokenLength(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				count++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			count++
			inWord = false
		}
	}
	return count
}

// LengthFuncByName 根据配置名选择长度函数
func LengthFuncByName(name string) LengthFunc {
	if name == "tokens" {
		return TokenLength
	}
	return RuneLength
}

// 分隔符优先级：段落 > 换行 > 句子 > 单词 > 字符
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker 递归文本分块器
// 按分隔符优先级递归切分，直到每个分块的长度不超过chunkSize，
// 相邻分块之间保留chunkOverlap的重叠。
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	lengthFn     LengthFunc
	separators   []string
}

// NewChunker 创建分块器
func NewChunker(chunkSize, overlap int, lengthFn LengthFunc) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if lengthFn == nil {
		lengthFn = RuneLength
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
		lengthFn:     lengthFn,
		separators:   defaultSeparators,
	}
}

// Split 将文档各页切分为带归属信息的分块
// 每个分块在切分时就打上所属document_id与页码。
func (c *Chunker) Split(pages []Page, documentID string) []Chunk {
	var chunks []Chunk
	for _, page := range pages {
		for _, text := range c.splitText(page.Text, c.separators) {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				DocumentID: documentID,
				Page:       page.Number,
				Text:       text,
			})
		}
	}
	return chunks
}

// splitText 递归切分：选用文本中出现的最高优先级分隔符切开，
// 超长片段交给下一级分隔符继续处理，合格片段合并为带重叠的分块。
func (c *Chunker) splitText(text string, separators []string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	splits := splitWithSeparator(text, separator)

	var final []string
	var pending []string
	for _, s := range splits {
		if c.lengthFn(s) < c.chunkSize {
			pending = append(pending, s)
			continue
		}
		if len(pending) > 0 {
			final = append(final, c.merge(pending, separator)...)
			pending = nil
		}
		if len(remaining) == 0 {
			final = append(final, s)
		} else {
			final = append(final, c.splitText(s, remaining)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, c.merge(pending, separator)...)
	}
	return final
}

// merge 将合格片段合并为尽量接近chunkSize的分块，
// 冲洗时保留末尾片段作为下一分块的重叠前缀。
func (c *Chunker) merge(parts []string, separator string) []string {
	sepLen := c.lengthFn(separator)

	var docs []string
	var current []string
	total := 0

	flushCurrent := func() {
		doc := strings.TrimSpace(strings.Join(current, separator))
		if doc != "" {
			docs = append(docs, doc)
		}
	}

	for _, part := range parts {
		partLen := c.lengthFn(part)
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		if total+partLen+extra > c.chunkSize && len(current) > 0 {
			flushCurrent()
			// 弹出队首，直到剩余长度落入重叠窗口
			for total > c.chunkOverlap ||
				(total+partLen+sepLenIf(len(current) > 0, sepLen) > c.chunkSize && total > 0) {
				total -= c.lengthFn(current[0]) + sepLenIf(len(current) > 1, sepLen)
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, part)
		total += partLen
	}
	flushCurrent()
	return docs
}

func sepLenIf(cond bool, sepLen int) int {
	if cond {
		return sepLen
	}
	return 0
}

// splitWithSeparator 按分隔符切分；空分隔符切分为单个rune
func splitWithSeparator(text, separator string) []string {
	if separator == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.Split(text, separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
