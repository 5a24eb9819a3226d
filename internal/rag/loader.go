package rag

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// PageLoader 文档加载器：按页提取文本
type PageLoader interface {
	Load(ctx context.Context, path string) ([]Page, error)
}

// PDFLoader 基于unipdf的PDF页面加载器
// 只提取已有文字层的文本；扫描版/纯图片PDF不做OCR，
// 提取结果为空由上层判定为NoExtractableText。
type PDFLoader struct{}

// NewPDFLoader 创建PDF加载器
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

func (l *PDFLoader) Load(ctx context.Context, path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开PDF文件失败: %w", err)
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("解析PDF失败: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("获取PDF页数失败: %w", err)
	}

	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}

		pages = append(pages, Page{
			Number: i,
			Text:   strings.TrimSpace(text),
		})
	}

	return pages, nil
}
