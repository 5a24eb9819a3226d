package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/docqa/backend-go/internal/config"
	"github.com/docqa/backend-go/internal/di"
	"github.com/docqa/backend-go/internal/logger"
	"github.com/docqa/backend-go/internal/rag"
	"github.com/docqa/backend-go/internal/registry"
	"github.com/docqa/backend-go/internal/storage"
	"go.uber.org/zap"
)

// DocumentController 文档控制器
type DocumentController struct {
	BaseController
	pipeline *rag.Pipeline
	registry *registry.DocumentRegistry
	archive  *storage.DocumentArchive
}

// Prepare 从DI容器获取依赖
func (c *DocumentController) Prepare() {
	_ = di.Invoke(func(p *rag.Pipeline, r *registry.DocumentRegistry, a *storage.DocumentArchive) {
		c.pipeline = p
		c.registry = r
		c.archive = a
	})
}

// Upload 上传并摄取一份PDF文档
// multipart表单：file为必填，document_id可选（缺省时服务端生成）。
func (c *DocumentController) Upload() {
	if c.pipeline == nil {
		c.JSONError(http.StatusInternalServerError, "service not initialized")
		return
	}

	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	uploadCfg := config.AppConfig.FileUpload
	if header.Size > uploadCfg.MaxSize {
		c.JSONError(http.StatusBadRequest, "file too large")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !isAllowedType(ext, uploadCfg.AllowedTypes) {
		c.JSONError(http.StatusBadRequest, "only PDF files are supported")
		return
	}

	// 先落盘到上传目录，摄取结束后删除临时文件
	if err := os.MkdirAll(uploadCfg.UploadPath, 0o755); err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}
	tmpFile, err := os.CreateTemp(uploadCfg.UploadPath, "upload-*"+ext)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveToFile("file", tmpPath); err != nil {
		c.JSONError(http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	ctx := c.Ctx.Request.Context()
	documentID, err := c.pipeline.IngestDocument(ctx, tmpPath, c.GetString("document_id"))
	if err != nil {
		c.JSONAppError(err)
		return
	}

	if err := c.registry.Register(documentID, header.Filename); err != nil {
		logger.Warn("failed to register document", zap.String("document_id", documentID), zap.Error(err))
	}
	if err := c.archive.Archive(ctx, documentID, tmpPath); err != nil {
		logger.Warn("failed to archive document", zap.String("document_id", documentID), zap.Error(err))
	}

	c.JSONSuccess(map[string]interface{}{
		"document_id": documentID,
		"filename":    header.Filename,
	})
}

// Index 按摄取顺序列出已摄取的文档
func (c *DocumentController) Index() {
	docs, err := c.registry.List()
	if err != nil {
		c.JSONAppError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"documents": docs,
	})
}

func isAllowedType(ext string, allowed []string) bool {
	for _, t := range allowed {
		if ext == strings.ToLower(t) {
			return true
		}
	}
	return false
}
