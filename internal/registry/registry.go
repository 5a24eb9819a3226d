package registry

import (
	"github.com/docqa/backend-go/internal/errors"
	"github.com/docqa/backend-go/internal/models"
	"gorm.io/gorm"
)

// DocumentRegistry 文档登记服务
// 仅追加的 document_id -> filename 映射，供调用方枚举已摄取的文档。
// 检索路径不经过该服务。
type DocumentRegistry struct {
	db *gorm.DB
}

// NewDocumentRegistry 创建文档登记服务
func NewDocumentRegistry(db *gorm.DB) *DocumentRegistry {
	return &DocumentRegistry{db: db}
}

// Register 登记一条文档记录
func (r *DocumentRegistry) Register(documentID, filename string) error {
	if r.db == nil {
		return nil // 未配置数据库时跳过登记，不阻塞摄取
	}
	doc := models.Document{
		DocumentID: documentID,
		Filename:   filename,
	}
	if err := r.db.Create(&doc).Error; err != nil {
		return errors.NewSystemError(errors.ErrCodeDatabaseError, "failed to register document").WithCause(err)
	}
	return nil
}

// List 按摄取顺序返回全部文档记录
func (r *DocumentRegistry) List() ([]models.Document, error) {
	if r.db == nil {
		return []models.Document{}, nil
	}
	var docs []models.Document
	if err := r.db.Order("create_time asc").Find(&docs).Error; err != nil {
		return nil, errors.NewSystemError(errors.ErrCodeDatabaseError, "failed to list documents").WithCause(err)
	}
	return docs, nil
}
