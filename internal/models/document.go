package models

import (
	"time"
)

// Document 已摄取文档登记表
// 仅用于枚举已摄取的文档，检索路径不读取该表。
type Document struct {
	DocumentID string    `gorm:"primaryKey;column:document_id;size:64" json:"document_id"`
	Filename   string    `gorm:"column:filename;size:500;not null" json:"filename"`
	CreateTime time.Time `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
}

func (Document) TableName() string {
	return "documents"
}
