package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/docqa/backend-go/internal/config"
	"github.com/docqa/backend-go/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// DocumentArchive 原始文档归档
// 摄取成功后把源PDF存入对象存储，供后续排查与重建索引使用。
// 未配置MinIO时归档为关闭状态，摄取流程不受影响。
type DocumentArchive struct {
	client *minio.Client
	bucket string
}

// NewDocumentArchive 按配置创建文档归档
func NewDocumentArchive(cfg config.ObjectStorageConfig) (*DocumentArchive, error) {
	if cfg.Provider != "minio" || cfg.Endpoint == "" {
		return &DocumentArchive{}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	archive := &DocumentArchive{
		client: client,
		bucket: cfg.Bucket,
	}
	if err := archive.ensureBucket(context.Background()); err != nil {
		return nil, err
	}
	return archive, nil
}

func (a *DocumentArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Enabled 归档是否启用
func (a *DocumentArchive) Enabled() bool {
	return a != nil && a.client != nil
}

// Archive 将本地文件归档为 <documentID>.pdf
func (a *DocumentArchive) Archive(ctx context.Context, documentID, filePath string) error {
	if !a.Enabled() {
		return nil
	}

	objectName := documentID + filepath.Ext(filePath)
	_, err := a.client.FPutObject(ctx, a.bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("failed to archive document: %w", err)
	}

	logger.Info("document archived",
		zap.String("document_id", documentID),
		zap.String("bucket", a.bucket),
		zap.String("object", objectName))
	return nil
}
