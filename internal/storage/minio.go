package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/insurhub/backend-go/internal/config"
	"github.com/insurhub/backend-go/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ArchiveStore 原始单据归档存储
// 上传的保单原件除本地暂存外可额外归档到对象存储，归档失败不阻断入库流程
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

// NewArchiveStore 创建归档存储实例
// provider不是minio/s3时返回nil，调用方按未配置处理
func NewArchiveStore(cfg config.ObjectStorageConfig) (*ArchiveStore, error) {
	if cfg.Provider != "minio" && cfg.Provider != "s3" {
		return nil, nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}

	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	store := &ArchiveStore{
		client: client,
		bucket: cfg.Bucket,
	}
	if store.bucket == "" {
		store.bucket = "policy-documents"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("对象归档存储初始化完成", zap.String("endpoint", endpoint), zap.String("bucket", store.bucket))
	return store, nil
}

// ensureBucket 确认bucket存在，不存在则创建
func (s *ArchiveStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		errStr := err.Error()
		// 并发启动时可能被别的实例抢先创建
		if strings.Contains(errStr, "BucketAlreadyExists") || strings.Contains(errStr, "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ArchiveDocument 归档保单原件，对象键为docID/文件名
func (s *ArchiveStore) ArchiveDocument(ctx context.Context, docID, fileName string, file io.Reader, size int64, contentType string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("archive store not initialized")
	}
	objectKey := fmt.Sprintf("%s/%s", docID, fileName)
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// FetchDocument 取回归档原件，调用方负责Close
func (s *ArchiveStore) FetchDocument(ctx context.Context, docID, fileName string) (io.ReadCloser, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("archive store not initialized")
	}
	objectKey := fmt.Sprintf("%s/%s", docID, fileName)
	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject惰性求值，Stat确认对象确实存在
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, err
	}
	return object, nil
}

// RemoveDocument 删除归档原件（校验被拒的文档不保留归档）
func (s *ArchiveStore) RemoveDocument(ctx context.Context, docID, fileName string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("archive store not initialized")
	}
	objectKey := fmt.Sprintf("%s/%s", docID, fileName)
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

// HealthCheck 健康检查
func (s *ArchiveStore) HealthCheck(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("archive store not initialized")
	}
	_, err := s.client.ListBuckets(ctx)
	return err
}
