package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docuchat/backend-go/internal/config"
)

// Archive 原始文件归档接口，处理管道在提取前把上传原件存档
type Archive interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
	Ready() bool
}

// NoopArchive 未配置对象存储时的占位实现
type NoopArchive struct{}

func (n *NoopArchive) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	return "", nil
}

func (n *NoopArchive) Remove(ctx context.Context, objectName string) error {
	return nil
}

func (n *NoopArchive) Ready() bool {
	return false
}

// MinIOArchive MinIO对象存储归档
type MinIOArchive struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchive 创建MinIO归档服务
func NewMinIOArchive(cfg config.ObjectStorageConfig) (Archive, error) {
	if cfg.Provider != "minio" {
		return &NoopArchive{}, nil
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "documents"
	}

	// minio.New 不接受带协议的endpoint
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinIOArchive{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Put 上传对象，返回归档路径
func (s *MinIOArchive) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}
	return fmt.Sprintf("%s/%s", s.bucket, objectName), nil
}

// Remove 删除对象
func (s *MinIOArchive) Remove(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

func (s *MinIOArchive) Ready() bool {
	return s.client != nil
}
