package minio

import (
	"Classfeed/internal/api/config"
	"context"
	log "log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var Client *minio.Client
var BucketName string

// Init 初始化 MinIO 客户端，附件存储的唯一入口
func Init() error {
	cfg := config.Cfg.MinIO

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return err
	}

	Client = client
	BucketName = cfg.Bucket

	exists, err := client.BucketExists(context.Background(), BucketName)
	if err != nil {
		return err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), BucketName, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}

	log.Info("MinIO initialized successfully", "bucket", BucketName)
	return nil
}
