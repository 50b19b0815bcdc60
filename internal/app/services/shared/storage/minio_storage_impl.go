package storage

import (
	"bytes"
	"context"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/pkg/exceptions"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	MinioClient *minio.Client
	BucketName  string
}

func NewMinioStorage(minioClient *minio.Client, bucketName string) contracts.StorageService {
	return &minioStorage{
		MinioClient: minioClient,
		BucketName:  bucketName,
	}
}

func (m *minioStorage) UploadObject(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	exists, err := m.MinioClient.BucketExists(ctx, m.BucketName)
	if err != nil {
		return "", exceptions.ErrStorageUpload(err)
	}
	if !exists {
		if err := m.MinioClient.MakeBucket(ctx, m.BucketName, minio.MakeBucketOptions{}); err != nil {
			return "", exceptions.ErrStorageUpload(err)
		}
	}

	_, err = m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", exceptions.ErrStorageUpload(err)
	}

	return objectName, nil
}
