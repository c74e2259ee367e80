package s3client

import (
	"bytes"
	"context"
	"io"
	"policy-portal-backend/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var Client *minio.Client

// Provider is the object storage used for request attachments.
type Provider interface {
	MakeBucket(ctx context.Context) error
	PutObject(ctx context.Context, objectName, contentType string, body []byte) error
	GetObject(ctx context.Context, objectName string) ([]byte, error)
}

var Instance Provider

type s3client struct {
	minioClient *minio.Client
	bucketName  string
}

func (s s3client) MakeBucket(ctx context.Context) error {
	location := "us-east-1"
	exists, err := s.minioClient.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.minioClient.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: location})
	if err != nil {
		return err
	}
	return nil
}

func (s s3client) PutObject(ctx context.Context, objectName, contentType string, body []byte) error {
	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s s3client) GetObject(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := s.minioClient.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func NewClient() (*minio.Client, error) {
	return minio.New(config.Conf.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Conf.S3.AccessKeyID, config.Conf.S3.SecretAccessKey, ""),
		Secure: *config.Conf.S3.UseSSL,
	})
}

func NewInstance(minioClient *minio.Client, bucketName string) Provider {
	return &s3client{
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}
