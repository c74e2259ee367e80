package initializers

import (
	"context"
	"policy-portal-backend/config"
	s3client "policy-portal-backend/s3"

	log "github.com/sirupsen/logrus"
)

// InitS3 leaves attachments disabled when the object storage is unreachable.
func InitS3(ctx context.Context) {
	logger := log.WithField("endpoint", config.Conf.S3.Endpoint)
	minioClient, err := s3client.NewClient()
	if err != nil {
		logger.WithError(err).Error("S3 client initialization failed")
		return
	}

	instance := s3client.NewInstance(minioClient, config.Conf.S3.BucketName)
	if err = instance.MakeBucket(ctx); err != nil {
		logger.WithError(err).Error("S3 bucket check failed, attachments are disabled")
		return
	}

	s3client.Client = minioClient
	s3client.Instance = instance
	logger.Info("S3 client initialized")
}
