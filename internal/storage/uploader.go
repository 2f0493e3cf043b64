package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader загружает фотографии в S3 и возвращает публичный URL
type Uploader struct {
	Client           *s3.Client
	Bucket           string
	Region           string
	CloudFrontDomain string
}

// Config параметры подключения к S3, читаются из окружения в NewUploaderFromEnv
type Config struct {
	Bucket           string
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	CloudFrontDomain string
}

// NewUploaderFromEnv создает Uploader из переменных окружения.
// Пустой S3_BUCKET означает, что S3 не настроен (nil, без ошибки) —
// обработчик загрузки в этом случае падает на локальный диск.
func NewUploaderFromEnv() (*Uploader, error) {
	cfg := Config{
		Bucket:           os.Getenv("S3_BUCKET"),
		Region:           os.Getenv("S3_REGION"),
		AccessKeyID:      os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		CloudFrontDomain: os.Getenv("S3_CLOUDFRONT_DOMAIN"),
	}
	if cfg.Bucket == "" {
		return nil, nil
	}
	return NewUploader(cfg)
}

func NewUploader(cfg Config) (*Uploader, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Uploader{
		Client:           s3.NewFromConfig(sdkConfig),
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
	}, nil
}

// UploadFile загружает файл в S3 и возвращает его URL
func (u *Uploader) UploadFile(ctx context.Context, file io.Reader, objectKey string, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	if u.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey), nil
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey), nil
}
