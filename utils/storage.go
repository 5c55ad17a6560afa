// utils/storage.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var storageClient *s3.Client
var storageBucket string
var assetBaseURL string

// InitObjectStorage configures the S3-compatible client that holds
// achievement icon assets.
func InitObjectStorage() error {
	endpoint := os.Getenv("OBJECT_STORAGE_ENDPOINT")
	accessKeyID := os.Getenv("OBJECT_STORAGE_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("OBJECT_STORAGE_ACCESS_KEY_SECRET")
	storageBucket = os.Getenv("OBJECT_STORAGE_BUCKET")
	assetBaseURL = os.Getenv("ASSET_BASE_URL")
	if assetBaseURL == "" {
		assetBaseURL = fmt.Sprintf("%s/%s", endpoint, storageBucket)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load object storage config: %w", err)
	}

	storageClient = s3.NewFromConfig(cfg)
	return nil
}

// UploadIcon stores an uploaded achievement icon and returns its public URL.
// key is the object key (e.g., "icons/abc123.svg").
func UploadIcon(fileHeader *multipart.FileHeader, key string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open icon file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read icon file: %w", err)
	}

	_, err = storageClient.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(storageBucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload icon: %w", err)
	}

	return fmt.Sprintf("%s/%s", assetBaseURL, key), nil
}
