package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type MinioUploader struct {
	Client  *minio.Client
	Bucket  string
	BaseURL string
}

func NewMinioUploader(i *do.Injector) (Uploader, error) {
	settings := do.MustInvoke[*config.Settings](i)
	client, err := minio.New(settings.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.MinioAccessKey, settings.MinioSecretKey, ""),
		Secure: settings.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	scheme := lo.Ternary(settings.MinioSecure, "https", "http")
	baseURL := lo.Ternary(settings.PublicBaseURL != "", settings.PublicBaseURL,
		fmt.Sprintf("%s://%s/%s", scheme, settings.MinioEndpoint, settings.Bucket))

	return &MinioUploader{Client: client, Bucket: settings.Bucket, BaseURL: baseURL}, nil
}

func (u *MinioUploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	log := log.FromContextOrDiscard(ctx).With("name", params.Name, "bucket", u.Bucket)
	log.Info("uploading to minio")

	_, err := u.Client.PutObject(ctx, u.Bucket, params.Name, bytes.NewReader(params.Data), int64(len(params.Data)),
		minio.PutObjectOptions{
			ContentType:  params.ContentType,
			CacheControl: immutableCache,
			UserMetadata: params.Metadata,
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return joinURL(u.BaseURL, params.Name), nil
}
