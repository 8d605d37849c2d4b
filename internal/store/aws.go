package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/samber/do"
)

// Objects are written once under unique keys.
const immutableCache = "public, max-age=31536000, immutable"

type S3Uploader struct {
	Client  *s3.Client
	Bucket  string
	BaseURL string
}

func NewS3Uploader(i *do.Injector) (Uploader, error) {
	settings := do.MustInvoke[*config.Settings](i)
	baseURL := settings.PublicBaseURL
	if baseURL == "" && settings.Distribution != "" {
		url, err := ResolveDistributionURL(context.Background(), do.MustInvoke[*cloudfront.Client](i), settings.Distribution)
		if err != nil {
			return nil, err
		}
		baseURL = url
	}
	if baseURL == "" {
		cfg := do.MustInvoke[aws.Config](i)
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", settings.Bucket, cfg.Region)
	}

	return &S3Uploader{
		Client:  do.MustInvoke[*s3.Client](i),
		Bucket:  settings.Bucket,
		BaseURL: baseURL,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	log := log.FromContextOrDiscard(ctx).With(
		"name", params.Name,
		"content-type", params.ContentType,
		"metadata", params.Metadata,
		"bucket", u.Bucket,
	)
	log.Info("uploading to s3")

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(params.Name),
		ContentType:  aws.String(params.ContentType),
		CacheControl: aws.String(immutableCache),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	if err != nil {
		return "", err
	}
	return joinURL(u.BaseURL, params.Name), nil
}

// ResolveDistributionURL returns the public base URL of a CloudFront distribution.
func ResolveDistributionURL(ctx context.Context, client *cloudfront.Client, distribution string) (string, error) {
	log := log.FromContextOrDiscard(ctx).With("distribution", distribution)
	log.Info("resolving cloudfront domain")

	out, err := client.GetDistribution(ctx, &cloudfront.GetDistributionInput{
		Id: aws.String(distribution),
	})
	if err != nil {
		return "", err
	}
	if out.Distribution == nil || aws.ToString(out.Distribution.DomainName) == "" {
		return "", fmt.Errorf("distribution %s has no domain name", distribution)
	}
	return "https://" + aws.ToString(out.Distribution.DomainName), nil
}
