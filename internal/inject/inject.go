package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/feed"
	"github.com/dmorgan81/artbot/internal/generate"
	"github.com/dmorgan81/artbot/internal/handler"
	"github.com/dmorgan81/artbot/internal/image"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/dmorgan81/artbot/internal/model"
	"github.com/dmorgan81/artbot/internal/page"
	"github.com/dmorgan81/artbot/internal/param"
	"github.com/dmorgan81/artbot/internal/prompt"
	"github.com/dmorgan81/artbot/internal/record"
	"github.com/dmorgan81/artbot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

func Setup(ctx context.Context, settings *config.Settings) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Settings](injector, settings)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	tokenPath := lo.Ternary(settings.ReplicateTokenParam != "", settings.ReplicateTokenParam, "replicate_token")
	promptsPath := lo.Ternary(settings.PromptsParam != "", settings.PromptsParam, "prompts")
	do.Provide[param.Fetcher](injector, func(i *do.Injector) (param.Fetcher, error) {
		f := &param.Layered{Local: param.StaticFetcher{}}
		if settings.ReplicateTokenParam == "" {
			f.Local[tokenPath] = []string{settings.ReplicateToken}
		}
		if settings.PromptsParam == "" {
			f.Local[promptsPath] = nil
		}
		if settings.ReplicateTokenParam != "" || settings.PromptsParam != "" {
			remote, err := param.NewParameterStoreFetcher(i)
			if err != nil {
				return nil, err
			}
			f.Remote = remote
		}
		return f, nil
	})
	do.ProvideNamed[string](injector, "replicate_token", func(i *do.Injector) (string, error) {
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, tokenPath)
	})
	do.ProvideNamed[[]string](injector, "prompts", func(i *do.Injector) ([]string, error) {
		return do.MustInvoke[param.Fetcher](i).FetchAll(ctx, promptsPath)
	})

	do.Provide[model.Runner](injector, model.NewReplicateRunner)
	do.Provide[image.Fetcher](injector, image.NewHTTPFetcher)
	do.Provide[store.Uploader](injector, func(i *do.Injector) (store.Uploader, error) {
		switch settings.BlobBackend {
		case config.BlobMinio:
			return store.NewMinioUploader(i)
		case config.BlobFile:
			return store.NewFileUploader(i)
		default:
			return store.NewS3Uploader(i)
		}
	})
	do.Provide[record.Recorder](injector, func(i *do.Injector) (record.Recorder, error) {
		if settings.RecordBackend == config.RecordSQLite {
			return record.NewSQLiteRecorder(i)
		}
		return record.NewRedisRecorder(i)
	})

	do.Provide[*generate.Pipeline](injector, generate.NewPipeline)
	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*feed.Generator](injector, feed.NewGenerator)

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*handler.Lambda](injector, handler.NewLambda)

	return injector
}
