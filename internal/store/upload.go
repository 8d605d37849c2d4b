package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/samber/do"
)

var ErrInvalidName = errors.New("invalid object name")

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// Uploader stores an object and returns a URL that stays valid long term.
type Uploader interface {
	Upload(context.Context, UploadParams) (string, error)
}

func joinURL(base, name string) string {
	return strings.TrimSuffix(base, "/") + "/" + name
}

type FileUploader struct {
	Dir     string
	BaseURL string
}

func NewFileUploader(i *do.Injector) (Uploader, error) {
	settings := do.MustInvoke[*config.Settings](i)
	return &FileUploader{Dir: settings.FileDir, BaseURL: settings.FilesURL()}, nil
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", params.Name, "dir", u.Dir)

	if !filepath.IsLocal(params.Name) {
		return "", ErrInvalidName
	}
	path := filepath.Join(u.Dir, filepath.FromSlash(params.Name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, params.Data, 0644); err != nil {
		return "", err
	}
	return joinURL(u.BaseURL, params.Name), nil
}
