package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dmorgan81/artbot/internal/log"
	"github.com/samber/do"
)

// MaxBytes caps a downloaded image.
const MaxBytes = 32 << 20

var (
	ErrFetchStatus = errors.New("failed to fetch image")
	ErrTooLarge    = errors.New("image exceeds size limit")
)

type Image struct {
	Data []byte
	// ContentType is empty when the origin did not report a usable type.
	ContentType string
}

type Fetcher interface {
	Fetch(context.Context, string) (Image, error)
}

type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(i *do.Injector) (Fetcher, error) {
	return &HTTPFetcher{Client: do.MustInvoke[*http.Client](i)}, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Image, error) {
	log := log.FromContextOrDiscard(ctx).With("url", url)
	log.Info("fetching image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, fmt.Errorf("%w: %s", ErrFetchStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes+1))
	if err != nil {
		return Image{}, err
	}
	if len(data) > MaxBytes {
		return Image{}, ErrTooLarge
	}

	img := Image{Data: data, ContentType: mediaType(resp.Header.Get("Content-Type"))}
	log.Info("fetched image", "size", len(data), "content-type", img.ContentType)
	return img, nil
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil || mt == "application/octet-stream" {
		return ""
	}
	return mt
}

// Extension derives a file extension from a content type's subtype.
func Extension(contentType string) string {
	_, sub, ok := strings.Cut(contentType, "/")
	if !ok {
		return ""
	}
	return sub
}
