package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmorgan81/artbot/internal/image"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/dmorgan81/artbot/internal/model"
	"github.com/dmorgan81/artbot/internal/record"
	"github.com/dmorgan81/artbot/internal/store"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength   = 7

	SaveWarningHeader = "X-Save-Warning"
	SaveWarning       = "Failed to process/save image"
)

func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

type Output struct {
	ImageURL       string `json:"image_url"`
	ModelLatencyMs int64  `json:"model_latency_ms"`
	ID             string `json:"id"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

// Response is the transport-independent result of one generation.
type Response struct {
	Status int
	// Warning is set when the image was generated but not persisted.
	Warning string
	Body    any
	// Err is the underlying failure, if any. It is never sent to callers.
	Err error
}

func failure(status int, message string, err error) Response {
	return Response{Status: status, Body: ErrorBody{Error: message}, Err: err}
}

type Pipeline struct {
	Runner   model.Runner
	Fetcher  image.Fetcher
	Uploader store.Uploader
	Recorder record.Recorder
	NewID    func() (string, error)
}

func NewPipeline(i *do.Injector) (*Pipeline, error) {
	return &Pipeline{
		Runner:   do.MustInvoke[model.Runner](i),
		Fetcher:  do.MustInvoke[image.Fetcher](i),
		Uploader: do.MustInvoke[store.Uploader](i),
		Recorder: do.MustInvoke[record.Recorder](i),
		NewID:    NewID,
	}, nil
}

func decode[R Request](body []byte) (R, error) {
	var req R
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			switch typeErr.Field {
			case "", "prompt":
				return req, ErrPromptRequired
			case "url":
				return req, ErrURLRequired
			}
		}
		return req, ErrInvalidBody
	}
	return req, req.Validate()
}

// firstURL expects a non-empty array whose first element is a string.
func firstURL(out json.RawMessage) (string, error) {
	var items []any
	if err := json.Unmarshal(out, &items); err != nil || len(items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrOutputFormat, out)
	}
	url, ok := items[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrOutputFormat, out)
	}
	return url, nil
}

// Run handles one request end to end. Failures before an image exists are
// hard errors; failures while saving fall back to the model's own URL.
func (k Kind[R]) Run(ctx context.Context, p *Pipeline, body []byte) Response {
	ctx, logger := log.With(ctx, "kind", k.Name)

	req, err := decode[R](body)
	if err != nil {
		logger.Warn("rejecting request", "error", err)
		return failure(http.StatusBadRequest, lo.ValueOr(validationMessages, err, err.Error()), err)
	}

	id, err := p.NewID()
	if err != nil {
		logger.Error("failed to generate id", "error", err)
		return failure(http.StatusInternalServerError, fmt.Sprintf("Failed to generate %s image", k.Label), err)
	}
	ctx, logger = log.With(ctx, "id", id)

	logger.Info("starting prediction", "model", k.ModelID)
	start := time.Now()
	out, err := p.Runner.Run(ctx, k.ModelID, req.ModelInput(k.Trigger))
	latency := time.Since(start).Round(time.Millisecond).Milliseconds()

	var imageURL string
	if err == nil {
		imageURL, err = firstURL(out)
	}
	if err != nil {
		logger.Error("prediction failed", "error", err, "latency_ms", latency)
		return failure(http.StatusInternalServerError, fmt.Sprintf("Failed to generate %s image", k.Label), err)
	}
	logger.Info("prediction finished", "latency_ms", latency, "image", imageURL)

	durable, err := k.save(ctx, p, id, req.UserPrompt(), imageURL, latency)
	if err != nil {
		if imageURL == "" {
			logger.Error("saving failed with no image to fall back to", "error", err)
			return failure(http.StatusInternalServerError, fmt.Sprintf("Failed to generate or save %s image result", k.Label), err)
		}
		logger.Warn("saving failed, falling back to model url", "error", err)
		return Response{
			Status:  http.StatusOK,
			Warning: SaveWarning,
			Body:    Output{ImageURL: imageURL, ModelLatencyMs: latency, ID: id},
			Err:     err,
		}
	}

	logger.Info("request processed", "image", durable, "total_ms", time.Since(start).Milliseconds())
	return Response{
		Status: http.StatusOK,
		Body:   Output{ImageURL: durable, ModelLatencyMs: latency, ID: id},
	}
}

// save copies the image to blob storage and then records its metadata.
func (k Kind[R]) save(ctx context.Context, p *Pipeline, id, prompt, imageURL string, latency int64) (string, error) {
	img, err := p.Fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", &SaveError{Step: "fetch image", Err: err}
	}

	contentType := lo.Ternary(img.ContentType != "", img.ContentType, k.ContentType)
	ext := lo.Ternary(image.Extension(contentType) != "", image.Extension(contentType), image.Extension(k.ContentType))
	durable, err := p.Uploader.Upload(ctx, store.UploadParams{
		Name:        fmt.Sprintf("%s/%s.%s", k.Name, id, ext),
		Data:        img.Data,
		ContentType: contentType,
		Metadata:    map[string]string{"id": id, "kind": k.Name},
	})
	if err != nil {
		return "", &SaveError{Step: "upload image", Err: err}
	}

	err = p.Recorder.Record(ctx, record.Generation{
		ID:           id,
		Type:         k.Name,
		Prompt:       prompt,
		Image:        durable,
		ModelLatency: latency,
		ModelID:      k.ModelID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", &SaveError{Step: "record metadata", Err: err}
	}
	return durable, nil
}
