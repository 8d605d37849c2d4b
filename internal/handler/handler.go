package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmorgan81/artbot/internal/feed"
	"github.com/dmorgan81/artbot/internal/generate"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/dmorgan81/artbot/internal/page"
	"github.com/dmorgan81/artbot/internal/prompt"
	"github.com/dmorgan81/artbot/internal/record"
	"github.com/samber/do"
)

// GenerateRoutes maps generation endpoints to content types.
var GenerateRoutes = map[string]string{
	"/api/generate":             generate.QR.Name,
	"/api/generate-gingerbread": generate.Gingerbread.Name,
	"/api/generate-cyberpunk":   generate.Cyberpunk.Name,
}

// Reply is a fully rendered response that any transport can write out.
type Reply struct {
	Status      int
	ContentType string
	Header      map[string]string
	Body        []byte
}

func jsonReply(status int, v any) Reply {
	body, err := json.Marshal(v)
	if err != nil {
		return Reply{Status: http.StatusInternalServerError, ContentType: "application/json",
			Body: []byte(`{"error":"Internal Server Error"}`)}
	}
	return Reply{Status: status, ContentType: "application/json", Body: body}
}

func errorReply(status int, message string) Reply {
	return jsonReply(status, generate.ErrorBody{Error: message})
}

type runFunc func(context.Context, []byte) generate.Response

type Handler struct {
	recorder   record.Recorder
	randomizer *prompt.Randomizer
	templator  *page.Templator
	feed       *feed.Generator
	kinds      map[string]runFunc
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return New(
		do.MustInvoke[*generate.Pipeline](i),
		do.MustInvoke[record.Recorder](i),
		do.MustInvoke[*prompt.Randomizer](i),
		do.MustInvoke[*page.Templator](i),
		do.MustInvoke[*feed.Generator](i),
	), nil
}

func New(p *generate.Pipeline, recorder record.Recorder, randomizer *prompt.Randomizer,
	templator *page.Templator, rss *feed.Generator) *Handler {
	return &Handler{
		recorder:   recorder,
		randomizer: randomizer,
		templator:  templator,
		feed:       rss,
		kinds: map[string]runFunc{
			generate.QR.Name: func(ctx context.Context, body []byte) generate.Response {
				return generate.QR.Run(ctx, p, body)
			},
			generate.Gingerbread.Name: func(ctx context.Context, body []byte) generate.Response {
				return generate.Gingerbread.Run(ctx, p, body)
			},
			generate.Cyberpunk.Name: func(ctx context.Context, body []byte) generate.Response {
				return generate.Cyberpunk.Run(ctx, p, body)
			},
		},
	}
}

func (h *Handler) Generate(ctx context.Context, kind string, body []byte) Reply {
	run, ok := h.kinds[kind]
	if !ok {
		return errorReply(http.StatusNotFound, "Unknown generation type")
	}

	resp := run(ctx, body)
	reply := jsonReply(resp.Status, resp.Body)
	if resp.Warning != "" {
		reply.Header = map[string]string{generate.SaveWarningHeader: resp.Warning}
	}
	return reply
}

func (h *Handler) Lookup(ctx context.Context, id string) Reply {
	g, err := h.recorder.Lookup(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return errorReply(http.StatusNotFound, "Generation not found")
	}
	if err != nil {
		log.FromContextOrDiscard(ctx).Error("failed to look up generation", "id", id, "error", err)
		return errorReply(http.StatusInternalServerError, "Failed to load generation")
	}
	return jsonReply(http.StatusOK, g)
}

func (h *Handler) Prompts(ctx context.Context, kind string, count int) Reply {
	prompts, err := h.randomizer.Suggest(ctx, kind, count)
	if errors.Is(err, prompt.ErrUnknownKind) {
		return errorReply(http.StatusNotFound, "Unknown generation type")
	}
	if err != nil {
		return errorReply(http.StatusInternalServerError, "Failed to suggest prompts")
	}
	return jsonReply(http.StatusOK, map[string][]string{"prompts": prompts})
}

func (h *Handler) Share(ctx context.Context, id string) Reply {
	g, err := h.recorder.Lookup(ctx, id)
	if errors.Is(err, record.ErrNotFound) {
		return Reply{Status: http.StatusNotFound, ContentType: "text/plain; charset=utf-8", Body: []byte("Generation not found")}
	}
	if err == nil {
		var html []byte
		if html, err = h.templator.Template(ctx, page.FromGeneration(g)); err == nil {
			return Reply{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: html}
		}
	}
	log.FromContextOrDiscard(ctx).Error("failed to render share page", "id", id, "error", err)
	return Reply{Status: http.StatusInternalServerError, ContentType: "text/plain; charset=utf-8", Body: []byte("Internal Server Error")}
}

func (h *Handler) Feed(ctx context.Context) Reply {
	rss, err := h.feed.Generate(ctx)
	if err != nil {
		log.FromContextOrDiscard(ctx).Error("failed to generate feed", "error", err)
		return Reply{Status: http.StatusInternalServerError, ContentType: "text/plain; charset=utf-8", Body: []byte("Internal Server Error")}
	}
	return Reply{Status: http.StatusOK, ContentType: "application/rss+xml; charset=utf-8", Body: rss}
}
