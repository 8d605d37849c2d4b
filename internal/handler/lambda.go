package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/samber/do"
)

// Lambda serves API Gateway HTTP API events with the same routes as the
// HTTP server. Blobs are never served from local disk under Lambda.
type Lambda struct {
	handler *Handler
}

func NewLambda(i *do.Injector) (*Lambda, error) {
	return &Lambda{handler: do.MustInvoke[*Handler](i)}, nil
}

func (l *Lambda) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := req.RequestContext.HTTP.Method
	path := req.RawPath
	ctx, logger := log.With(ctx, "method", method, "path", path, "request", req.RequestContext.RequestID)
	logger.Info("handling lambda invocation")

	reply := l.route(ctx, method, path, req)

	headers := map[string]string{"Content-Type": reply.ContentType}
	for k, v := range reply.Header {
		headers[k] = v
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: reply.Status,
		Headers:    headers,
		Body:       string(reply.Body),
	}, nil
}

func (l *Lambda) route(ctx context.Context, method, path string, req events.APIGatewayV2HTTPRequest) Reply {
	h := l.handler
	if kind, ok := GenerateRoutes[path]; ok {
		if method != http.MethodPost {
			return errorReply(http.StatusMethodNotAllowed, "Method Not Allowed")
		}
		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return errorReply(http.StatusBadRequest, "Invalid request body")
			}
			body = decoded
		}
		return h.Generate(ctx, kind, body)
	}

	if method != http.MethodGet {
		return errorReply(http.StatusMethodNotAllowed, "Method Not Allowed")
	}
	switch {
	case strings.HasPrefix(path, "/api/generations/"):
		return h.Lookup(ctx, strings.TrimPrefix(path, "/api/generations/"))
	case strings.HasPrefix(path, "/api/prompts/"):
		return h.Prompts(ctx, strings.TrimPrefix(path, "/api/prompts/"), parseCount(req.QueryStringParameters["count"]))
	case strings.HasPrefix(path, "/g/"):
		return h.Share(ctx, strings.TrimPrefix(path, "/g/"))
	case path == "/feed.rss":
		return h.Feed(ctx)
	case path == "/healthz":
		return Reply{Status: http.StatusOK, ContentType: "text/plain; charset=utf-8", Body: []byte("ok")}
	}
	return errorReply(http.StatusNotFound, "Not Found")
}
