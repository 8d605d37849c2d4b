package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/dmorgan81/artbot/internal/prompt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const maxBodyBytes = 1 << 20

func write(c echo.Context, r Reply) error {
	for k, v := range r.Header {
		c.Response().Header().Set(k, v)
	}
	return c.Blob(r.Status, r.ContentType, r.Body)
}

// NewServer builds the HTTP transport. filesDir is served under /files when non-empty.
func NewServer(h *Handler, logger *slog.Logger, filesDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(log.NewContext(req.Context(), logger)))
			return next(c)
		}
	})
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	for path, kind := range GenerateRoutes {
		kind := kind
		e.POST(path, func(c echo.Context) error {
			body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes))
			if err != nil {
				return write(c, errorReply(http.StatusBadRequest, "Invalid request body"))
			}
			return write(c, h.Generate(c.Request().Context(), kind, body))
		})
	}

	e.GET("/api/generations/:id", func(c echo.Context) error {
		return write(c, h.Lookup(c.Request().Context(), c.Param("id")))
	})
	e.GET("/api/prompts/:kind", func(c echo.Context) error {
		return write(c, h.Prompts(c.Request().Context(), c.Param("kind"), parseCount(c.QueryParam("count"))))
	})
	e.GET("/g/:id", func(c echo.Context) error {
		return write(c, h.Share(c.Request().Context(), c.Param("id")))
	})
	e.GET("/feed.rss", func(c echo.Context) error {
		return write(c, h.Feed(c.Request().Context()))
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if filesDir != "" {
		e.Static("/files", filesDir)
	}
	return e
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return prompt.DefaultCount
	}
	return n
}

// FilesDir is the directory to serve locally, if blobs are written to disk.
func FilesDir(settings *config.Settings) string {
	if settings.BlobBackend != config.BlobFile {
		return ""
	}
	return settings.FileDir
}
