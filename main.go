package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/handler"
	"github.com/dmorgan81/artbot/internal/inject"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "artbot",
		Short:         "Generate QR code, gingerbread and cyberpunk images with Replicate",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
				return runLambda()
			}
			return runServe()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "lambda",
		Short: "Serve the API as an AWS Lambda function behind API Gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLambda()
		},
	})
	return cmd
}

func setup(onLambda bool) (context.Context, *config.Settings, *do.Injector, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := log.New(os.Stderr, log.Options{Level: settings.LogLevel, Lambda: onLambda})
	ctx := log.NewContext(context.Background(), logger)
	return ctx, settings, inject.Setup(ctx, settings), nil
}

func runServe() error {
	ctx, settings, injector, err := setup(false)
	if err != nil {
		return err
	}
	defer func() { _ = injector.Shutdown() }()

	logger := log.FromContextOrDiscard(ctx)
	h, err := do.Invoke[*handler.Handler](injector)
	if err != nil {
		return err
	}
	server := handler.NewServer(h, logger, handler.FilesDir(settings))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", settings.ListenAddr)
		errs <- server.Start(settings.ListenAddr)
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runLambda() error {
	ctx, _, injector, err := setup(true)
	if err != nil {
		return err
	}
	l, err := do.Invoke[*handler.Lambda](injector)
	if err != nil {
		return err
	}
	lambda.StartWithOptions(l.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
		_ = injector.Shutdown()
	}))
	return nil
}
