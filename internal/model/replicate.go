package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/replicate/replicate-go"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const DefaultBaseURL = "https://api.replicate.com/v1"

type ReplicateRunner struct {
	Client       *replicate.Client
	BaseURL      string
	PollInterval time.Duration
}

func NewReplicateRunner(i *do.Injector) (Runner, error) {
	settings := do.MustInvoke[*config.Settings](i)
	r, err := NewReplicate(
		do.MustInvoke[*http.Client](i),
		do.MustInvokeNamed[string](i, "replicate_token"),
		settings.ReplicateBaseURL,
		settings.ReplicatePollInterval,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func NewReplicate(httpClient *http.Client, token, baseURL string, poll time.Duration) (*ReplicateRunner, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	baseURL = strings.TrimSuffix(lo.Ternary(baseURL != "", baseURL, DefaultBaseURL), "/")
	client, err := replicate.NewClient(
		replicate.WithToken(token),
		replicate.WithBaseURL(baseURL),
		replicate.WithHTTPClient(lo.Ternary(httpClient != nil, httpClient, http.DefaultClient)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create replicate client: %w", err)
	}
	return &ReplicateRunner{
		Client:       client,
		BaseURL:      baseURL,
		PollInterval: lo.Ternary(poll > 0, poll, time.Second),
	}, nil
}

func (r *ReplicateRunner) Run(ctx context.Context, modelID string, input any) (json.RawMessage, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("replicate").With("model", modelID)
	log.Info("creating prediction")

	in, err := predictionInput(input)
	if err != nil {
		return nil, err
	}
	p, err := r.create(ctx, modelID, in)
	if err != nil {
		return nil, err
	}

	if !terminal(p.Status) {
		log.Debug("waiting for prediction", "prediction", p.ID, "status", p.Status)
		if err := r.Client.Wait(ctx, p, replicate.WithPollingInterval(r.PollInterval)); err != nil {
			return nil, apiError(err)
		}
	}

	if p.Status != replicate.Succeeded {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrPrediction, p.ID, p.Status, p.Error)
	}
	out, err := json.Marshal(p.Output)
	if err != nil {
		return nil, err
	}
	if nullish(out) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyOutput, modelID)
	}

	log.Info("prediction succeeded", "prediction", p.ID)
	return out, nil
}

// create uses the versioned endpoint for owner/name:version and the
// model-scoped one for owner/name.
func (r *ReplicateRunner) create(ctx context.Context, modelID string, in replicate.PredictionInput) (*replicate.Prediction, error) {
	name, version, versioned := strings.Cut(modelID, ":")
	owner, model, ok := strings.Cut(name, "/")
	if !ok || owner == "" || model == "" || strings.Contains(model, "/") || (versioned && version == "") {
		return nil, fmt.Errorf("%w: %q", ErrModelID, modelID)
	}

	var (
		p   *replicate.Prediction
		err error
	)
	if versioned {
		p, err = r.Client.CreatePrediction(ctx, version, in, nil, false)
	} else {
		p, err = r.Client.CreatePredictionWithModel(ctx, owner, model, in, nil, false)
	}
	if err != nil {
		return nil, apiError(err)
	}
	return p, nil
}

func predictionInput(input any) (replicate.PredictionInput, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model input: %w", err)
	}
	var in replicate.PredictionInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("model input must be an object: %w", err)
	}
	return lo.Ternary(in != nil, in, replicate.PredictionInput{}), nil
}

func terminal(s replicate.Status) bool {
	return lo.Contains([]replicate.Status{replicate.Succeeded, replicate.Failed, replicate.Canceled}, s)
}

func apiError(err error) error {
	var apiErr *replicate.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", ErrAPIStatus, err)
	}
	return err
}
