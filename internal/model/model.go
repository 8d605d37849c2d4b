package model

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrTokenRequired = errors.New("replicate API token is required")
	ErrEmptyOutput   = errors.New("model returned no output")
	ErrPrediction    = errors.New("prediction did not succeed")
	ErrAPIStatus     = errors.New("unexpected replicate API status")
	ErrModelID       = errors.New("invalid model identifier")
)

// Runner invokes a hosted model and returns its raw output. Output shape is
// model specific and left to the caller.
type Runner interface {
	Run(ctx context.Context, modelID string, input any) (json.RawMessage, error)
}

// nullish reports whether raw output carries nothing usable.
func nullish(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", `""`:
		return true
	}
	return false
}
