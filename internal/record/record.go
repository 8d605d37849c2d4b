package record

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("generation not found")

// Generation is the metadata kept for one generated image. Records are
// written once and never updated.
type Generation struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Prompt       string    `json:"prompt"`
	Image        string    `json:"image"`
	ModelLatency int64     `json:"model_latency"`
	ModelID      string    `json:"model_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Recorder interface {
	Record(context.Context, Generation) error
	Lookup(context.Context, string) (Generation, error)
	// Recent returns up to n generations, newest first.
	Recent(context.Context, int) ([]Generation, error)
}
