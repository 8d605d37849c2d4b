package generate

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBody    = errors.New("invalid request body")
	ErrPromptRequired = errors.New("prompt is required")
	ErrURLRequired    = errors.New("url is required")
)

var validationMessages = map[error]string{
	ErrInvalidBody:    "Invalid request body",
	ErrPromptRequired: "Prompt is required",
	ErrURLRequired:    "URL is required",
}

var ErrOutputFormat = errors.New("unexpected output format")

// SaveError reports a failure after the model produced an image.
type SaveError struct {
	Step string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Step, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
