package generate

import (
	"strings"
)

// Request is the decoded body of a generation request.
type Request interface {
	Validate() error
	UserPrompt() string
	// ModelInput builds the model input, omitting absent optional fields.
	ModelInput(trigger string) any
}

func validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrPromptRequired
	}
	return nil
}

type QRRequest struct {
	URL                 string   `json:"url"`
	Prompt              string   `json:"prompt"`
	QRConditioningScale *float64 `json:"qr_conditioning_scale,omitempty"`
	NumInferenceSteps   *int     `json:"num_inference_steps,omitempty"`
	GuidanceScale       *float64 `json:"guidance_scale,omitempty"`
	NegativePrompt      *string  `json:"negative_prompt,omitempty"`
}

func (r QRRequest) Validate() error {
	if err := validatePrompt(r.Prompt); err != nil {
		return err
	}
	if strings.TrimSpace(r.URL) == "" {
		return ErrURLRequired
	}
	return nil
}

func (r QRRequest) UserPrompt() string { return r.Prompt }

func (r QRRequest) ModelInput(trigger string) any {
	r.Prompt = trigger + r.Prompt
	return r
}

type GingerbreadRequest struct {
	Prompt string `json:"prompt"`
}

func (r GingerbreadRequest) Validate() error { return validatePrompt(r.Prompt) }

func (r GingerbreadRequest) UserPrompt() string { return r.Prompt }

func (r GingerbreadRequest) ModelInput(trigger string) any {
	return GingerbreadRequest{Prompt: trigger + r.Prompt}
}

type CyberpunkRequest struct {
	Prompt         string   `json:"prompt"`
	AspectRatio    *string  `json:"aspect_ratio,omitempty"`
	GuidanceScale  *float64 `json:"guidance_scale,omitempty"`
	ExtraLoraScale *float64 `json:"extra_lora_scale,omitempty"`
}

func (r CyberpunkRequest) Validate() error { return validatePrompt(r.Prompt) }

func (r CyberpunkRequest) UserPrompt() string { return r.Prompt }

func (r CyberpunkRequest) ModelInput(trigger string) any {
	r.Prompt = trigger + r.Prompt
	return r
}

// Kind configures the pipeline for one content type.
type Kind[R Request] struct {
	// Name tags records and namespaces blob paths.
	Name string
	// Label names the content type in error messages.
	Label       string
	ModelID     string
	Trigger     string
	ContentType string
}

var (
	QR = Kind[QRRequest]{
		Name:        "qr",
		Label:       "QR code",
		ModelID:     "zylim0702/qr_code_controlnet:628e604e13cf63d8ec58bd4d238474e8986b054bc5e1326e50995fdbc851c557",
		ContentType: "image/png",
	}
	Gingerbread = Kind[GingerbreadRequest]{
		Name:        "gingerbread",
		Label:       "gingerbread",
		ModelID:     "fofr/flux-gingerbread:503940bae1420b7b37ca91b8ff0f3a43974b48143225f2a6eeadd0d099f13e6f",
		Trigger:     "GINGERBREAD ",
		ContentType: "image/png",
	}
	Cyberpunk = Kind[CyberpunkRequest]{
		Name:        "cyberpunk",
		Label:       "cyberpunk",
		ModelID:     "fofr/flux-cyberpunk-typeface:0a155773ae9a59d4cf87c778776024f5826f1e1c70dc2b817dae5732937dd1e1",
		Trigger:     "cyberpunk typeface ",
		ContentType: "image/webp",
	}
)
