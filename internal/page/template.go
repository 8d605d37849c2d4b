package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/artbot/internal/log"
	"github.com/dmorgan81/artbot/internal/record"
	"github.com/samber/do"
)

//go:embed assets/share.html
var shareTmpl string

type Params struct {
	Image     string
	Kind      string
	Model     string
	Prompt    string
	LatencyMs int64
}

func FromGeneration(g record.Generation) Params {
	return Params{
		Image:     g.Image,
		Kind:      g.Type,
		Model:     g.ModelID,
		Prompt:    g.Prompt,
		LatencyMs: g.ModelLatency,
	}
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(*do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("share").Parse(shareTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Info("generating page")

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
