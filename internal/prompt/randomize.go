package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/artbot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const (
	DefaultCount = 4
	MaxCount     = 10
)

var ErrUnknownKind = errors.New("unknown kind")

type builder func() string

var (
	landscapes = []string{
		"a misty mountain valley at dawn",
		"a lavender field under a summer sky",
		"a waterfall in a tropical rainforest",
		"a snowy pine forest at dusk",
		"rolling green hills with a winding river",
		"a desert canyon lit by the setting sun",
		"a quiet lake surrounded by autumn trees",
		"terraced rice fields in the morning fog",
	}
	flavors = []string{
		"highly detailed",
		"beautiful",
		"photorealistic",
		"golden hour lighting",
		"8k",
	}

	gingerbreadSubjects = []string{
		"a gingerbread man",
		"a gingerbread house",
		"a gingerbread family",
		"a gingerbread village",
		"a gingerbread castle",
		"a gingerbread baker",
		"a gingerbread knight",
	}
	gingerbreadSettings = []string{
		"in the snow",
		"by a fireplace",
		"in a winter forest",
		"at a christmas market",
		"in a bakery",
		"with candy decorations",
		"with frosting details",
	}

	cyberpunkWords = []string{
		`"Cyber"`, `"Neon"`, `"Future"`, `"Digital"`, `"Tech"`,
		`"Synth"`, `"Retro"`, `"Hack"`, `"Tokyo"`, `"Ghost"`,
	}
	cyberpunkBackgrounds = []string{
		"on a rainy street",
		"with glitch effects",
		"on a circuit board",
		"against a cityscape",
		"in a neon alley",
		"with holographic projections",
		"in a dystopian metropolis",
		"with synthwave aesthetics",
		"in a digital void",
		"with cybernetic elements",
	}
)

var builders = map[string]builder{
	"qr": func() string {
		return lo.Sample(landscapes) + ", " + strings.Join(lo.Samples(flavors, 3), ", ")
	},
	"gingerbread": func() string {
		return lo.Sample(gingerbreadSubjects) + " " + lo.Sample(gingerbreadSettings)
	},
	"cyberpunk": func() string {
		return lo.Sample(cyberpunkWords) + " in a Cyberpunk typeface " + lo.Sample(cyberpunkBackgrounds)
	},
}

// Randomizer suggests example prompts. Extra prompts are "kind|prompt" pairs.
type Randomizer struct {
	extra map[string][]string
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	return New(do.MustInvokeNamed[[]string](i, "prompts")), nil
}

func New(extra []string) *Randomizer {
	r := &Randomizer{extra: map[string][]string{}}
	for _, line := range extra {
		kind, prompt, ok := strings.Cut(line, "|")
		if !ok || strings.TrimSpace(prompt) == "" {
			continue
		}
		r.extra[kind] = append(r.extra[kind], strings.TrimSpace(prompt))
	}
	return r
}

func (r *Randomizer) Kinds() []string {
	return lo.Keys(builders)
}

func (r *Randomizer) Suggest(ctx context.Context, kind string, count int) ([]string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	log.Info("suggesting prompts", "kind", kind, "count", count)

	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	count = lo.Clamp(count, 1, MaxCount)

	extra := r.extra[kind]
	return lo.Times(count, func(int) string {
		// roughly half come from the configured pool
		if len(extra) > 0 && lo.Sample([]bool{true, false}) {
			return lo.Sample(extra)
		}
		return build()
	}), nil
}
