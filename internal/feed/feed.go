package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/dmorgan81/artbot/internal/record"
	"github.com/gorilla/feeds"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const Size = 50

type Generator struct {
	recorder record.Recorder
	siteURL  string
}

func NewGenerator(i *do.Injector) (*Generator, error) {
	return New(do.MustInvoke[record.Recorder](i), do.MustInvoke[*config.Settings](i).SiteURL), nil
}

func New(recorder record.Recorder, siteURL string) *Generator {
	return &Generator{recorder: recorder, siteURL: siteURL}
}

func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("feed")
	log.Info("generating rss feed")

	recent, err := g.recorder.Recent(ctx, Size)
	if err != nil {
		return nil, err
	}

	feed := feeds.Feed{
		Title:       "artbot",
		Description: "AI generated QR codes, gingerbread art and cyberpunk type",
		Link:        &feeds.Link{Href: g.siteURL},
		Updated:     time.Now(),
	}
	feed.Items = lo.Map(recent, func(gen record.Generation, _ int) *feeds.Item {
		return &feeds.Item{
			Id:          gen.ID,
			Title:       fmt.Sprintf("%s: %s", gen.Type, gen.Prompt),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/g/%s", g.siteURL, gen.ID)},
			Description: fmt.Sprintf(`<img src="%s" alt="">`, gen.Image),
			Created:     gen.CreatedAt,
		}
	})
	if len(recent) > 0 {
		feed.Updated = recent[0].CreatedAt
	}

	rss, err := feed.ToRss()
	return []byte(rss), err
}
