package record

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/log"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const recentKey = "generations:recent"

type RedisRecorder struct {
	client *redis.Client
	prefix string
}

func NewRedisRecorder(i *do.Injector) (Recorder, error) {
	settings := do.MustInvoke[*config.Settings](i)
	opts, err := redis.ParseURL(settings.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return NewRedis(redis.NewClient(opts), settings.RedisPrefix), nil
}

func NewRedis(client *redis.Client, prefix string) *RedisRecorder {
	return &RedisRecorder{client: client, prefix: prefix}
}

func (r *RedisRecorder) key(id string) string {
	return r.prefix + id
}

func (r *RedisRecorder) Record(ctx context.Context, g Generation) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("redis").With("key", r.key(g.ID))
	log.Info("writing generation record")

	created := g.CreatedAt.UnixMilli()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(g.ID), map[string]any{
			"type":          g.Type,
			"prompt":        g.Prompt,
			"image":         g.Image,
			"model_latency": g.ModelLatency,
			"model_id":      g.ModelID,
			"created_at":    created,
		})
		pipe.ZAdd(ctx, r.prefix+recentKey, redis.Z{Score: float64(created), Member: g.ID})
		return nil
	})
	return err
}

func (r *RedisRecorder) Lookup(ctx context.Context, id string) (Generation, error) {
	// ids never contain ':', so this keeps lookups off the index keys
	if id == "" || strings.Contains(id, ":") {
		return Generation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return Generation{}, err
	}
	if len(fields) == 0 {
		return Generation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	latency, _ := strconv.ParseInt(fields["model_latency"], 10, 64)
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	return Generation{
		ID:           id,
		Type:         fields["type"],
		Prompt:       fields["prompt"],
		Image:        fields["image"],
		ModelLatency: latency,
		ModelID:      fields["model_id"],
		CreatedAt:    lo.Ternary(created > 0, time.UnixMilli(created).UTC(), time.Time{}),
	}, nil
}

func (r *RedisRecorder) Recent(ctx context.Context, n int) ([]Generation, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := r.client.ZRevRange(ctx, r.prefix+recentKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	found := make([]*Generation, len(ids))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for idx, id := range ids {
		idx, id := idx, id
		group.Go(func() error {
			g, err := r.Lookup(ctx, id)
			if err != nil {
				// the hash may have been evicted by the store's retention policy
				return lo.Ternary(errors.Is(err, ErrNotFound), nil, err)
			}
			found[idx] = &g
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return lo.FilterMap(found, func(g *Generation, _ int) (Generation, bool) {
		return lo.FromPtr(g), g != nil
	}), nil
}

func (r *RedisRecorder) Shutdown() error {
	return r.client.Close()
}
