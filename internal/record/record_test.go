package record

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisRecorder(t *testing.T) (*RedisRecorder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	t.Cleanup(func() { _ = r.Shutdown() })
	return r, mr
}

func newSQLiteRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "artbot.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func recorders(t *testing.T) map[string]Recorder {
	redisRecorder, _ := newRedisRecorder(t)
	return map[string]Recorder{
		"redis":  redisRecorder,
		"sqlite": newSQLiteRecorder(t),
	}
}

func sample(id string, created time.Time) Generation {
	return Generation{
		ID:           id,
		Type:         "gingerbread",
		Prompt:       "a happy cat",
		Image:        "https://blob.example.com/gingerbread/" + id + ".png",
		ModelLatency: 4210,
		ModelID:      "fofr/flux-gingerbread:v1",
		CreatedAt:    created,
	}
}

func TestRecorder_RecordLookup(t *testing.T) {
	created := time.UnixMilli(1700000000123).UTC()
	for name, r := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sample("abc1234", created)
			if err := r.Record(ctx, want); err != nil {
				t.Fatalf("Record() error = %v", err)
			}

			got, err := r.Lookup(ctx, "abc1234")
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if got != want {
				t.Errorf("Lookup() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestRecorder_LookupNotFound(t *testing.T) {
	for name, r := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			_, err := r.Lookup(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Lookup() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRecorder_Recent(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	for name, r := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"first", "second", "third"} {
				if err := r.Record(ctx, sample(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
					t.Fatalf("Record(%s) error = %v", id, err)
				}
			}

			got, err := r.Recent(ctx, 2)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(got) != 2 || got[0].ID != "third" || got[1].ID != "second" {
				t.Errorf("Recent() ids = %v, want [third second]", ids(got))
			}
		})
	}
}

func TestRecorder_RecentNonPositive(t *testing.T) {
	for name, r := range recorders(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := r.Record(ctx, sample("abc1234", time.UnixMilli(1700000000000))); err != nil {
				t.Fatal(err)
			}
			for _, n := range []int{0, -1} {
				got, err := r.Recent(ctx, n)
				if err != nil || len(got) != 0 {
					t.Errorf("Recent(%d) = %v, %v, want none", n, ids(got), err)
				}
			}
		})
	}
}

func TestRedisRecorder_LookupIndexKey(t *testing.T) {
	r, _ := newRedisRecorder(t)
	ctx := context.Background()
	if err := r.Record(ctx, sample("abc1234", time.UnixMilli(1700000000000))); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{recentKey, "", "a:b"} {
		if _, err := r.Lookup(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestRedisRecorder_Layout(t *testing.T) {
	r, mr := newRedisRecorder(t)
	if err := r.Record(context.Background(), sample("abc1234", time.UnixMilli(1700000000000))); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if got := mr.HGet("abc1234", "prompt"); got != "a happy cat" {
		t.Errorf("prompt field = %q", got)
	}
	if got := mr.HGet("abc1234", "model_latency"); got != "4210" {
		t.Errorf("model_latency field = %q", got)
	}
	if got := mr.HGet("abc1234", "type"); got != "gingerbread" {
		t.Errorf("type field = %q", got)
	}
}

func TestRedisRecorder_RecentSkipsEvicted(t *testing.T) {
	r, mr := newRedisRecorder(t)
	ctx := context.Background()
	base := time.UnixMilli(1700000000000)
	for i, id := range []string{"kept", "evicted"} {
		if err := r.Record(ctx, sample(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}
	mr.Del("evicted")

	got, err := r.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "kept" {
		t.Errorf("Recent() ids = %v, want [kept]", ids(got))
	}
}

func ids(gs []Generation) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.ID
	}
	return out
}
