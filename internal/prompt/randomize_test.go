package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRandomizer_Suggest(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	tests := []struct {
		kind  string
		count int
		want  int
		check func(string) bool
	}{
		{"gingerbread", 4, 4, func(p string) bool { return strings.HasPrefix(p, "a gingerbread ") }},
		{"cyberpunk", 3, 3, func(p string) bool { return strings.Contains(p, " in a Cyberpunk typeface ") }},
		{"qr", 2, 2, func(p string) bool { return strings.Count(p, ", ") == 3 }},
		{"qr", 0, 1, func(string) bool { return true }},
		{"cyberpunk", 50, MaxCount, func(string) bool { return true }},
	}

	for _, tt := range tests {
		got, err := r.Suggest(ctx, tt.kind, tt.count)
		if err != nil {
			t.Fatalf("Suggest(%s, %d) error = %v", tt.kind, tt.count, err)
		}
		if len(got) != tt.want {
			t.Errorf("Suggest(%s, %d) returned %d prompts, want %d", tt.kind, tt.count, len(got), tt.want)
		}
		for _, p := range got {
			if !tt.check(p) {
				t.Errorf("Suggest(%s) produced unexpected prompt %q", tt.kind, p)
			}
		}
	}
}

func TestRandomizer_SuggestUnknownKind(t *testing.T) {
	_, err := New(nil).Suggest(context.Background(), "watercolor", 4)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Suggest() error = %v, want ErrUnknownKind", err)
	}
}

func TestRandomizer_ExtraPrompts(t *testing.T) {
	r := New([]string{"gingerbread|a gingerbread robot", "malformed", "cyberpunk| "})
	if got := r.extra["gingerbread"]; len(got) != 1 || got[0] != "a gingerbread robot" {
		t.Errorf("extra gingerbread = %v", got)
	}
	if _, ok := r.extra["cyberpunk"]; ok {
		t.Error("blank extra prompt kept")
	}

	got, err := r.Suggest(context.Background(), "gingerbread", MaxCount)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range got {
		if !strings.HasPrefix(p, "a gingerbread ") {
			t.Errorf("unexpected prompt %q", p)
		}
	}
}

func TestRandomizer_Kinds(t *testing.T) {
	if got := len(New(nil).Kinds()); got != 3 {
		t.Errorf("Kinds() = %d kinds, want 3", got)
	}
}
