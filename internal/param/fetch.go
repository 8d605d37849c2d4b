package param

import "context"

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// StaticFetcher serves parameters from memory.
type StaticFetcher map[string][]string

func (f StaticFetcher) Fetch(_ context.Context, path string) (string, error) {
	values, ok := f[path]
	if !ok || len(values) == 0 {
		return "", &NotFoundError{Path: path}
	}
	return values[0], nil
}

func (f StaticFetcher) FetchAll(_ context.Context, path string) ([]string, error) {
	values, ok := f[path]
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	return values, nil
}

// Layered answers paths set in Local from memory and sends the rest to Remote.
// Remote may be nil when every parameter is configured inline.
type Layered struct {
	Local  StaticFetcher
	Remote Fetcher
}

func (f *Layered) Fetch(ctx context.Context, path string) (string, error) {
	if _, ok := f.Local[path]; ok || f.Remote == nil {
		return f.Local.Fetch(ctx, path)
	}
	return f.Remote.Fetch(ctx, path)
}

func (f *Layered) FetchAll(ctx context.Context, path string) ([]string, error) {
	if _, ok := f.Local[path]; ok || f.Remote == nil {
		return f.Local.FetchAll(ctx, path)
	}
	return f.Remote.FetchAll(ctx, path)
}

type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "parameter not found: " + e.Path
}
