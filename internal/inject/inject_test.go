package inject

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmorgan81/artbot/internal/config"
	"github.com/dmorgan81/artbot/internal/handler"
	"github.com/dmorgan81/artbot/internal/param"
	"github.com/dmorgan81/artbot/internal/prompt"
	"github.com/dmorgan81/artbot/internal/record"
	"github.com/dmorgan81/artbot/internal/store"
	"github.com/samber/do"
)

func localSettings(t *testing.T) *config.Settings {
	dir := t.TempDir()
	return &config.Settings{
		SiteURL:        "http://localhost:8080",
		ReplicateToken: "r8_test",
		BlobBackend:    config.BlobFile,
		FileDir:        filepath.Join(dir, "generated"),
		RecordBackend:  config.RecordSQLite,
		SQLitePath:     filepath.Join(dir, "artbot.db"),
	}
}

func TestSetup_LocalBackends(t *testing.T) {
	injector := Setup(context.Background(), localSettings(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	if _, err := do.Invoke[*handler.Lambda](injector); err != nil {
		t.Fatalf("Invoke(*handler.Lambda) error = %v", err)
	}
	if _, ok := do.MustInvoke[store.Uploader](injector).(*store.FileUploader); !ok {
		t.Error("uploader is not the file backend")
	}
	if _, ok := do.MustInvoke[record.Recorder](injector).(*record.SQLiteRecorder); !ok {
		t.Error("recorder is not the sqlite backend")
	}
	f, ok := do.MustInvoke[param.Fetcher](injector).(*param.Layered)
	if !ok || f.Remote != nil {
		t.Errorf("fetcher = %#v, want in-memory only", f)
	}
	if got := do.MustInvokeNamed[string](injector, "replicate_token"); got != "r8_test" {
		t.Errorf("replicate_token = %q", got)
	}
	if got := do.MustInvokeNamed[[]string](injector, "prompts"); len(got) != 0 {
		t.Errorf("prompts = %v, want none", got)
	}
	if _, err := do.MustInvoke[*prompt.Randomizer](injector).Suggest(context.Background(), "qr", 2); err != nil {
		t.Errorf("Suggest() error = %v", err)
	}
}

func TestSetup_MissingToken(t *testing.T) {
	settings := localSettings(t)
	settings.ReplicateToken = ""
	injector := Setup(context.Background(), settings)
	t.Cleanup(func() { _ = injector.Shutdown() })

	if _, err := do.Invoke[*handler.Handler](injector); err == nil {
		t.Error("Invoke(*handler.Handler) succeeded without a Replicate token")
	}
}
