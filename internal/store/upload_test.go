package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	u := &FileUploader{Dir: dir, BaseURL: "http://localhost:8080/files/"}

	url, err := u.Upload(context.Background(), UploadParams{
		Name:        "cyberpunk/abc1234.webp",
		Data:        []byte("webp"),
		ContentType: "image/webp",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != "http://localhost:8080/files/cyberpunk/abc1234.webp" {
		t.Errorf("Upload() url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "cyberpunk", "abc1234.webp"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "webp" {
		t.Errorf("file contents = %q", data)
	}
}

func TestFileUploader_UploadRejectsEscapes(t *testing.T) {
	u := &FileUploader{Dir: t.TempDir(), BaseURL: "http://localhost"}
	for _, name := range []string{"../escape.png", "/abs.png", ""} {
		_, err := u.Upload(context.Background(), UploadParams{Name: name})
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Upload(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct{ base, name, want string }{
		{"https://cdn.example.com", "qr/a.png", "https://cdn.example.com/qr/a.png"},
		{"https://cdn.example.com/", "qr/a.png", "https://cdn.example.com/qr/a.png"},
	}
	for _, tt := range tests {
		if got := joinURL(tt.base, tt.name); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
		}
	}
}
