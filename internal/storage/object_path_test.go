package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildObjectPath(t *testing.T) {
	now := time.Now().UTC()
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())

	tests := []struct {
		name     string
		category string
		baseName string
		ext      string
		want     string
	}{
		{
			name:     "plain",
			category: "attachments",
			baseName: "report",
			ext:      "pdf",
			want:     "attachments/" + datedir + "/report.pdf",
		},
		{
			name:     "empty category falls back",
			category: "",
			baseName: "report",
			ext:      "pdf",
			want:     "attachments/" + datedir + "/report.pdf",
		},
		{
			name:     "extension dot stripped",
			category: "inputs",
			baseName: "photo",
			ext:      ".PNG",
			want:     "inputs/" + datedir + "/photo.png",
		},
		{
			name:     "missing extension becomes bin",
			category: "inputs",
			baseName: "blob",
			ext:      "",
			want:     "inputs/" + datedir + "/blob.bin",
		},
		{
			name:     "base name sanitized",
			category: "attachments",
			baseName: "My Report (final)",
			ext:      "pdf",
			want:     "attachments/" + datedir + "/my-report-final.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildObjectPath(tt.category, tt.baseName, tt.ext)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildObjectPathGeneratesBase(t *testing.T) {
	got := buildObjectPath("attachments", "", "png")
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("expected generated name with .png suffix, got %q", got)
	}
	parts := strings.Split(got, "/")
	if len(parts) != 5 {
		t.Errorf("expected category/yyyy/mm/dd/name layout, got %q", got)
	}
}

func TestLocalStorageSave(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	key, err := store.Save(context.Background(), []byte("hello"), SaveOptions{
		Category:  "attachments",
		BaseName:  "greeting",
		Extension: "txt",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	absPath := filepath.Join(store.LocalBaseDir(), filepath.FromSlash(key))
	data, err := os.ReadFile(absPath)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected file content hello, got %q", data)
	}

	t.Run("skip if exists keeps original content", func(t *testing.T) {
		key2, err := store.Save(context.Background(), []byte("changed"), SaveOptions{
			Category:     "attachments",
			BaseName:     "greeting",
			Extension:    "txt",
			SkipIfExists: true,
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if key2 != key {
			t.Fatalf("expected same key %q, got %q", key, key2)
		}
		data, err := os.ReadFile(absPath)
		if err != nil {
			t.Fatalf("read saved file: %v", err)
		}
		if string(data) != "hello" {
			t.Errorf("expected original content preserved, got %q", data)
		}
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		if _, err := store.Save(context.Background(), nil, SaveOptions{}); err == nil {
			t.Fatal("expected error for empty payload")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := store.Save(ctx, []byte("x"), SaveOptions{}); err == nil {
			t.Fatal("expected error for cancelled context")
		}
	})
}
