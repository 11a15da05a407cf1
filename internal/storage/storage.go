package storage

import (
	"aiva/internal/config"
	"context"
	"fmt"
	"strings"
)

const (
	// TypeLocal stores attachments on the local filesystem.
	TypeLocal = "local"
	// TypeS3 targets Amazon S3 or any S3-compatible backend.
	TypeS3 = "s3"
	// TypeOSS targets Aliyun OSS.
	TypeOSS = "oss"
	// TypeCOS targets Tencent COS.
	TypeCOS = "cos"
)

// SaveOptions controls how a backend persists an attachment.
//
// Category groups objects on disk (e.g. "attachments"), BaseName is the
// preferred object name without extension, and Extension is the preferred
// file extension without the leading dot. Blank fields fall back to
// generated values. SkipIfExists makes the save a no-op when the target key
// is already present, which enables content-addressed dedupe.
type SaveOptions struct {
	Category     string
	BaseName     string
	Extension    string
	SkipIfExists bool
}

// Storage persists binary payloads and returns a backend-specific key (a
// relative path for local storage, an object key for remote backends).
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
}

// LocalBaseDirProvider is implemented by drivers that expose a local
// directory which can be served directly over HTTP.
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage instantiates the storage backend selected by configuration.
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
