package sql

import (
	"aiva/internal/entity"
	"context"
	"fmt"
	"strings"
)

// CreateAttachment records a stored file.
func (r *GormRepository) CreateAttachment(ctx context.Context, attachment *entity.DbAttachment) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if attachment == nil {
		return fmt.Errorf("attachment is nil")
	}
	return r.db.WithContext(ctx).Create(attachment).Error
}

// GetAttachmentByPath loads an attachment by its storage key.
func (r *GormRepository) GetAttachmentByPath(ctx context.Context, path string) (*entity.DbAttachment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("path is empty")
	}
	var attachment entity.DbAttachment
	if err := r.db.WithContext(ctx).Where("path = ?", trimmed).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}
