package sql

import (
	"aiva/internal/entity"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// CreateChat persists a new chat.
func (r *GormRepository) CreateChat(ctx context.Context, chat *entity.DbChat) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if chat == nil {
		return fmt.Errorf("chat is nil")
	}
	return r.db.WithContext(ctx).Create(chat).Error
}

// GetChat loads a chat by ID.
func (r *GormRepository) GetChat(ctx context.Context, id uint) (*entity.DbChat, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid chat id")
	}
	var chat entity.DbChat
	if err := r.db.WithContext(ctx).First(&chat, id).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChats returns paginated chats, newest activity first. Unless
// IncludeAll is set the result is scoped to the given owner.
func (r *GormRepository) ListChats(ctx context.Context, params *entity.ChatQuery) ([]entity.DbChat, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbChat{})
	if params != nil && !params.IncludeAll {
		query = query.Where("user_id = ?", params.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var base *entity.BaseParams
	if params != nil {
		base = &params.BaseParams
	}
	page, pageSize := normalisePage(base)

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var chats []entity.DbChat
	if err := query.Order("updated_at DESC").Offset(offset).Limit(pageSize).Find(&chats).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return chats, meta, nil
}

// UpdateChat updates an existing chat.
func (r *GormRepository) UpdateChat(ctx context.Context, id uint, updates entity.ChatUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid chat id")
	}
	if updates.IsEmpty() {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.DbChat{}).Where("id = ?", id).Updates(updates.ToMap()).Error
}

// DeleteChat removes a chat and all of its messages.
func (r *GormRepository) DeleteChat(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid chat id")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&entity.DbChat{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("chat_id = ?", id).Delete(&entity.DbMessage{}).Error
	})
}
