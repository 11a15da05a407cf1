package sql

import (
	"aiva/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// CreateMessage persists a new message and bumps the chat's activity time.
func (r *GormRepository) CreateMessage(ctx context.Context, message *entity.DbMessage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("invalid chat id")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&entity.DbChat{}).Where("id = ?", message.ChatID).
			Update("updated_at", message.CreatedAt).Error
	})
}

// GetMessage loads a message by ID.
func (r *GormRepository) GetMessage(ctx context.Context, id uint) (*entity.DbMessage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, fmt.Errorf("invalid message id")
	}
	var message entity.DbMessage
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessages returns a chat's messages in posting order.
func (r *GormRepository) ListMessages(ctx context.Context, params *entity.MessageQuery) ([]entity.DbMessage, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}
	if params == nil || params.ChatID == 0 {
		return nil, nil, fmt.Errorf("invalid chat id")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbMessage{}).Where("chat_id = ?", params.ChatID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, pageSize := normalisePage(&params.BaseParams)
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var messages []entity.DbMessage
	if err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return messages, meta, nil
}

// DeleteMessage removes a message by ID.
func (r *GormRepository) DeleteMessage(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid message id")
	}
	result := r.db.WithContext(ctx).Delete(&entity.DbMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchMessages finds messages whose content contains the keyword,
// case-insensitively, with the owning chat preloaded. Unless IncludeAll is
// set, only chats owned by the given user are searched.
func (r *GormRepository) SearchMessages(ctx context.Context, params *entity.SearchQuery) ([]entity.DbMessage, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}
	if params == nil {
		return nil, nil, fmt.Errorf("search params are nil")
	}
	keyword := strings.TrimSpace(params.Keyword)
	if keyword == "" {
		return []entity.DbMessage{}, &entity.Meta{Page: 1, PageSize: 0, Total: 0}, nil
	}

	kw := "%" + strings.ToLower(keyword) + "%"
	query := r.db.WithContext(ctx).Model(&entity.DbMessage{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("LOWER(messages.content) LIKE ?", kw)
	if !params.IncludeAll {
		query = query.Where("chats.user_id = ?", params.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, pageSize := normalisePage(&params.BaseParams)
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var messages []entity.DbMessage
	if err := query.Preload("Chat").Order("messages.id DESC").
		Offset(offset).Limit(pageSize).Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return messages, meta, nil
}
