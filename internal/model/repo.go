package model

import (
	"aiva/internal/entity"
	"context"
)

// Repository is the storage port every handler and service depends on. It is
// implemented by the gorm-backed store and by the in-memory fallback store;
// which one serves a process is decided once at startup, never per request.
type Repository interface {
	// 用户
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)

	// 会话
	CreateChat(ctx context.Context, chat *entity.DbChat) error
	GetChat(ctx context.Context, id uint) (*entity.DbChat, error)
	ListChats(ctx context.Context, params *entity.ChatQuery) ([]entity.DbChat, *entity.Meta, error)
	UpdateChat(ctx context.Context, id uint, updates entity.ChatUpdates) error
	DeleteChat(ctx context.Context, id uint) error

	// 消息
	CreateMessage(ctx context.Context, message *entity.DbMessage) error
	GetMessage(ctx context.Context, id uint) (*entity.DbMessage, error)
	ListMessages(ctx context.Context, params *entity.MessageQuery) ([]entity.DbMessage, *entity.Meta, error)
	DeleteMessage(ctx context.Context, id uint) error
	SearchMessages(ctx context.Context, params *entity.SearchQuery) ([]entity.DbMessage, *entity.Meta, error)

	// 附件
	CreateAttachment(ctx context.Context, attachment *entity.DbAttachment) error
	GetAttachmentByPath(ctx context.Context, path string) (*entity.DbAttachment, error)
}
