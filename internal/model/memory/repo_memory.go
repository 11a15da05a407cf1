package memory

import (
	"aiva/internal/entity"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Repository is the in-process fallback implementation of the storage port.
// It serves the same contract as the gorm repository, including the
// gorm.ErrRecordNotFound / gorm.ErrDuplicatedKey sentinels, so the layers
// above never learn which backend is running.
type Repository struct {
	mu sync.RWMutex

	users       map[uint]entity.DbUser
	chats       map[uint]entity.DbChat
	messages    map[uint]entity.DbMessage
	attachments map[uint]entity.DbAttachment

	nextUserID       uint
	nextChatID       uint
	nextMessageID    uint
	nextAttachmentID uint
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		users:            make(map[uint]entity.DbUser),
		chats:            make(map[uint]entity.DbChat),
		messages:         make(map[uint]entity.DbMessage),
		attachments:      make(map[uint]entity.DbAttachment),
		nextUserID:       1,
		nextChatID:       1,
		nextMessageID:    1,
		nextAttachmentID: 1,
	}
}

func paginate(total, page, pageSize int64) (offset, limit int, meta *entity.Meta) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset = int((page - 1) * pageSize)
	if offset < 0 {
		offset = 0
	}
	return offset, int(pageSize), &entity.Meta{Page: page, PageSize: pageSize, Total: total}
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-offset)
	copy(out, items[offset:end])
	return out
}

// CreateUser stores a new user, enforcing email uniqueness.
func (r *Repository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}

	now := time.Now().UTC()
	user.ID = r.nextUserID
	r.nextUserID++
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// UpdateUser applies the given field set to a stored user.
func (r *Repository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	if updates.IsEmpty() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if updates.FirstName != nil {
		user.FirstName = *updates.FirstName
	}
	if updates.LastName != nil {
		user.LastName = *updates.LastName
	}
	if updates.Role != nil {
		user.Role = *updates.Role
	}
	if updates.Password != nil {
		user.Password = *updates.Password
	}
	if updates.IsActive != nil {
		user.IsActive = *updates.IsActive
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return nil
}

// GetUserByEmail finds a user by exact, case-sensitive email match.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is empty")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == trimmed {
			found := user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// GetUserByID loads a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	if id == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := user
	return &found, nil
}

// ListUsers returns paginated users, newest first.
func (r *Repository) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []entity.DbUser
	for _, user := range r.users {
		if params != nil {
			if role := strings.TrimSpace(params.Role); role != "" && user.Role != role {
				continue
			}
			if keyword := strings.ToLower(strings.TrimSpace(params.Keyword)); keyword != "" {
				haystack := strings.ToLower(user.Email + " " + user.FirstName + " " + user.LastName)
				if !strings.Contains(haystack, keyword) {
					continue
				}
			}
		}
		filtered = append(filtered, user)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	var page, pageSize int64 = 0, 0
	if params != nil {
		page, pageSize = params.Page, params.PageSize
	}
	offset, limit, meta := paginate(int64(len(filtered)), page, pageSize)
	return window(filtered, offset, limit), meta, nil
}

// DeleteUser removes a user by ID.
func (r *Repository) DeleteUser(ctx context.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

// CountUsers returns total user count.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// CreateChat stores a new chat.
func (r *Repository) CreateChat(ctx context.Context, chat *entity.DbChat) error {
	if chat == nil {
		return fmt.Errorf("chat is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	chat.ID = r.nextChatID
	r.nextChatID++
	chat.CreatedAt = now
	chat.UpdatedAt = now
	stored := *chat
	stored.User = nil
	r.chats[chat.ID] = stored
	return nil
}

// GetChat loads a chat by ID.
func (r *Repository) GetChat(ctx context.Context, id uint) (*entity.DbChat, error) {
	if id == 0 {
		return nil, fmt.Errorf("invalid chat id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := chat
	return &found, nil
}

// ListChats returns paginated chats, newest activity first.
func (r *Repository) ListChats(ctx context.Context, params *entity.ChatQuery) ([]entity.DbChat, *entity.Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []entity.DbChat
	for _, chat := range r.chats {
		if params != nil && !params.IncludeAll && chat.UserID != params.UserID {
			continue
		}
		filtered = append(filtered, chat)
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].UpdatedAt.Equal(filtered[j].UpdatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].UpdatedAt.After(filtered[j].UpdatedAt)
	})

	var page, pageSize int64 = 0, 0
	if params != nil {
		page, pageSize = params.Page, params.PageSize
	}
	offset, limit, meta := paginate(int64(len(filtered)), page, pageSize)
	return window(filtered, offset, limit), meta, nil
}

// UpdateChat applies the given field set to a stored chat.
func (r *Repository) UpdateChat(ctx context.Context, id uint, updates entity.ChatUpdates) error {
	if id == 0 {
		return fmt.Errorf("invalid chat id")
	}
	if updates.IsEmpty() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if updates.Title != nil {
		chat.Title = *updates.Title
	}
	chat.UpdatedAt = time.Now().UTC()
	r.chats[id] = chat
	return nil
}

// DeleteChat removes a chat and all of its messages.
func (r *Repository) DeleteChat(ctx context.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("invalid chat id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.chats, id)
	for messageID, message := range r.messages {
		if message.ChatID == id {
			delete(r.messages, messageID)
		}
	}
	return nil
}

// CreateMessage stores a new message and bumps the chat's activity time.
func (r *Repository) CreateMessage(ctx context.Context, message *entity.DbMessage) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("invalid chat id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[message.ChatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	now := time.Now().UTC()
	message.ID = r.nextMessageID
	r.nextMessageID++
	message.CreatedAt = now
	stored := *message
	stored.Chat = nil
	r.messages[message.ID] = stored

	chat.UpdatedAt = now
	r.chats[chat.ID] = chat
	return nil
}

// GetMessage loads a message by ID.
func (r *Repository) GetMessage(ctx context.Context, id uint) (*entity.DbMessage, error) {
	if id == 0 {
		return nil, fmt.Errorf("invalid message id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := message
	return &found, nil
}

// ListMessages returns a chat's messages in posting order.
func (r *Repository) ListMessages(ctx context.Context, params *entity.MessageQuery) ([]entity.DbMessage, *entity.Meta, error) {
	if params == nil || params.ChatID == 0 {
		return nil, nil, fmt.Errorf("invalid chat id")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []entity.DbMessage
	for _, message := range r.messages {
		if message.ChatID == params.ChatID {
			filtered = append(filtered, message)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })

	offset, limit, meta := paginate(int64(len(filtered)), params.Page, params.PageSize)
	return window(filtered, offset, limit), meta, nil
}

// DeleteMessage removes a message by ID.
func (r *Repository) DeleteMessage(ctx context.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("invalid message id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.messages, id)
	return nil
}

// SearchMessages finds messages containing the keyword, case-insensitively,
// with the owning chat attached.
func (r *Repository) SearchMessages(ctx context.Context, params *entity.SearchQuery) ([]entity.DbMessage, *entity.Meta, error) {
	if params == nil {
		return nil, nil, fmt.Errorf("search params are nil")
	}
	keyword := strings.ToLower(strings.TrimSpace(params.Keyword))
	if keyword == "" {
		return []entity.DbMessage{}, &entity.Meta{Page: 1, PageSize: 0, Total: 0}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []entity.DbMessage
	for _, message := range r.messages {
		chat, ok := r.chats[message.ChatID]
		if !ok {
			continue
		}
		if !params.IncludeAll && chat.UserID != params.UserID {
			continue
		}
		if !strings.Contains(strings.ToLower(message.Content), keyword) {
			continue
		}
		owner := chat
		message.Chat = &owner
		filtered = append(filtered, message)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	offset, limit, meta := paginate(int64(len(filtered)), params.Page, params.PageSize)
	return window(filtered, offset, limit), meta, nil
}

// CreateAttachment records a stored file.
func (r *Repository) CreateAttachment(ctx context.Context, attachment *entity.DbAttachment) error {
	if attachment == nil {
		return fmt.Errorf("attachment is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.attachments {
		if existing.Path == attachment.Path {
			return gorm.ErrDuplicatedKey
		}
	}

	attachment.ID = r.nextAttachmentID
	r.nextAttachmentID++
	attachment.CreatedAt = time.Now().UTC()
	r.attachments[attachment.ID] = *attachment
	return nil
}

// GetAttachmentByPath loads an attachment by its storage key.
func (r *Repository) GetAttachmentByPath(ctx context.Context, path string) (*entity.DbAttachment, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("path is empty")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, attachment := range r.attachments {
		if attachment.Path == trimmed {
			found := attachment
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
