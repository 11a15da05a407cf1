package entity

import "time"

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// DbChat represents a conversation owned by a single user.
type DbChat struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	Title     string    `gorm:"column:title;type:varchar(255);not null" json:"title"`

	User *DbUser `gorm:"foreignKey:UserID" json:"-"`
}

func (DbChat) TableName() string {
	return "chats"
}

// DbMessage is a single chat message, authored either by the chat owner or
// by the assistant.
type DbMessage struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	ChatID      uint        `gorm:"column:chat_id;index;not null" json:"chat_id"`
	Role        string      `gorm:"column:role;type:varchar(50);not null" json:"role"`
	Content     string      `gorm:"column:content;type:text;not null" json:"content"`
	Attachments StringArray `gorm:"column:attachments;type:text" json:"attachments"`

	Chat *DbChat `gorm:"foreignKey:ChatID" json:"-"`
}

func (DbMessage) TableName() string {
	return "messages"
}

type ChatCreateRequest struct {
	Title string `json:"title" binding:"required"`
}

type ChatUpdateRequest struct {
	Title *string `json:"title,omitempty"`
}

type ChatQuery struct {
	BaseParams
	UserID     uint `json:"-" form:"-" query:"-"`
	IncludeAll bool `json:"-" form:"-" query:"-"`
}

type ChatSummary struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatListResponse struct {
	Chats []ChatSummary `json:"chats"`
	Meta  *Meta         `json:"meta"`
}

type ChatDetailResponse struct {
	Chat     ChatSummary   `json:"chat"`
	Messages []MessageItem `json:"messages"`
}

type MessageCreateRequest struct {
	Content     string   `json:"content" binding:"required"`
	Attachments []string `json:"attachments"`
	// AssistantReply requests an asynchronous assistant completion for this
	// message. ClientID names the SSE stream to notify once it lands.
	AssistantReply bool   `json:"assistant_reply"`
	ClientID       string `json:"client_id"`
}

type MessageItem struct {
	ID          uint             `json:"id"`
	ChatID      uint             `json:"chat_id"`
	Role        string           `json:"role"`
	Content     string           `json:"content"`
	Attachments []AttachmentLink `json:"attachments"`
	CreatedAt   time.Time        `json:"created_at"`
}

type MessageListResponse struct {
	Messages []MessageItem `json:"messages"`
	Meta     *Meta         `json:"meta"`
}

type MessageQuery struct {
	BaseParams
	ChatID uint `json:"-" form:"-" query:"-"`
}

type SearchQuery struct {
	BaseParams
	Keyword    string `json:"q" form:"q" query:"q"`
	UserID     uint   `json:"-" form:"-" query:"-"`
	IncludeAll bool   `json:"-" form:"-" query:"-"`
}

type SearchResult struct {
	Message MessageItem `json:"message"`
	Chat    ChatSummary `json:"chat"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Meta    *Meta          `json:"meta"`
}
