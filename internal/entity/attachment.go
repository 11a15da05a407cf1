package entity

import "time"

// DbAttachment records a stored file. Path is the storage-backend key; the
// public URL is derived at the API boundary.
type DbAttachment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	FileName    string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	ContentType string    `gorm:"column:content_type;type:varchar(100)" json:"content_type"`
	Size        int64     `gorm:"column:size;not null" json:"size"`
	Path        string    `gorm:"column:path;type:varchar(512);uniqueIndex;not null" json:"path"`
}

func (DbAttachment) TableName() string {
	return "attachments"
}

// AttachmentLink pairs a storage path with its public URL.
type AttachmentLink struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type AttachmentResponse struct {
	ID          uint      `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}
