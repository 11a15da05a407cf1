package api

import (
	"aiva/internal/entity"
	"aiva/internal/storage"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 单个附件大小上限
const maxUploadBytes = 20 << 20

// UploadFile stores a multipart attachment through the storage backend.
// Identical payloads dedupe onto the same object key.
func (h *HTTPHandler) UploadFile(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	if h.storage == nil {
		ServiceUnavailable(c, "file storage not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		MissingField(c, "file")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		ErrorResponse(c, http.StatusRequestEntityTooLarge, ErrCodeAttachmentTooLarge, "file exceeds upload limit")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded file")
		InternalError(c, "failed to read uploaded file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded file")
		InternalError(c, "failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "uploaded file is empty")
		return
	}
	if len(data) > maxUploadBytes {
		ErrorResponse(c, http.StatusRequestEntityTooLarge, ErrCodeAttachmentTooLarge, "file exceeds upload limit")
		return
	}

	fileName := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if fileName == "" || fileName == "." {
		fileName = uuid.NewString()
	}
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")

	sum := md5.Sum(data)
	baseName := hex.EncodeToString(sum[:])

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	path, err := h.storage.Save(ctx, data, storage.SaveOptions{
		Category:     "attachments",
		BaseName:     baseName,
		Extension:    ext,
		SkipIfExists: true,
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   user.ID,
			"file_name": fileName,
		}).Error("failed to store attachment")
		InternalError(c, "failed to store file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	attachment := &entity.DbAttachment{
		UserID:      user.ID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        int64(len(data)),
		Path:        path,
	}

	if err := h.repo.CreateAttachment(ctx, attachment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// same content uploaded before, reuse the existing record
			existing, lookupErr := h.repo.GetAttachmentByPath(ctx, path)
			if lookupErr == nil {
				c.JSON(http.StatusOK, h.makeAttachmentResponse(existing))
				return
			}
			logrus.WithError(lookupErr).WithField("path", path).Error("failed to load existing attachment")
		}
		logrus.WithError(err).WithField("path", path).Error("failed to record attachment")
		InternalError(c, "failed to store file")
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"path":      path,
		"size":      attachment.Size,
		"file_name": fileName,
	}).Info("stored attachment")

	c.JSON(http.StatusCreated, h.makeAttachmentResponse(attachment))
}

func (h *HTTPHandler) makeAttachmentResponse(attachment *entity.DbAttachment) entity.AttachmentResponse {
	if attachment == nil {
		return entity.AttachmentResponse{}
	}
	return entity.AttachmentResponse{
		ID:          attachment.ID,
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		Path:        attachment.Path,
		URL:         h.publicURL(attachment.Path),
		CreatedAt:   attachment.CreatedAt,
	}
}
