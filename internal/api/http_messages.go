package api

import (
	"aiva/internal/entity"
	"aiva/internal/service"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (h *HTTPHandler) ListMessages(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	chat, ok := h.loadChatForUser(c, user)
	if !ok {
		return
	}

	var query entity.MessageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	query.ChatID = chat.ID
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 50
	}
	if query.PageSize > 200 {
		query.PageSize = 200
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	messages, meta, err := h.repo.ListMessages(ctx, &query)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to list messages")
		InternalError(c, "failed to load messages")
		return
	}

	response := entity.MessageListResponse{
		Messages: make([]entity.MessageItem, 0, len(messages)),
		Meta:     meta,
	}
	for idx := range messages {
		response.Messages = append(response.Messages, h.makeMessageItem(&messages[idx]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) CreateMessage(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	chat, ok := h.loadChatForUser(c, user)
	if !ok {
		return
	}

	var req entity.MessageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		MissingField(c, "content")
		return
	}

	message := &entity.DbMessage{
		ChatID:      chat.ID,
		Role:        entity.MessageRoleUser,
		Content:     content,
		Attachments: entity.StringArray(req.Attachments),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateMessage(ctx, message); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to create message")
		InternalError(c, "failed to create message")
		return
	}

	assistantQueued := false
	if req.AssistantReply && h.chatService.AssistantEnabled() {
		h.chatService.ReplyAsync(service.AssistantReplyRequest{
			Chat:     *chat,
			ClientID: strings.TrimSpace(req.ClientID),
		})
		assistantQueued = true
		logrus.WithFields(logrus.Fields{
			"chat_id":    chat.ID,
			"message_id": message.ID,
		}).Info("queued assistant reply")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          h.makeMessageItem(message),
		"assistant_queued": assistantQueued,
	})
}

func (h *HTTPHandler) DeleteMessage(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	chat, ok := h.loadChatForUser(c, user)
	if !ok {
		return
	}

	messageID, ok := parseIDParam(c, "message_id")
	if !ok {
		BadRequest(c, ErrCodeInvalidRequest, "invalid message id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	message, err := h.repo.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeMessageNotFound, "message not found")
			return
		}
		logrus.WithError(err).WithField("message_id", messageID).Error("failed to load message")
		InternalError(c, "failed to delete message")
		return
	}

	if message.ChatID != chat.ID {
		NotFound(c, ErrCodeMessageNotFound, "message not found")
		return
	}

	if err := h.repo.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeMessageNotFound, "message not found")
			return
		}
		logrus.WithError(err).WithField("message_id", messageID).Error("failed to delete message")
		InternalError(c, "failed to delete message")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) makeMessageItem(message *entity.DbMessage) entity.MessageItem {
	if message == nil {
		return entity.MessageItem{}
	}
	return entity.MessageItem{
		ID:          message.ID,
		ChatID:      message.ChatID,
		Role:        message.Role,
		Content:     message.Content,
		Attachments: h.attachmentLinks(message.Attachments),
		CreatedAt:   message.CreatedAt,
	}
}
