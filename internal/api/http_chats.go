package api

import (
	"aiva/internal/entity"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// loadChatForUser loads a chat and enforces ownership. Admins may read any
// chat.
func (h *HTTPHandler) loadChatForUser(c *gin.Context, user *RequestUser) (*entity.DbChat, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		BadRequest(c, ErrCodeInvalidRequest, "invalid chat id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	chat, err := h.repo.GetChat(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeChatNotFound, "chat not found")
			return nil, false
		}
		logrus.WithError(err).WithField("chat_id", id).Error("failed to load chat")
		InternalError(c, "failed to load chat")
		return nil, false
	}

	if chat.UserID != user.ID && !user.IsAdmin() {
		NotFound(c, ErrCodeChatNotFound, "chat not found")
		return nil, false
	}

	return chat, true
}

func (h *HTTPHandler) ListChats(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	var query entity.ChatQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	query.UserID = user.ID
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	chats, meta, err := h.repo.ListChats(ctx, &query)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to list chats")
		InternalError(c, "failed to load chats")
		return
	}

	response := entity.ChatListResponse{
		Chats: make([]entity.ChatSummary, 0, len(chats)),
		Meta:  meta,
	}
	for idx := range chats {
		response.Chats = append(response.Chats, makeChatSummary(&chats[idx]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) CreateChat(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	var req entity.ChatCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		MissingField(c, "title")
		return
	}

	chat := &entity.DbChat{
		UserID: user.ID,
		Title:  title,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateChat(ctx, chat); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to create chat")
		InternalError(c, "failed to create chat")
		return
	}

	c.JSON(http.StatusCreated, makeChatSummary(chat))
}

func (h *HTTPHandler) GetChat(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	chat, ok := h.loadChatForUser(c, user)
	if !ok {
		return
	}

	query := &entity.MessageQuery{ChatID: chat.ID}
	query.Page = 1
	query.PageSize = 200

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	messages, _, err := h.repo.ListMessages(ctx, query)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to list chat messages")
		InternalError(c, "failed to load chat")
		return
	}

	response := entity.ChatDetailResponse{
		Chat:     makeChatSummary(chat),
		Messages: make([]entity.MessageItem, 0, len(messages)),
	}
	for idx := range messages {
		response.Messages = append(response.Messages, h.makeMessageItem(&messages[idx]))
	}

	c.JSON(http.StatusOK, response)
}

func (h *HTTPHandler) UpdateChat(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	chat, ok := h.loadChatForUser(c, user)
	if !ok {
		return
	}

	var req entity.ChatUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	var updates entity.ChatUpdates
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			BadRequest(c, ErrCodeInvalidRequest, "title must not be empty")
			return
		}
		updates.Title = &title
	}

	if updates.IsEmpty() {
		c.JSON(http.StatusOK, makeChatSummary(chat))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.UpdateChat(ctx, chat.ID, updates); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to update chat")
		InternalError(c, "failed to update chat")
		return
	}

	updated, err := h.repo.GetChat(ctx, chat.ID)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to reload chat after update")
		InternalError(c, "failed to load updated chat")
		return
	}

	c.JSON(http.StatusOK, makeChatSummary(updated))
}

func (h *HTTPHandler) DeleteChat(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	chat, ok := h.loadChatForUser(c, user)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteChat(ctx, chat.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeChatNotFound, "chat not found")
			return
		}
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to delete chat")
		InternalError(c, "failed to delete chat")
		return
	}

	c.Status(http.StatusNoContent)
}

func makeChatSummary(chat *entity.DbChat) entity.ChatSummary {
	if chat == nil {
		return entity.ChatSummary{}
	}
	return entity.ChatSummary{
		ID:        chat.ID,
		UserID:    chat.UserID,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}
