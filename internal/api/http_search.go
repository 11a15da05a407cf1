package api

import (
	"aiva/internal/entity"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SearchMessages searches the caller's message history. Admin tokens search
// across all chats.
func (h *HTTPHandler) SearchMessages(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeMissingToken, "authentication required")
		return
	}

	var query entity.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	query.Keyword = strings.TrimSpace(query.Keyword)
	if query.Keyword == "" {
		MissingField(c, "q")
		return
	}

	query.UserID = user.ID
	query.IncludeAll = user.IsAdmin()
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

	messages, meta, err := h.repo.SearchMessages(ctx, &query)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": user.ID,
			"keyword": query.Keyword,
		}).Error("failed to search messages")
		InternalError(c, "failed to search messages")
		return
	}

	response := entity.SearchResponse{
		Results: make([]entity.SearchResult, 0, len(messages)),
		Meta:    meta,
	}
	for idx := range messages {
		message := &messages[idx]
		result := entity.SearchResult{Message: h.makeMessageItem(message)}
		if message.Chat != nil {
			result.Chat = makeChatSummary(message.Chat)
		}
		response.Results = append(response.Results, result)
	}

	c.JSON(http.StatusOK, response)
}
