package api

import (
	"aiva/internal/assistant"
	"aiva/internal/auth"
	"aiva/internal/config"
	"aiva/internal/entity"
	"aiva/internal/model"
	"aiva/internal/service"
	"aiva/internal/storage"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	tokens            auth.TokenManager

	// 服务层
	authService *service.AuthService
	chatService *service.ChatService

	// SSE 客户端管理
	sseClients map[string][]chan sseMessage
	sseMu      sync.Mutex
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, assistantSvc assistant.Service) (*HTTPHandler, error) {
	tokens, err := newTokenManager(cfg)
	if err != nil {
		return nil, err
	}

	chatSvc := service.NewChatService(repo, assistantSvc)

	handler := &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		tokens:            tokens,
		authService:       service.NewAuthService(repo),
		chatService:       chatSvc,
		sseClients:        make(map[string][]chan sseMessage),
	}

	// 设置 SSE 通知回调
	chatSvc.SetNotifyFunc(handler.notifyAssistantComplete)

	return handler, nil
}

// newTokenManager picks the session token flavour configured at startup.
func newTokenManager(cfg config.Config) (auth.TokenManager, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.TokenMode)) {
	case "", "legacy":
		return auth.NewLegacyManager(), nil
	case "jwt":
		expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
		return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	default:
		return nil, fmt.Errorf("unsupported token mode: %s", cfg.TokenMode)
	}
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

func (h *HTTPHandler) publicURL(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(trimmed, "/"))
}

// attachmentLinks resolves storage paths into public links.
func (h *HTTPHandler) attachmentLinks(paths entity.StringArray) []entity.AttachmentLink {
	links := make([]entity.AttachmentLink, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		links = append(links, entity.AttachmentLink{
			Path: trimmed,
			URL:  h.publicURL(trimmed),
		})
	}
	return links
}

// notifyAssistantComplete 通知助手回复完成（用于 SSE 推送）
func (h *HTTPHandler) notifyAssistantComplete(clientID string, chatID, messageID uint, status string, errMsg string) {
	if strings.TrimSpace(clientID) == "" {
		return
	}
	payload := gin.H{
		"chat_id": chatID,
		"status":  status,
	}
	if messageID != 0 {
		payload["message_id"] = messageID
	}
	if trimmed := strings.TrimSpace(errMsg); trimmed != "" {
		payload["error"] = trimmed
	}
	h.publishSSEMessage(clientID, sseMessage{
		event: "assistant_reply_completed",
		data:  payload,
	})
}
