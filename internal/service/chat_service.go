package service

import (
	"aiva/internal/assistant"
	"aiva/internal/entity"
	"aiva/internal/model"
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// 每次补全最多回看的历史消息条数
const historyWindow = 50

// ChatService 会话服务，封装消息发送与助手回复的业务逻辑
type ChatService struct {
	repo      model.Repository
	assistant assistant.Service

	// notifyFunc 用于推送助手回复完成事件（由调用方设置）
	notifyFunc func(clientID string, chatID, messageID uint, status string, errMsg string)
}

func NewChatService(repo model.Repository, svc assistant.Service) *ChatService {
	return &ChatService{
		repo:      repo,
		assistant: svc,
	}
}

// SetNotifyFunc 设置通知函数（用于 SSE 推送）
func (s *ChatService) SetNotifyFunc(fn func(clientID string, chatID, messageID uint, status string, errMsg string)) {
	s.notifyFunc = fn
}

// AssistantEnabled reports whether a completion backend is configured.
func (s *ChatService) AssistantEnabled() bool {
	return s != nil && s.assistant != nil
}

// AssistantReplyRequest carries everything the async reply path needs.
type AssistantReplyRequest struct {
	Chat     entity.DbChat
	ClientID string
}

// ReplyAsync generates an assistant reply for the chat's latest state in the
// background and persists it as a new assistant message.
func (s *ChatService) ReplyAsync(req AssistantReplyRequest) {
	go s.handleReply(req)
}

func (s *ChatService) handleReply(req AssistantReplyRequest) {
	if s == nil || s.repo == nil || s.assistant == nil {
		return
	}

	chat := req.Chat
	clientID := strings.TrimSpace(req.ClientID)

	replyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	history, err := s.loadHistory(replyCtx, chat.ID)
	if err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to load chat history")
		s.notifyComplete(clientID, chat.ID, 0, "failure", err.Error())
		return
	}

	reply, err := s.assistant.Complete(replyCtx, history)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"chat_id":  chat.ID,
			"provider": s.assistant.ProviderID(),
		}).Error("failed to generate assistant reply")
		s.notifyComplete(clientID, chat.ID, 0, "failure", err.Error())
		return
	}

	message := entity.DbMessage{
		ChatID:  chat.ID,
		Role:    entity.MessageRoleAssistant,
		Content: reply,
	}
	if err := s.saveMessage(&message); err != nil {
		logrus.WithError(err).WithField("chat_id", chat.ID).Error("failed to persist assistant reply")
		s.notifyComplete(clientID, chat.ID, 0, "failure", err.Error())
		return
	}

	logrus.WithFields(logrus.Fields{
		"chat_id":    chat.ID,
		"message_id": message.ID,
		"provider":   s.assistant.ProviderID(),
	}).Info("assistant reply stored")
	s.notifyComplete(clientID, chat.ID, message.ID, "success", "")
}

// loadHistory converts the tail of the chat's messages into assistant turns.
func (s *ChatService) loadHistory(ctx context.Context, chatID uint) ([]assistant.Message, error) {
	params := &entity.MessageQuery{ChatID: chatID}
	params.Page = 1
	params.PageSize = 500

	messages, _, err := s.repo.ListMessages(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}

	history := make([]assistant.Message, 0, len(messages))
	for _, msg := range messages {
		role := assistant.RoleUser
		if msg.Role == entity.MessageRoleAssistant {
			role = assistant.RoleAssistant
		}
		history = append(history, assistant.Message{Role: role, Content: msg.Content})
	}
	return history, nil
}

func (s *ChatService) saveMessage(message *entity.DbMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.repo.CreateMessage(ctx, message)
}

func (s *ChatService) notifyComplete(clientID string, chatID, messageID uint, status string, errMsg string) {
	if s.notifyFunc != nil && strings.TrimSpace(clientID) != "" {
		s.notifyFunc(clientID, chatID, messageID, status, errMsg)
	}
}
