package assistant

import (
	"aiva/internal/config"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAI talks to any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg config.Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.AssistantAPIKey) == "" {
		return nil, errors.New("assistant api key is not configured")
	}
	if strings.TrimSpace(cfg.AssistantModel) == "" {
		return nil, errors.New("assistant model is not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.AssistantAPIKey)
	if baseURL := strings.TrimSpace(cfg.AssistantBaseURL); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.AssistantModel,
	}, nil
}

func (o *OpenAI) ProviderID() string {
	return "openai"
}

func (o *OpenAI) Complete(ctx context.Context, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	logrus.WithFields(logrus.Fields{
		"provider": o.ProviderID(),
		"model":    o.model,
		"turns":    len(messages),
	}).Info("assistant_complete_start")

	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		logrus.WithError(err).Error("assistant_stream_create_failed")
		return "", err
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		resp, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			logrus.WithError(recvErr).Error("assistant_stream_recv_failed")
			return "", recvErr
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content != "" {
				builder.WriteString(choice.Delta.Content)
			}
		}
	}

	reply := strings.TrimSpace(builder.String())
	if reply == "" {
		return "", errors.New("assistant returned empty content")
	}

	logrus.WithFields(logrus.Fields{
		"provider":  o.ProviderID(),
		"reply_len": len(reply),
	}).Info("assistant_complete_done")
	return reply, nil
}

var _ Service = (*OpenAI)(nil)
