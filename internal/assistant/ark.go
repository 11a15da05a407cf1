package assistant

import (
	"aiva/internal/config"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	volcModel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

// Ark talks to the Volcengine Ark runtime.
type Ark struct {
	client *arkruntime.Client
	model  string
}

func NewArk(cfg config.Config) (*Ark, error) {
	if strings.TrimSpace(cfg.AssistantAPIKey) == "" {
		return nil, errors.New("assistant api key is not configured")
	}
	if strings.TrimSpace(cfg.AssistantModel) == "" {
		return nil, errors.New("assistant model is not configured")
	}

	return &Ark{
		client: arkruntime.NewClientWithApiKey(cfg.AssistantAPIKey),
		model:  cfg.AssistantModel,
	}, nil
}

func (a *Ark) ProviderID() string {
	return "ark"
}

func (a *Ark) Complete(ctx context.Context, history []Message) (string, error) {
	messages := make([]*volcModel.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		role := volcModel.ChatMessageRoleUser
		switch msg.Role {
		case RoleAssistant:
			role = volcModel.ChatMessageRoleAssistant
		case RoleSystem:
			role = volcModel.ChatMessageRoleSystem
		}
		messages = append(messages, &volcModel.ChatCompletionMessage{
			Role: role,
			Content: &volcModel.ChatCompletionMessageContent{
				StringValue: volcengine.String(msg.Content),
			},
		})
	}

	logrus.WithFields(logrus.Fields{
		"provider": a.ProviderID(),
		"model":    a.model,
		"turns":    len(messages),
	}).Info("assistant_complete_start")

	resp, err := a.client.CreateChatCompletion(ctx, volcModel.CreateChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		logrus.WithError(err).Error("assistant_complete_failed")
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("assistant returned no choices")
	}

	content := resp.Choices[0].Message.Content
	if content == nil || content.StringValue == nil {
		return "", errors.New("assistant returned empty content")
	}
	reply := strings.TrimSpace(*content.StringValue)
	if reply == "" {
		return "", errors.New("assistant returned empty content")
	}

	logrus.WithFields(logrus.Fields{
		"provider":  a.ProviderID(),
		"reply_len": len(reply),
	}).Info("assistant_complete_done")
	return reply, nil
}

var _ Service = (*Ark)(nil)
