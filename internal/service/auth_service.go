package service

import (
	"aiva/internal/auth"
	"aiva/internal/entity"
	"aiva/internal/model"
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthService 认证服务，封装登录校验的业务逻辑
type AuthService struct {
	repo model.Repository
}

func NewAuthService(repo model.Repository) *AuthService {
	return &AuthService{repo: repo}
}

// VerifyCredentials checks an email/password pair against the user store.
// Unknown email, wrong password and disabled account all collapse into
// auth.ErrInvalidCredentials so the response never reveals which one failed.
// The email lookup is an exact match, including case.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*entity.DbUser, error) {
	if s == nil || s.repo == nil {
		return nil, auth.ErrServiceUnavailable
	}

	trimmed := strings.TrimSpace(email)
	if trimmed == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		logrus.WithError(err).Error("failed to look up user for login")
		return nil, auth.ErrServiceUnavailable
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	if !user.IsActive {
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
		}).Warn("login rejected for disabled account")
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// ResolveUser loads the user a session token points at. Token auth only
// requires the account to exist; disabled accounts still resolve.
func (s *AuthService) ResolveUser(ctx context.Context, tokens auth.TokenManager, token string) (*entity.DbUser, error) {
	if s == nil || s.repo == nil || tokens == nil {
		return nil, auth.ErrServiceUnavailable
	}

	userID, err := tokens.Resolve(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("failed to load user for token")
		return nil, auth.ErrServiceUnavailable
	}

	return user, nil
}
