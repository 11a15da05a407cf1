package model

import (
	"aiva/internal/auth"
	"aiva/internal/entity"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// SeedFallbackData loads the static record set the service runs on when no
// database is reachable: one admin, the demo user, and one account kept in
// legacy plaintext form to exercise the compatibility path. Seeding an
// already-populated repository is a no-op.
func SeedFallbackData(ctx context.Context, repo Repository) error {
	if repo == nil {
		return fmt.Errorf("repository is nil")
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	adminHash, err := auth.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	demoHash, err := auth.HashPassword("password123")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := []*entity.DbUser{
		{
			Email:     "admin@aiva.local",
			Password:  adminHash,
			FirstName: "AIVA",
			LastName:  "Admin",
			Role:      entity.UserRoleAdmin,
			IsActive:  true,
		},
		{
			Email:     "sudhenreddym@gmail.com",
			Password:  demoHash,
			FirstName: "Sudhen",
			LastName:  "Reddy",
			Role:      entity.UserRoleUser,
			IsActive:  true,
		},
		{
			// Imported as-is from the legacy system; password not yet
			// rehashed.
			Email:     "legacy@aiva.local",
			Password:  "legacy123",
			FirstName: "Legacy",
			LastName:  "User",
			Role:      entity.UserRoleUser,
			IsActive:  true,
		},
	}

	for _, user := range users {
		if err := repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Email, err)
		}
	}

	chat := &entity.DbChat{UserID: users[1].ID, Title: "Welcome to AIVA"}
	if err := repo.CreateChat(ctx, chat); err != nil {
		return fmt.Errorf("seed chat: %w", err)
	}
	message := &entity.DbMessage{
		ChatID:  chat.ID,
		Role:    entity.MessageRoleAssistant,
		Content: "Hi! I am AIVA. Ask me anything to get started.",
	}
	if err := repo.CreateMessage(ctx, message); err != nil {
		return fmt.Errorf("seed message: %w", err)
	}

	logrus.WithField("users", len(users)).Info("seeded fallback data")
	return nil
}
