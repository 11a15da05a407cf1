package memory

import (
	"aiva/internal/entity"
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func seedUser(t *testing.T, repo *Repository, email string) *entity.DbUser {
	t.Helper()
	user := &entity.DbUser{
		Email:    email,
		Password: "$2a$10$notarealhashnotarealhashnotarealha",
		Role:     entity.UserRoleUser,
		IsActive: true,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	return user
}

func TestUserLifecycle(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	user := seedUser(t, repo, "alice@example.com")
	if user.ID == 0 {
		t.Fatal("expected assigned user id")
	}

	if err := repo.CreateUser(ctx, &entity.DbUser{Email: "alice@example.com"}); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected id %d, got %d", user.ID, byEmail.ID)
	}

	// Email lookup is case-sensitive by contract.
	if _, err := repo.GetUserByEmail(ctx, "Alice@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for different case, got %v", err)
	}

	role := entity.UserRoleAdmin
	if err := repo.UpdateUser(ctx, user.ID, entity.UserUpdates{Role: &role}); err != nil {
		t.Fatalf("unexpected error updating user: %v", err)
	}
	updated, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != entity.UserRoleAdmin {
		t.Fatalf("expected role %q, got %q", entity.UserRoleAdmin, updated.Role)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("unexpected error deleting user: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, user.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found after delete, got %v", err)
	}
}

func TestChatDeleteCascadesMessages(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	user := seedUser(t, repo, "bob@example.com")

	chat := &entity.DbChat{UserID: user.ID, Title: "project ideas"}
	if err := repo.CreateChat(ctx, chat); err != nil {
		t.Fatalf("unexpected error creating chat: %v", err)
	}

	for _, content := range []string{"first", "second", "third"} {
		message := &entity.DbMessage{ChatID: chat.ID, Role: entity.MessageRoleUser, Content: content}
		if err := repo.CreateMessage(ctx, message); err != nil {
			t.Fatalf("unexpected error creating message: %v", err)
		}
	}

	messages, meta, err := repo.ListMessages(ctx, &entity.MessageQuery{ChatID: chat.ID})
	if err != nil {
		t.Fatalf("unexpected error listing messages: %v", err)
	}
	if meta.Total != 3 || len(messages) != 3 {
		t.Fatalf("expected 3 messages, got total=%d len=%d", meta.Total, len(messages))
	}
	if messages[0].Content != "first" || messages[2].Content != "third" {
		t.Fatal("expected messages in posting order")
	}

	if err := repo.DeleteChat(ctx, chat.ID); err != nil {
		t.Fatalf("unexpected error deleting chat: %v", err)
	}
	if _, err := repo.GetChat(ctx, chat.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found after delete, got %v", err)
	}
	if _, _, err := repo.ListMessages(ctx, &entity.MessageQuery{ChatID: chat.ID}); err != nil {
		t.Fatalf("unexpected error listing messages: %v", err)
	}
	remaining, _, _ := repo.ListMessages(ctx, &entity.MessageQuery{ChatID: chat.ID})
	if len(remaining) != 0 {
		t.Fatalf("expected cascade delete, found %d messages", len(remaining))
	}
}

func TestCreateMessageRequiresChat(t *testing.T) {
	repo := NewRepository()
	err := repo.CreateMessage(context.Background(), &entity.DbMessage{ChatID: 99, Content: "orphan"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestSearchMessagesScopedToOwner(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")

	aliceChat := &entity.DbChat{UserID: alice.ID, Title: "alice"}
	bobChat := &entity.DbChat{UserID: bob.ID, Title: "bob"}
	for _, chat := range []*entity.DbChat{aliceChat, bobChat} {
		if err := repo.CreateChat(ctx, chat); err != nil {
			t.Fatalf("unexpected error creating chat: %v", err)
		}
	}
	if err := repo.CreateMessage(ctx, &entity.DbMessage{ChatID: aliceChat.ID, Role: entity.MessageRoleUser, Content: "deploy the Rocket"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.CreateMessage(ctx, &entity.DbMessage{ChatID: bobChat.ID, Role: entity.MessageRoleUser, Content: "rocket launch window"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, meta, err := repo.SearchMessages(ctx, &entity.SearchQuery{Keyword: "rocket", UserID: alice.ID})
	if err != nil {
		t.Fatalf("unexpected error searching: %v", err)
	}
	if meta.Total != 1 || len(results) != 1 {
		t.Fatalf("expected 1 scoped hit, got total=%d len=%d", meta.Total, len(results))
	}
	if results[0].Chat == nil || results[0].Chat.ID != aliceChat.ID {
		t.Fatal("expected owning chat attached to the hit")
	}

	all, meta, err := repo.SearchMessages(ctx, &entity.SearchQuery{Keyword: "ROCKET", IncludeAll: true})
	if err != nil {
		t.Fatalf("unexpected error searching: %v", err)
	}
	if meta.Total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 hits for admin scope, got total=%d len=%d", meta.Total, len(all))
	}

	empty, _, err := repo.SearchMessages(ctx, &entity.SearchQuery{Keyword: "   ", IncludeAll: true})
	if err != nil {
		t.Fatalf("unexpected error searching: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no hits for blank keyword, got %d", len(empty))
	}
}
