package api

import (
	"aiva/internal/entity"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func chatRouter(h *HTTPHandler) *gin.Engine {
	router := gin.New()
	authed := router.Group("/api", h.AuthMiddleware())
	authed.GET("/chats", h.ListChats)
	authed.POST("/chats", h.CreateChat)
	authed.GET("/chats/:id", h.GetChat)
	authed.PATCH("/chats/:id", h.UpdateChat)
	authed.DELETE("/chats/:id", h.DeleteChat)
	authed.GET("/chats/:id/messages", h.ListMessages)
	authed.POST("/chats/:id/messages", h.CreateMessage)
	authed.DELETE("/chats/:id/messages/:message_id", h.DeleteMessage)
	authed.GET("/search", h.SearchMessages)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatLifecycle(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := chatRouter(handler)

	owner := seedAPIUser(t, repo, "owner@example.com", entity.UserRoleUser, true)
	token := issueToken(t, handler, owner)

	// create
	w := doJSON(t, router, http.MethodPost, "/api/chats", token, entity.ChatCreateRequest{Title: "Trip planning"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body: %s)", w.Code, w.Body.String())
	}
	var created entity.ChatSummary
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if created.Title != "Trip planning" || created.UserID != owner.ID {
		t.Fatalf("unexpected chat: %+v", created)
	}

	// list
	w = doJSON(t, router, http.MethodGet, "/api/chats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var list entity.ChatListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(list.Chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(list.Chats))
	}

	// rename
	newTitle := "Trip to Lisbon"
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/chats/%d", created.ID), token, entity.ChatUpdateRequest{Title: &newTitle})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	var renamed entity.ChatSummary
	if err := json.Unmarshal(w.Body.Bytes(), &renamed); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if renamed.Title != newTitle {
		t.Errorf("expected title %q, got %q", newTitle, renamed.Title)
	}

	// delete
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/chats/%d", created.ID), token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/chats/%d", created.ID), token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", w.Code)
	}
}

func TestChatOwnershipScoping(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := chatRouter(handler)

	owner := seedAPIUser(t, repo, "owner@example.com", entity.UserRoleUser, true)
	stranger := seedAPIUser(t, repo, "stranger@example.com", entity.UserRoleUser, true)
	admin := seedAPIUser(t, repo, "admin@example.com", entity.UserRoleAdmin, true)

	chat := &entity.DbChat{UserID: owner.ID, Title: "Private"}
	if err := repo.CreateChat(context.Background(), chat); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	t.Run("stranger sees 404", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), issueToken(t, handler, stranger), nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("admin may read any chat", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/chats/%d", chat.ID), issueToken(t, handler, admin), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
		}
	})

	t.Run("stranger list excludes foreign chats", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/chats", issueToken(t, handler, stranger), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var list entity.ChatListResponse
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if len(list.Chats) != 0 {
			t.Fatalf("expected no chats, got %d", len(list.Chats))
		}
	})
}

func TestMessageFlow(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := chatRouter(handler)

	owner := seedAPIUser(t, repo, "owner@example.com", entity.UserRoleUser, true)
	token := issueToken(t, handler, owner)

	chat := &entity.DbChat{UserID: owner.ID, Title: "Notes"}
	if err := repo.CreateChat(context.Background(), chat); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	// post a message
	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/chats/%d/messages", chat.ID), token, entity.MessageCreateRequest{
		Content:     "Remember the milk",
		Attachments: []string{"attachments/2026/08/30/abc.png"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body: %s)", w.Code, w.Body.String())
	}

	var createResp struct {
		Message         entity.MessageItem `json:"message"`
		AssistantQueued bool               `json:"assistant_queued"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &createResp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if createResp.Message.Role != entity.MessageRoleUser {
		t.Errorf("expected user role, got %q", createResp.Message.Role)
	}
	if createResp.AssistantQueued {
		t.Error("expected no assistant queued without a configured backend")
	}
	if len(createResp.Message.Attachments) != 1 {
		t.Fatalf("expected 1 attachment link, got %d", len(createResp.Message.Attachments))
	}
	if createResp.Message.Attachments[0].URL != "/files/attachments/2026/08/30/abc.png" {
		t.Errorf("unexpected attachment url %q", createResp.Message.Attachments[0].URL)
	}

	// list messages
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/chats/%d/messages", chat.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var list entity.MessageListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(list.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(list.Messages))
	}

	// delete, then deleting again is a 404
	path := fmt.Sprintf("/api/chats/%d/messages/%d", chat.ID, createResp.Message.ID)
	if w = doJSON(t, router, http.MethodDelete, path, token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if w = doJSON(t, router, http.MethodDelete, path, token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestSearchScopedToCaller(t *testing.T) {
	handler, repo := newTestHandler(t)
	router := chatRouter(handler)

	owner := seedAPIUser(t, repo, "owner@example.com", entity.UserRoleUser, true)
	other := seedAPIUser(t, repo, "other@example.com", entity.UserRoleUser, true)
	admin := seedAPIUser(t, repo, "admin@example.com", entity.UserRoleAdmin, true)

	ownerChat := &entity.DbChat{UserID: owner.ID, Title: "Owner chat"}
	otherChat := &entity.DbChat{UserID: other.ID, Title: "Other chat"}
	for _, chat := range []*entity.DbChat{ownerChat, otherChat} {
		if err := repo.CreateChat(context.Background(), chat); err != nil {
			t.Fatalf("seed chat: %v", err)
		}
	}
	seedMessages := []entity.DbMessage{
		{ChatID: ownerChat.ID, Role: entity.MessageRoleUser, Content: "rocket launch schedule"},
		{ChatID: otherChat.ID, Role: entity.MessageRoleUser, Content: "rocket fuel budget"},
	}
	for idx := range seedMessages {
		if err := repo.CreateMessage(context.Background(), &seedMessages[idx]); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	search := func(token, keyword string) entity.SearchResponse {
		t.Helper()
		w := doJSON(t, router, http.MethodGet, "/api/search?q="+keyword, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
		}
		var resp entity.SearchResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		return resp
	}

	if resp := search(issueToken(t, handler, owner), "rocket"); len(resp.Results) != 1 {
		t.Errorf("expected owner to find 1 result, got %d", len(resp.Results))
	}
	if resp := search(issueToken(t, handler, admin), "rocket"); len(resp.Results) != 2 {
		t.Errorf("expected admin to find 2 results, got %d", len(resp.Results))
	}
	if resp := search(issueToken(t, handler, owner), "ROCKET"); len(resp.Results) != 1 {
		t.Errorf("expected case-insensitive match, got %d results", len(resp.Results))
	}

	t.Run("blank keyword rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/search", issueToken(t, handler, owner), nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}
