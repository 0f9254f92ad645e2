package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatmodel "github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/session"
	"github.com/mingxw/aerochat/backend/internal/model/user"
	"github.com/mingxw/aerochat/backend/internal/store"
)

func setupRouter(t *testing.T, mem *store.Memory) http.Handler {
	t.Helper()

	r := chi.NewRouter()
	New(mem, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestListChats(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	older := chatmodel.Chat{ID: "c1", UserID: "u1", Title: "First trip", CreatedAt: time.Now().Add(-time.Hour)}
	newer := chatmodel.Chat{ID: "c2", UserID: "u1", Title: "Second trip", CreatedAt: time.Now()}
	foreign := chatmodel.Chat{ID: "c3", UserID: "u2", Title: "Not yours", CreatedAt: time.Now()}
	for _, c := range []chatmodel.Chat{older, newer, foreign} {
		if err := mem.SaveChat(ctx, c); err != nil {
			t.Fatalf("SaveChat: %v", err)
		}
	}

	router := setupRouter(t, mem)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	sess := &session.Session{User: &user.User{ID: "u1", Email: "u1@example.com"}}
	req = req.WithContext(session.NewContext(req.Context(), sess))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var chats []chatmodel.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(chats))
	}
	if chats[0].ID != "c2" || chats[1].ID != "c1" {
		t.Fatalf("chats not newest first: %s, %s", chats[0].ID, chats[1].ID)
	}
}

func TestListChatsEmpty(t *testing.T) {
	router := setupRouter(t, store.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	sess := &session.Session{User: &user.User{ID: "u1", Email: "u1@example.com"}}
	req = req.WithContext(session.NewContext(req.Context(), sess))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var chats []chatmodel.Chat
	if err := json.Unmarshal(rec.Body.Bytes(), &chats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected no chats, got %d", len(chats))
	}
}

func TestListChatsRequiresSession(t *testing.T) {
	router := setupRouter(t, store.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
