package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mingxw/aerochat/backend/internal/model/session"
	"github.com/mingxw/aerochat/backend/internal/store"
	"github.com/mingxw/aerochat/backend/pkg/utils"
)

// Handler 会话历史的HTTP处理器
type Handler struct {
	chats  store.ChatStore
	logger *zap.Logger
}

// New 创建历史处理器
func New(chats store.ChatStore, logger *zap.Logger) *Handler {
	return &Handler{
		chats:  chats,
		logger: logger,
	}
}

// RegisterRoutes 注册历史相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.handleListChats)
}

// handleListChats 列出当前用户的全部会话，按创建时间倒序。
func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	sess, signedIn := session.FromContext(r.Context())
	if !signedIn {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chats, err := h.chats.ListChatsByUser(r.Context(), sess.User.ID)
	if err != nil {
		h.logger.Error("failed to list chats", zap.String("userId", sess.User.ID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chats)
}
