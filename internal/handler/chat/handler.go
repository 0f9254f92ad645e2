package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	chatmodel "github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/session"
	"github.com/mingxw/aerochat/backend/internal/service/ai"
	"github.com/mingxw/aerochat/backend/internal/service/title"
	"github.com/mingxw/aerochat/backend/internal/store"
	"github.com/mingxw/aerochat/backend/pkg/utils"
)

// Streamer 是聊天处理器对模型层的唯一依赖，便于在测试中替换。
type Streamer interface {
	StreamConversation(ctx context.Context, messages []*schema.Message) (*schema.StreamReader[*schema.Message], error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	streamer Streamer
	titles   *title.Service
	chats    store.ChatStore
	validate *validator.Validate
	logger   *zap.Logger
}

// New 创建聊天处理器。streamer 为 nil 时流式接口返回 503，删除接口不受影响。
func New(streamer Streamer, titles *title.Service, chats store.ChatStore, logger *zap.Logger) *Handler {
	return &Handler{
		streamer: streamer,
		titles:   titles,
		chats:    chats,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Delete("/chat/{id}", h.handleDeleteChat)
}

type chatRequest struct {
	ID       string              `json:"id" validate:"required"`
	Messages []chatmodel.Message `json:"messages" validate:"required,min=1,dive"`
}

// handleChat 运行一轮流式对话并在结束后保存会话记录。
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.streamer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	sess, signedIn := session.FromContext(r.Context())
	if !signedIn {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	filtered := filterMessages(req.Messages)
	stream, err := h.streamer.StreamConversation(r.Context(), buildModelInput(filtered))
	if err != nil {
		h.logger.Error("failed to start ai stream", zap.String("chatId", req.ID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
		return
	}
	defer stream.Close()

	utils.SetupTextStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			// 响应头已经发出，只能提前终止输出。
			h.logger.Warn("ai stream interrupted", zap.String("chatId", req.ID), zap.Error(recvErr))
			return
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			if err := utils.WriteStreamChunk(w, flusher, chunk.Content); err != nil {
				h.logger.Warn("client disconnected during stream", zap.String("chatId", req.ID), zap.Error(err))
				return
			}
		}
	}

	if len(chunks) == 0 {
		h.logger.Warn("ai stream produced no output", zap.String("chatId", req.ID))
		return
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		h.logger.Error("failed to assemble streamed response", zap.String("chatId", req.ID), zap.Error(err))
		return
	}

	// 保存失败只记录日志，不影响已经发出的响应。
	h.persistTranscript(r.Context(), sess, req.ID, filtered, response.Content)
}

// handleDeleteChat 删除一条会话记录。
func (h *Handler) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.RespondError(w, http.StatusNotFound, "not found")
		return
	}

	sess, signedIn := session.FromContext(r.Context())
	if !signedIn {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := h.chats.GetChatByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load chat for deletion", zap.String("chatId", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}
	if c.UserID != sess.User.ID {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.chats.DeleteChatByID(r.Context(), id); err != nil {
		h.logger.Error("failed to delete chat", zap.String("chatId", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	utils.RespondText(w, http.StatusOK, "Chat deleted")
}

// persistTranscript 以完整的对话内容覆盖存储中的会话，新会话同时生成标题。
func (h *Handler) persistTranscript(ctx context.Context, sess *session.Session, chatID string, history []chatmodel.Message, assistantReply string) {
	titleText := ""

	existing, err := h.chats.GetChatByID(ctx, chatID)
	switch {
	case err == nil:
		if existing.UserID != sess.User.ID {
			h.logger.Warn("refusing to overwrite chat owned by another user", zap.String("chatId", chatID))
			return
		}
	case errors.Is(err, store.ErrNotFound):
		titleText = h.titles.ForMessage(ctx, firstUserMessage(history))
	default:
		h.logger.Error("failed to check existing chat", zap.String("chatId", chatID), zap.Error(err))
		return
	}

	transcript := make([]chatmodel.Message, 0, len(history)+1)
	transcript = append(transcript, history...)
	transcript = append(transcript, chatmodel.Message{
		Role:    chatmodel.RoleAssistant,
		Content: assistantReply,
	})

	err = h.chats.SaveChat(ctx, chatmodel.Chat{
		ID:       chatID,
		UserID:   sess.User.ID,
		Title:    titleText,
		Messages: transcript,
	})
	if err != nil {
		h.logger.Error("failed to save chat", zap.String("chatId", chatID), zap.Error(err))
	}
}

// filterMessages 去掉内容为空的消息，它们对模型没有意义。
func filterMessages(messages []chatmodel.Message) []chatmodel.Message {
	filtered := make([]chatmodel.Message, 0, len(messages))
	for _, msg := range messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		filtered = append(filtered, msg)
	}
	return filtered
}

func buildModelInput(messages []chatmodel.Message) []*schema.Message {
	input := make([]*schema.Message, 0, len(messages)+1)
	input = append(input, schema.SystemMessage(ai.SystemPrompt(time.Now())))

	for _, msg := range messages {
		switch msg.Role {
		case chatmodel.RoleUser:
			input = append(input, schema.UserMessage(msg.Content))
		case chatmodel.RoleAssistant:
			input = append(input, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return input
}

func firstUserMessage(messages []chatmodel.Message) string {
	for _, msg := range messages {
		if msg.Role == chatmodel.RoleUser {
			return msg.Content
		}
	}
	return ""
}
