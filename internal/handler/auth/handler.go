package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mingxw/aerochat/backend/internal/model/user"
	authservice "github.com/mingxw/aerochat/backend/internal/service/auth"
	"github.com/mingxw/aerochat/backend/pkg/utils"
)

// Handler 注册与登录的HTTP处理器
type Handler struct {
	auth     *authservice.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// New 创建认证处理器
func New(auth *authservice.Service, logger *zap.Logger) *Handler {
	return &Handler{
		auth:     auth,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes 注册认证相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// handleRegister 创建账号并直接返回已签名的令牌。
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "a valid email and a password of at least 8 characters are required")
		return
	}

	u, token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrEmailTaken) {
			utils.RespondError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("failed to register user", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

// handleLogin 校验凭证并返回新的令牌。
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("failed to log user in", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	utils.RespondJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}
