package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mingxw/aerochat/backend/internal/model/session"
	"github.com/mingxw/aerochat/backend/internal/store"
	"github.com/mingxw/aerochat/backend/pkg/utils"
)

// magicWord 是确认支付所需的口令，大小写不敏感。
const magicWord = "vercel"

// Handler 预订查询与支付确认的HTTP处理器
type Handler struct {
	reservations store.ReservationStore
	logger       *zap.Logger
}

// New 创建预订处理器
func New(reservations store.ReservationStore, logger *zap.Logger) *Handler {
	return &Handler{
		reservations: reservations,
		logger:       logger,
	}
}

// RegisterRoutes 注册预订相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reservation/{id}", h.handleGetReservation)
	r.Patch("/reservation/{id}", h.handleConfirmPayment)
}

// handleGetReservation 返回属于当前用户的预订详情。
func (h *Handler) handleGetReservation(w http.ResponseWriter, r *http.Request) {
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

	reservation, err := h.reservations.GetReservationByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load reservation", zap.String("reservationId", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	if reservation.UserID != sess.User.ID {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reservation)
}

type confirmPaymentRequest struct {
	MagicWord string `json:"magicWord"`
}

// handleConfirmPayment 校验口令并把预订标记为已支付。支付状态只会从未支付翻转到已支付一次。
func (h *Handler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
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

	reservation, err := h.reservations.GetReservationByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "reservation not found")
			return
		}
		h.logger.Error("failed to load reservation", zap.String("reservationId", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	if reservation.UserID != sess.User.ID {
		utils.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if reservation.HasCompletedPayment {
		utils.RespondError(w, http.StatusConflict, "reservation is already paid for")
		return
	}

	var req confirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "magic word is incorrect")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(req.MagicWord), magicWord) {
		utils.RespondError(w, http.StatusBadRequest, "magic word is incorrect")
		return
	}

	reservation.HasCompletedPayment = true
	if err := h.reservations.UpdateReservation(r.Context(), reservation); err != nil {
		h.logger.Error("failed to update reservation", zap.String("reservationId", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "an error occurred while processing your request")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reservation)
}
