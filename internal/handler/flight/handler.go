package flight

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	flightservice "github.com/mingxw/aerochat/backend/internal/service/flight"
)

// Handler 航班实时状态推送的WebSocket处理器
type Handler struct {
	flights  *flightservice.Generator
	upgrader websocket.Upgrader
	interval time.Duration
	logger   *zap.Logger
}

// New 创建航班状态处理器
func New(flights *flightservice.Generator, logger *zap.Logger) *Handler {
	return &Handler{
		flights: flights,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		interval: 5 * time.Second,
		logger:   logger,
	}
}

// RegisterRoutes 注册航班相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/flights/{number}/live", h.handleLiveStatus)
}

type statusFrame struct {
	Type      string      `json:"type"`
	Flight    interface{} `json:"flight,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleLiveStatus 升级到WebSocket后按固定间隔推送当天的航班状态快照。
func (h *Handler) handleLiveStatus(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(chi.URLParam(r, "number"))
	if number == "" {
		http.Error(w, "flight number is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("flight", number), zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("flight feed opened", zap.String("flight", number))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	// 客户端不需要发数据，读循环只用于感知连接关闭。
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	if err := h.pushStatus(conn, number); err != nil {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("flight feed closed", zap.String("flight", number))
			return
		case <-ticker.C:
			if err := h.pushStatus(conn, number); err != nil {
				h.logger.Warn("flight feed write failed", zap.String("flight", number), zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) pushStatus(conn *websocket.Conn, number string) error {
	today := time.Now().UTC().Format("2006-01-02")
	return conn.WriteJSON(statusFrame{
		Type:      "status",
		Flight:    h.flights.FlightStatus(number, today),
		Timestamp: time.Now().Unix(),
	})
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
