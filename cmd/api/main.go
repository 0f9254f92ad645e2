package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mingxw/aerochat/backend/internal/config"
	"github.com/mingxw/aerochat/backend/internal/handler"
	chathandler "github.com/mingxw/aerochat/backend/internal/handler/chat"
	"github.com/mingxw/aerochat/backend/internal/service/ai"
	authservice "github.com/mingxw/aerochat/backend/internal/service/auth"
	flightservice "github.com/mingxw/aerochat/backend/internal/service/flight"
	"github.com/mingxw/aerochat/backend/internal/service/title"
	"github.com/mingxw/aerochat/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage
	var st store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgres(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		st = pg
		logger.Info("connected to postgres")
	} else {
		st = store.NewMemory()
		logger.Warn("DATABASE_URL not set, using in-memory storage; data will not survive restarts")
	}

	authSvc, err := authservice.NewService(st, cfg.Auth, logger)
	if err != nil {
		logger.Fatal("failed to initialize auth service", zap.Error(err))
	}

	flights := flightservice.NewGenerator()

	// Initialize AI service
	var streamer chathandler.Streamer
	var titleSvc *title.Service
	if cfg.AI.Enabled() {
		toolbox := ai.NewToolbox(st, flights, cfg.Weather.BaseURL, logger)
		aiSvc, err := ai.NewService(ctx, cfg.AI, toolbox)
		if err != nil {
			logger.Warn("failed to initialize AI service, 请检查 Ark 模型相关环境变量", zap.Error(err))
		} else {
			streamer = aiSvc
			logger.Info("AI service initialized successfully")

			titleSvc, err = title.NewService(ctx, aiSvc.GetChatModel(), logger)
			if err != nil {
				logger.Warn("failed to initialize title service, falling back to truncation", zap.Error(err))
				titleSvc = nil
			}
		}
	} else {
		logger.Warn("Ark 凭证未配置，跳过 AI 功能初始化")
	}

	if titleSvc == nil {
		titleSvc, _ = title.NewService(ctx, nil, logger)
	}

	router := handler.NewRouter(handler.Dependencies{
		Store:    st,
		Auth:     authSvc,
		Streamer: streamer,
		Titles:   titleSvc,
		Flights:  flights,
		CORS:     cfg.CORS,
		Logger:   logger,
	})

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("AeroChat backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
