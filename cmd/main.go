// cmd/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
	"github.com/rs/cors"

	"hanzi_keep/internal/config"
	"hanzi_keep/internal/handlers"
	"hanzi_keep/internal/middleware"
	"hanzi_keep/internal/quiz"
	"hanzi_keep/internal/repository"
	"hanzi_keep/internal/service"
	"hanzi_keep/internal/srs"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	//　設定ファイル読み込み用の一時的なロガー設定
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(tempLogger)
	log.Println("Log Config Loading...")

	// Configを読み込み
	if err := config.LoadConfig("./configs"); err != nil {
		slog.Error("Error loading configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// === 設定に基づいて slog ロガーを初期化 ===
	logLevel := new(slog.LevelVar)
	switch strings.ToLower(config.Cfg.Log.Level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
		slog.Warn("Unknown log level specified in config, defaulting to INFO", slog.String("level", config.Cfg.Log.Level))
	}

	var handler slog.Handler
	appEnv := os.Getenv("APP_ENV")
	if strings.ToLower(appEnv) == "dev" {
		// 開発環境では色付きのテキストログを使う
		tintOpts := &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		}
		handler = tint.NewHandler(os.Stderr, tintOpts)
		tempLogger.Info("Using TINT log handler", slog.String("APP_ENV", appEnv))
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}
		handler = slog.NewJSONHandler(os.Stderr, jsonOpts)
		tempLogger.Info("Using JSON log handler", slog.String("APP_ENV", appEnv))
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("Application starting...")

	// データベース接続 (GORM)
	db, err := repository.NewDB(config.Cfg.Database.URL, logger)
	if err != nil {
		slog.Error("Error initializing database", slog.Any("error", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("Database connection closed.")
		}
	}()

	// Dependency Injection
	tenantRepo := repository.NewGormTenantRepository()
	setRepo := repository.NewGormSetRepository()
	recordRepo := repository.NewGormRecordRepository()

	generator := quiz.NewGenerator(nil)
	evaluator := quiz.NewEvaluator(nil)
	scheduler := srs.NewScheduler(nil, nil)

	tenantService := service.NewTenantService(db, tenantRepo)
	setService := service.NewSetService(db, setRepo)
	progressService := service.NewProgressService(db, setRepo, recordRepo, scheduler, &config.Cfg)
	practiceService := service.NewPracticeService(db, setRepo, recordRepo, generator, evaluator, scheduler, &config.Cfg, logger)

	tenantHandler := handlers.NewTenantHandler(tenantService, logger)
	setHandler := handlers.NewSetHandler(setService, logger)
	practiceHandler := handlers.NewPracticeHandler(practiceService, logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger)

	// Setup Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsOptions := cors.Options{
		AllowedOrigins:   config.Cfg.CORS.AllowedOrigins,
		AllowedMethods:   config.Cfg.CORS.AllowedMethods,
		AllowedHeaders:   config.Cfg.CORS.AllowedHeaders,
		ExposedHeaders:   config.Cfg.CORS.ExposedHeaders,
		AllowCredentials: config.Cfg.CORS.AllowCredentials,
		MaxAge:           config.Cfg.CORS.MaxAge,
	}
	r.Use(cors.New(corsOptions).Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/tenants", tenantHandler.PostTenant)

		// --- Protected routes (require Tenant ID) ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.TenantAuthMiddleware(tenantService))

			// 単語帳と単語のCRUD
			r.Route("/sets", func(r chi.Router) {
				r.Post("/", setHandler.PostSet)
				r.Get("/", setHandler.GetSets)
				r.Get("/{set_id}", setHandler.GetSet)
				r.Patch("/{set_id}", setHandler.PatchSet)
				r.Delete("/{set_id}", setHandler.DeleteSet)

				r.Post("/{set_id}/items", setHandler.PostItem)
				r.Patch("/{set_id}/items/{item_id}", setHandler.PatchItem)
				r.Delete("/{set_id}/items/{item_id}", setHandler.DeleteItem)

				// フラッシュカードなど1問単位の復習結果
				r.Post("/{set_id}/items/{item_id}/review", progressHandler.PostReview)
			})

			// 練習セッション
			r.Route("/practice", func(r chi.Router) {
				r.Post("/sessions", practiceHandler.PostSession)
				r.Get("/sessions/{session_id}", practiceHandler.GetSession)
				r.Post("/sessions/{session_id}/answers", practiceHandler.PostAnswer)
				r.Post("/sessions/{session_id}/advance", practiceHandler.PostAdvance)
				r.Delete("/sessions/{session_id}", practiceHandler.DeleteSession)

				// ミックスセッション（テナントごとに1つ）
				r.Post("/mixed", practiceHandler.PostMixed)
				r.Get("/mixed", practiceHandler.GetMixed)
				r.Post("/mixed/complete", practiceHandler.PostMixedComplete)
				r.Post("/mixed/advance", practiceHandler.PostMixedAdvance)
			})

			// 学習進捗
			r.Route("/progress", func(r chi.Router) {
				r.Get("/due", progressHandler.GetDueSummary)
				r.Get("/mastery", progressHandler.GetMastery)
				r.Get("/records", progressHandler.GetRecords)
			})
		})
	})

	// Health Check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := sqlDB.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "Health check failed: could not ping DB", slog.Any("error", err))
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Start Server
	server := &http.Server{
		Addr:         config.Cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", slog.String("port", config.Cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not listen on port", slog.String("port", config.Cfg.Server.Port), slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.Any("error", err))
	}

	log.Println("Server exiting")
}
