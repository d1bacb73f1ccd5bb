// PaiQi 排期优化服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paiqi/paiqi/internal/config"
	"github.com/paiqi/paiqi/internal/database"
	"github.com/paiqi/paiqi/internal/handler"
	"github.com/paiqi/paiqi/internal/metrics"
	"github.com/paiqi/paiqi/internal/middleware"
	"github.com/paiqi/paiqi/internal/repository"
	"github.com/paiqi/paiqi/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logFormat := "json"
	if cfg.Log.Pretty {
		logFormat = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: logFormat,
		Output: "stdout",
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("排期服务启动中")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %w", err)
	}

	handlers, err := handler.New(cfg,
		repository.NewTaskRepository(db),
		repository.NewPlanRepository(db),
		repository.NewHolidayRepository(db),
	)
	if err != nil {
		return fmt.Errorf("初始化处理器失败: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, db, handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP服务监听中")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP服务异常退出: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("收到退出信号，开始优雅关闭")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("优雅关闭失败: %w", err)
	}

	logger.Info().Msg("排期服务已退出")
	return nil
}

// newRouter 组装全部路由与中间件
func newRouter(cfg *config.Config, db *database.DB, handlers *handler.Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewClientLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		r.Use(middleware.RateLimit(limiter))
	}
	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		metrics.SetDBStats(db.Stats())

		status := "ok"
		code := http.StatusOK
		if err := db.Health(req.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			logger.WithError(err).Msg("数据库健康检查失败")
		}

		writeJSON(w, code, map[string]interface{}{
			"status":  status,
			"service": cfg.App.Name,
			"version": Version,
		})
	})

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, metrics.Handler())
	}

	r.Mount("/api/v1", handlers.Routes())

	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
