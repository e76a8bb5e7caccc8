package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/api"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/config"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/service/project"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/store"
)

// Version 构建版本，发布时通过 -ldflags 注入
var Version = "dev"

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	handler http.Handler
	store   store.ProjectStore
	manager *project.Manager
	api     *api.Handler
	log     zerolog.Logger

	http *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, log zerolog.Logger) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data dir: %w", err)
	}

	tables, err := LoadTables(cfg)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	manager, err := project.NewManager(
		filepath.Join(dataDir, "projects"),
		st,
		NewCoordinator(cfg, tables, log),
		NewEngine(cfg, tables, log),
		log,
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	handler := api.NewHandler(manager, api.Options{
		ExportDir:      filepath.Join(dataDir, "exports"),
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		StoreDriver:    cfg.Data.Store,
		Version:        Version,
		Logger:         log,
	})

	s := &Server{
		router:  gin.New(),
		store:   st,
		manager: manager,
		api:     handler,
		log:     log,
	}
	s.setupRoutes(cfg)

	log.Info().
		Str("dataDir", dataDir).
		Str("store", cfg.Data.Store).
		Int("resources", len(tables.Resources)).
		Int("products", len(tables.Products)).
		Msg("服务初始化完成")
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(cfg *config.AppConfig) {
	s.router.Use(gin.Recovery(), requestLogger(s.log))

	group := s.router.Group("/api")
	{
		s.api.RegisterRoutes(group)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.Response{Code: api.CodeNotFound, Message: "not found"})
	})

	origins := cfg.Server.CORSOrigins
	if cfg.Server.DevMode || len(origins) == 0 {
		origins = []string{"*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}).Handler(s.router)
}

// requestLogger 每个请求一条访问日志
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("请求")
	}
}

// Handler 带 CORS 的 HTTP 入口
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run 启动服务器，阻塞直到服务关闭
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收请求并关闭存储
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Manager 项目管理器（用于测试）
func (s *Server) Manager() *project.Manager {
	return s.manager
}
