package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/agrovision/riceleaf-api/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Server struct {
	engine *gin.Engine
	inner  *http.Server
}

func New(cfg *config.Config) *Server {
	gin.SetMode(ginMode(cfg.Environment))
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       5 * time.Minute,
	}))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		engine: r,
		inner: &http.Server{
			Handler: r,
			Addr:    addr,
		},
	}
}

func (s *Server) Start() error {
	if err := s.inner.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.inner.Shutdown(ctx)
}

func ginMode(env string) string {
	switch env {
	case "development":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
