package server

import (
	"github.com/agrovision/riceleaf-api/internal/handlers"
)

func (s *Server) SetupRoutes(h *handlers.Handler) {
	s.engine.GET("/health", h.Health)

	apiV1 := s.engine.Group("/api/v1")
	apiV1.POST("/classify", h.Classify)
	apiV1.POST("/classify/tensor", h.ClassifyTensor)
	apiV1.GET("/history", h.History)
}
