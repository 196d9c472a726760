package logger

import (
	"github.com/agrovision/riceleaf-api/internal/config"

	"go.uber.org/zap"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	switch cfg.Environment {
	case "production":
		return zap.NewProduction()
	case "test":
		return zap.NewExample(), nil
	default:
		return zap.NewDevelopment()
	}
}

func MustNew(cfg *config.Config) *zap.Logger {
	return zap.Must(New(cfg))
}
