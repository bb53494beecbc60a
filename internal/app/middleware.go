package app

import (
	"github.com/opencdb/cdb-backend/internal/middleware"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, serviceSet Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, serviceSet.Auth),
	}
}
