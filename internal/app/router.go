package app

import (
	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/server"
)

func wireRouter(cfg Config, handlerSet Handlers, middlewareSet Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthMiddleware: middlewareSet.Auth,
		TagHandler:     handlerSet.Tag,
		SchemaHandler:  handlerSet.Schema,
		PayloadHandler: handlerSet.Payload,
		AdminHandler:   handlerSet.Admin,
		AllowOrigins:   cfg.AllowOrigins,
	})
}
