package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/handlers"
	"github.com/opencdb/cdb-backend/internal/middleware"
	"github.com/opencdb/cdb-backend/internal/services"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	TagHandler     *handlers.TagHandler
	SchemaHandler  *handlers.SchemaHandler
	PayloadHandler *handlers.PayloadHandler
	AdminHandler   *handlers.AdminHandler
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", handlers.HealthCheck)

	// Read surface [role: get]
	read := router.Group("/api")
	read.Use(cfg.AuthMiddleware.Require(services.AccessGet))
	{
		read.GET("/tags", cfg.TagHandler.ListTags)
		read.GET("/schema", cfg.SchemaHandler.GetSchema)
		read.GET("/payload", cfg.PayloadHandler.ResolvePayload)
		read.POST("/payloadrefs", cfg.PayloadHandler.ResolvePayloadRefs)
		read.GET("/download", cfg.PayloadHandler.DownloadData)
	}

	// Write surface [role: set]
	write := router.Group("/api")
	write.Use(cfg.AuthMiddleware.Require(services.AccessSet))
	{
		write.POST("/tag", cfg.TagHandler.MutateTag)
		write.POST("/schema", cfg.SchemaHandler.MutateSchema)
		write.POST("/payloadset", cfg.PayloadHandler.SetPayload)
		write.POST("/payloaddeactivate", cfg.PayloadHandler.DeactivatePayload)
	}

	// Admin surface [role: admin]
	admin := router.Group("/api")
	admin.Use(cfg.AuthMiddleware.Require(services.AccessAdmin))
	{
		admin.POST("/tables", cfg.AdminHandler.MutateTables)
	}

	return router
}
