package app

import (
	"github.com/opencdb/cdb-backend/internal/handlers"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
)

type Handlers struct {
	Tag     *handlers.TagHandler
	Schema  *handlers.SchemaHandler
	Payload *handlers.PayloadHandler
	Admin   *handlers.AdminHandler
}

func wireHandlers(log *logger.Logger, serviceSet Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Tag:     handlers.NewTagHandler(log, serviceSet.Catalog),
		Schema:  handlers.NewSchemaHandler(log, serviceSet.Catalog),
		Payload: handlers.NewPayloadHandler(log, serviceSet.Resolver, serviceSet.Payload),
		Admin:   handlers.NewAdminHandler(log, serviceSet.Admin),
	}
}
