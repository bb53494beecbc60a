package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
)

type SchemaHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewSchemaHandler(log *logger.Logger, csvc services.CatalogService) *SchemaHandler {
	return &SchemaHandler{
		log:            log.With("handler", "SchemaHandler"),
		catalogService: csvc,
	}
}

// GET /api/schema?id=<tag id>
func (h *SchemaHandler) GetSchema(c *gin.Context) {
	pid := c.Query("id")
	schema, err := h.catalogService.GetSchema(c.Request.Context(), pid)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"tag_id": pid, "schema": schema.Data})
}

type schemaRequest struct {
	Op     string          `json:"op"`
	Pid    string          `json:"pid"`
	Schema json.RawMessage `json:"schema"`
	Ct     int64           `json:"ct"`
}

// POST /api/schema
func (h *SchemaHandler) MutateSchema(c *gin.Context) {
	var req schemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput, err)
		return
	}

	id, err := h.catalogService.SetSchema(c.Request.Context(), req.Op, req.Pid, req.Schema, req.Ct)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id})
}
