package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
	"github.com/opencdb/cdb-backend/internal/types"
)

type TagHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewTagHandler(log *logger.Logger, csvc services.CatalogService) *TagHandler {
	return &TagHandler{
		log:            log.With("handler", "TagHandler"),
		catalogService: csvc,
	}
}

// GET /api/tags
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"tags": tags})
}

type tagRequest struct {
	Op     string `json:"op"`
	ID     string `json:"id"`
	Pid    string `json:"pid"`
	Name   string `json:"name"`
	Tbname string `json:"tbname"`
	Ct     int64  `json:"ct"`
	Dt     int64  `json:"dt"`
	Mode   int64  `json:"mode"`
}

// POST /api/tag
// op=create inserts a tag (and provisions its partition); op=deactivate
// stamps the tombstone.
func (h *TagHandler) MutateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput, err)
		return
	}

	switch req.Op {
	case "create":
		id, err := h.catalogService.CreateTag(c.Request.Context(), &types.Tag{
			ID:     req.ID,
			Pid:    req.Pid,
			Name:   req.Name,
			Tbname: req.Tbname,
			Ct:     req.Ct,
			Mode:   req.Mode,
		})
		if err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, gin.H{"id": id})

	case "deactivate":
		if err := h.catalogService.DeactivateTag(c.Request.Context(), req.ID, req.Dt); err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, gin.H{"id": req.ID})

	default:
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput,
			fmt.Errorf("unknown tag operation %q: neither create nor deactivate", req.Op))
	}
}
