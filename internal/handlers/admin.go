package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
)

type AdminHandler struct {
	log          *logger.Logger
	adminService services.AdminService
}

func NewAdminHandler(log *logger.Logger, asvc services.AdminService) *AdminHandler {
	return &AdminHandler{
		log:          log.With("handler", "AdminHandler"),
		adminService: asvc,
	}
}

type tablesRequest struct {
	Op string `json:"op"`
}

// POST /api/tables
// op=list enumerates partitions, op=create provisions the fixed tables,
// op=drop removes every conditions table. Drop exists for test/bootstrap
// environments and sits behind the admin role.
func (h *AdminHandler) MutateTables(c *gin.Context) {
	var req tablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput, err)
		return
	}

	ctx := c.Request.Context()
	switch req.Op {
	case "list":
		partitions, err := h.adminService.ListPartitions(ctx)
		if err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, gin.H{"tables": partitions})

	case "create":
		if err := h.adminService.ProvisionFixed(ctx); err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, gin.H{"success": true})

	case "drop":
		if err := h.adminService.DropAll(ctx); err != nil {
			RespondAPIError(c, err)
			return
		}
		RespondOK(c, gin.H{"success": true})

	default:
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput,
			fmt.Errorf("unknown tables operation %q", req.Op))
	}
}
