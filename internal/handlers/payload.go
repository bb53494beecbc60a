package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
	"github.com/opencdb/cdb-backend/internal/types"
)

type PayloadHandler struct {
	log             *logger.Logger
	resolverService services.ResolverService
	payloadService  services.PayloadService
}

func NewPayloadHandler(log *logger.Logger, rsvc services.ResolverService, psvc services.PayloadService) *PayloadHandler {
	return &PayloadHandler{
		log:             log.With("handler", "PayloadHandler"),
		resolverService: rsvc,
		payloadService:  psvc,
	}
}

// GET /api/payload?tb=<partition>&f=<flavor>&et=<event time>&run=&seq=&mt=<snapshot>
func (h *PayloadHandler) ResolvePayload(c *gin.Context) {
	partition := c.Query("tb")
	coord := types.Coordinate{
		Run:       queryInt64(c, "run"),
		Seq:       queryInt64(c, "seq"),
		EventTime: queryInt64(c, "et"),
	}
	snapshot := queryInt64(c, "mt")

	var flavors []string
	if f := c.Query("f"); f != "" {
		flavors = []string{f}
	}

	payload, err := h.resolverService.Resolve(c.Request.Context(), partition, flavors, coord, snapshot)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"payload": payload})
}

// POST /api/payloadrefs
// Bulk resolve: an array of requests in, a key→result map out. Elements
// fail independently.
func (h *PayloadHandler) ResolvePayloadRefs(c *gin.Context) {
	var requests []types.ResolveRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput, err)
		return
	}
	results := h.resolverService.ResolveBulk(c.Request.Context(), requests)
	RespondOK(c, gin.H{"results": results})
}

type payloadSetRequest struct {
	ID     string `json:"id"`
	Pid    string `json:"pid"`
	Flavor string `json:"flavor"`
	Ct     int64  `json:"ct"`
	Bt     int64  `json:"bt"`
	Et     int64  `json:"et"`
	Run    int64  `json:"run"`
	Seq    int64  `json:"seq"`
	Fmt    string `json:"fmt"`
	URI    string `json:"uri"`
	Tbname string `json:"tbname"`
	Data   []byte `json:"data"`
}

// POST /api/payloadset
func (h *PayloadHandler) SetPayload(c *gin.Context) {
	var req payloadSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput, err)
		return
	}

	entry := &types.IOVEntry{
		ID:     req.ID,
		Pid:    req.Pid,
		Flavor: req.Flavor,
		Ct:     req.Ct,
		Dt:     types.TimeUnset,
		Bt:     req.Bt,
		Et:     req.Et,
		Run:    req.Run,
		Seq:    req.Seq,
		Fmt:    req.Fmt,
		URI:    req.URI,
	}
	id, err := h.payloadService.SetPayload(c.Request.Context(), req.Tbname, entry, req.Data)
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id})
}

type payloadDeactivateRequest struct {
	ID     string `json:"id"`
	Tbname string `json:"tbname"`
	Dt     int64  `json:"dt"`
}

// POST /api/payloaddeactivate
func (h *PayloadHandler) DeactivatePayload(c *gin.Context) {
	var req payloadDeactivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeMalformedInput, err)
		return
	}
	if err := h.payloadService.DeactivatePayload(c.Request.Context(), req.Tbname, req.ID, req.Dt); err != nil {
		RespondAPIError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": req.ID})
}

// GET /api/download?tbname=<partition>&id=<entry id>
// Streams the raw payload bytes of a db:// entry.
func (h *PayloadHandler) DownloadData(c *gin.Context) {
	row, err := h.payloadService.DownloadData(c.Request.Context(), c.Query("tbname"), c.Query("id"))
	if err != nil {
		RespondAPIError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", row.Data)
}

func queryInt64(c *gin.Context, key string) int64 {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
