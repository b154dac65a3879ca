package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"confhub/internal/domain/stores/grn"
	"confhub/internal/domain/stores/issuance"
	"confhub/internal/domain/stores/item"
	"confhub/internal/domain/stores/ledger"
	"confhub/internal/infrastructure/export"
	"confhub/internal/infrastructure/http/v1/dto"
)

// StoresServices are the stores module services.
type StoresServices struct {
	Items     *item.Service
	GRNs      *grn.Service
	Issuances *issuance.Service
	Ledger    *ledger.Service
}

// StoresHandler serves items, goods received notes, issuance vouchers and the ledger.
type StoresHandler struct {
	*BaseHandler
	svc StoresServices
	now func() time.Time
}

// NewStoresHandler creates a stores handler.
func NewStoresHandler(base *BaseHandler, svc StoresServices) *StoresHandler {
	return &StoresHandler{
		BaseHandler: base,
		svc:         svc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// --- Items ---

// ListItems handles GET /api/stores/items
func (h *StoresHandler) ListItems(c *gin.Context) {
	var q dto.ItemQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.svc.Items.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// CreateItem handles POST /api/stores/items
func (h *StoresHandler) CreateItem(c *gin.Context) {
	var req dto.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	it := req.ToModel()
	if err := h.svc.Items.Create(c.Request.Context(), it); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, it)
}

// GetItem handles GET /api/stores/items/:id
func (h *StoresHandler) GetItem(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	it, err := h.svc.Items.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, it)
}

// UpdateItem handles PUT /api/stores/items/:id
func (h *StoresHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	it, err := h.svc.Items.Update(c.Request.Context(), itemID, req.Apply)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, it)
}

// DeleteItem handles DELETE /api/stores/items/:id
func (h *StoresHandler) DeleteItem(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Items.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ExportItems handles GET /api/stores/items/export.xlsx
func (h *StoresHandler) ExportItems(c *gin.Context) {
	items, err := h.svc.Items.All(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.ItemsXLSX(&buf, items); err != nil {
		h.Error(c, fmt.Errorf("export items: %w", err))
		return
	}
	name := fmt.Sprintf("stores-items-%s.xlsx", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- GRN ---

// ListGRNs handles GET /api/stores/grn
func (h *StoresHandler) ListGRNs(c *gin.Context) {
	var q dto.GRNQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.svc.GRNs.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// CreateGRN handles POST /api/stores/grn
func (h *StoresHandler) CreateGRN(c *gin.Context) {
	var req dto.GRNRequest
	if !h.BindJSON(c, &req) {
		return
	}
	g, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.svc.GRNs.Create(c.Request.Context(), g); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, g)
}

// GetGRN handles GET /api/stores/grn/:id
func (h *StoresHandler) GetGRN(c *gin.Context) {
	grnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	g, err := h.svc.GRNs.GetByID(c.Request.Context(), grnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, g)
}

// --- Issuance ---

// ListIssuances handles GET /api/stores/issuance
func (h *StoresHandler) ListIssuances(c *gin.Context) {
	var q dto.IssuanceQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.svc.Issuances.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// CreateIssuance handles POST /api/stores/issuance
func (h *StoresHandler) CreateIssuance(c *gin.Context) {
	var req dto.IssuanceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	v, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.svc.Issuances.Create(c.Request.Context(), v); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, v)
}

// GetIssuance handles GET /api/stores/issuance/:id
func (h *StoresHandler) GetIssuance(c *gin.Context) {
	issuanceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Issuances.GetByID(c.Request.Context(), issuanceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// SetIssuanceStatus handles PATCH /api/stores/issuance/:id/status
func (h *StoresHandler) SetIssuanceStatus(c *gin.Context) {
	issuanceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.IssuanceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	change, err := req.ToChange()
	if err != nil {
		h.Error(c, err)
		return
	}
	v, err := h.svc.Issuances.SetStatus(c.Request.Context(), issuanceID, change)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}

// --- Ledger ---

// GetLedger handles GET /api/stores/ledger/:itemId
func (h *StoresHandler) GetLedger(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	it, err := h.svc.Items.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	entries, err := h.svc.Ledger.List(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	h.OK(c, dto.LedgerResponse{Item: it, Entries: entries})
}

// AddLedgerEntry handles POST /api/stores/ledger/:itemId
func (h *StoresHandler) AddLedgerEntry(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	var req dto.LedgerEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry, err := h.svc.Ledger.AddManual(c.Request.Context(), itemID, req.ToManual(h.now()))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// Recalculate handles POST /api/stores/ledger/:itemId/recalculate
func (h *StoresHandler) Recalculate(c *gin.Context) {
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}
	result, err := h.svc.Ledger.Recalculate(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// RegisterRoutes registers the stores routes.
func (h *StoresHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/items")
	items.GET("", h.ListItems)
	items.POST("", h.CreateItem)
	items.GET("/export.xlsx", h.ExportItems)
	items.GET("/:id", h.GetItem)
	items.PUT("/:id", h.UpdateItem)
	items.DELETE("/:id", h.DeleteItem)

	grns := rg.Group("/grn")
	grns.GET("", h.ListGRNs)
	grns.POST("", h.CreateGRN)
	grns.GET("/:id", h.GetGRN)

	vouchers := rg.Group("/issuance")
	vouchers.GET("", h.ListIssuances)
	vouchers.POST("", h.CreateIssuance)
	vouchers.GET("/:id", h.GetIssuance)
	vouchers.PATCH("/:id/status", h.SetIssuanceStatus)

	led := rg.Group("/ledger")
	led.GET("/:itemId", h.GetLedger)
	led.POST("/:itemId", h.AddLedgerEntry)
	led.POST("/:itemId/recalculate", h.Recalculate)
}
