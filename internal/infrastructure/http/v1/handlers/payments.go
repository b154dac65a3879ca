package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"confhub/internal/domain/payments"
	"confhub/internal/infrastructure/export"
	"confhub/internal/infrastructure/http/v1/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PaymentViewer builds the payment view.
type PaymentViewer interface {
	View(ctx context.Context, f payments.Filter) (*payments.View, error)
}

// PaymentsHandler serves the merged payment view and its exports.
type PaymentsHandler struct {
	*BaseHandler
	service PaymentViewer
	now     func() time.Time
}

// NewPaymentsHandler creates a payments handler.
func NewPaymentsHandler(base *BaseHandler, service PaymentViewer) *PaymentsHandler {
	return &PaymentsHandler{BaseHandler: base, service: service, now: time.Now}
}

func (h *PaymentsHandler) view(c *gin.Context) (*payments.View, bool) {
	var q dto.PaymentQuery
	if !h.BindQuery(c, &q) {
		return nil, false
	}
	v, err := h.service.View(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return v, true
}

// List handles GET /api/admin/payments
func (h *PaymentsHandler) List(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	h.OK(c, v)
}

// ExportCSV handles GET /api/admin/payments/export.csv
func (h *PaymentsHandler) ExportCSV(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	h.attachment(c, "csv", "text/csv; charset=utf-8", func(w io.Writer) error {
		return export.PaymentsCSV(w, v)
	})
}

// ExportXLSX handles GET /api/admin/payments/export.xlsx
func (h *PaymentsHandler) ExportXLSX(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	h.attachment(c, "xlsx", xlsxContentType, func(w io.Writer) error {
		return export.PaymentsXLSX(w, v)
	})
}

// attachment renders into a buffer first so a failed export still gets a JSON error.
func (h *PaymentsHandler) attachment(c *gin.Context, ext, contentType string, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.Error(c, fmt.Errorf("export payments: %w", err))
		return
	}
	name := fmt.Sprintf("payments-%s.%s", h.now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// RegisterRoutes registers payment routes.
func (h *PaymentsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/export.csv", h.ExportCSV)
	rg.GET("/export.xlsx", h.ExportXLSX)
}
