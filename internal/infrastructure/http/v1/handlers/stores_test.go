package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/types"
	"confhub/internal/domain/stores/storestest"
	"confhub/internal/infrastructure/http/v1/dto"
	"confhub/internal/infrastructure/http/v1/middleware"
)

func ledgerRouter(t *testing.T) (*gin.Engine, *storestest.Stores) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dto.RegisterValidators()

	stores := storestest.New()
	h := NewStoresHandler(NewBaseHandler(), StoresServices{Ledger: stores.Ledger()})

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/ledger/:itemId", h.AddLedgerEntry)
	r.POST("/ledger/:itemId/recalculate", h.Recalculate)
	return r, stores
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLedger_ManualEntriesAndRecalculate(t *testing.T) {
	r, stores := ledgerRouter(t)
	itemID := stores.Add("ST-001", 0, "2.50")
	path := "/ledger/" + itemID.String()

	w := postJSON(r, path, `{"transaction_type":"opening","quantity":100,"transaction_date":"2026-01-05"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(r, path, `{"transaction_type":"adjustment","quantity":"-30","transaction_date":"2026-01-06","remarks":"damaged"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, types.NewQuantity(70), stores.Stock(itemID))

	w = postJSON(r, path+"/recalculate", ``)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, result["updated"])
	assert.EqualValues(t, 70, result["closing_balance"])
	assert.Len(t, result["entries"], 2)
}

func TestLedger_RejectsUnknownType(t *testing.T) {
	r, stores := ledgerRouter(t)
	itemID := stores.Add("ST-002", 5, "1")

	w := postJSON(r, "/ledger/"+itemID.String(), `{"transaction_type":"received","quantity":5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[errorBody](t, w).Details["fields"].(map[string]any)
	assert.Contains(t, fields, "transaction_type")
}

func TestLedger_OverIssueIsRejected(t *testing.T) {
	r, stores := ledgerRouter(t)
	itemID := stores.Add("ST-003", 0, "1")
	path := "/ledger/" + itemID.String()

	require.Equal(t, http.StatusCreated, postJSON(r, path, `{"transaction_type":"opening","quantity":10,"transaction_date":"2026-01-05"}`).Code)

	w := postJSON(r, path, `{"transaction_type":"adjustment","quantity":-11,"transaction_date":"2026-01-06"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[errorBody](t, w).Code)
	assert.Equal(t, types.NewQuantity(10), stores.Stock(itemID))
}
