package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pharmafront/internal/domain"
	"pharmafront/internal/excel"
	"pharmafront/internal/notify"
	"pharmafront/internal/service"
	"pharmafront/internal/upstream"
)

type Handler struct {
	svc *service.Service
	agg *notify.Aggregator
}

// NewHandler builds the screens' endpoint handler. agg may be nil when no
// aggregator runs in this process; the snapshot endpoint then reports 503.
func NewHandler(svc *service.Service, agg *notify.Aggregator) *Handler {
	return &Handler{svc: svc, agg: agg}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := service.ProductFilter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
	}
	if status := strings.TrimSpace(query.Get("status")); status != "" {
		switch domain.StockStatus(status) {
		case domain.StockStatusInStock, domain.StockStatusLowStock, domain.StockStatusOutOfStock:
			filter.Status = domain.StockStatus(status)
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
			return
		}
	}

	items, err := h.svc.ListProducts(r.Context(), filter)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) ProductBatches(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product id is required")
		return
	}
	rec, err := h.svc.ProductBatches(r.Context(), productID)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) ArchiveProduct(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product id is required")
		return
	}
	if err := h.svc.ArchiveProduct(r.Context(), productID); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": productID})
}

func (h *Handler) InventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.InventorySummary(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// InventorySnapshot serves the passive summary view: the aggregator's
// latest snapshot, without raising any alert.
func (h *Handler) InventorySnapshot(w http.ResponseWriter, r *http.Request) {
	if h.agg == nil {
		writeError(w, http.StatusServiceUnavailable, "notification polling is not running")
		return
	}
	snap, ok := h.agg.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type stockEntryRequest struct {
	ProductID       string   `json:"product_id"`
	Quantity        int      `json:"quantity"`
	Boxes           int      `json:"boxes"`
	SubUnitsPerBox  int      `json:"sub_units_per_box"`
	UnitsPerSubUnit int      `json:"units_per_sub_unit"`
	UnitsPerBox     int      `json:"units_per_box"`
	UnitCost        float64  `json:"unit_cost"`
	SRP             *float64 `json:"srp"`
	ExpirationDate  string   `json:"expiration_date"`
	EnteredBy       string   `json:"entered_by"`
}

func (h *Handler) CreateStockEntry(w http.ResponseWriter, r *http.Request) {
	var req stockEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reference, err := h.svc.StockEntry(r.Context(), input)
	if err != nil {
		if upstream.KindOf(err) == "" {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"batch_reference": reference})
}

func (req stockEntryRequest) toInput() (service.StockEntryInput, error) {
	input := service.StockEntryInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		SRP:       req.SRP,
		EnteredBy: req.EnteredBy,
	}
	input.Bulk.Boxes = req.Boxes
	input.Bulk.SubUnitsPerBox = req.SubUnitsPerBox
	input.Bulk.UnitsPerSubUnit = req.UnitsPerSubUnit
	input.Bulk.UnitsPerBox = req.UnitsPerBox
	if raw := strings.TrimSpace(req.ExpirationDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return service.StockEntryInput{}, fmt.Errorf("invalid expiration_date %q, want YYYY-MM-DD", raw)
		}
		day := parsed.UTC()
		input.Expiry = &day
	}
	return input, nil
}

type stockAdjustmentRequest struct {
	ProductID      string `json:"product_id"`
	BatchReference string `json:"batch_reference"`
	NewQuantity    int    `json:"new_quantity"`
	Reason         string `json:"reason"`
	AdjustedBy     string `json:"adjusted_by"`
}

func (h *Handler) CreateStockAdjustment(w http.ResponseWriter, r *http.Request) {
	var req stockAdjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.svc.AdjustStock(r.Context(), service.StockAdjustmentInput{
		ProductID:      req.ProductID,
		BatchReference: req.BatchReference,
		NewQuantity:    req.NewQuantity,
		Reason:         req.Reason,
		AdjustedBy:     req.AdjustedBy,
	})
	if err != nil {
		if upstream.KindOf(err) == "" {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"adjusted": req.BatchReference})
}

func (h *Handler) ImportStockEntries(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	entries, err := excel.ParseStockEntryRows(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.ImportStockEntries(r.Context(), entries)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) StockReport(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.svc.ListProducts(r.Context(), service.ProductFilter{})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stock-report.xlsx"`)
	if err := excel.WriteStockReport(w, overviews, time.Now()); err != nil {
		// Headers are already out; nothing sensible left to send.
		return
	}
}

func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.svc.Suppliers(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": suppliers, "count": len(suppliers)})
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var input upstream.SupplierInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	supplier, err := h.svc.CreateSupplier(r.Context(), input)
	if err != nil {
		if upstream.KindOf(err) == "" {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	supplierID := strings.TrimSpace(chi.URLParam(r, "id"))
	if supplierID == "" {
		writeError(w, http.StatusBadRequest, "supplier id is required")
		return
	}
	var input upstream.SupplierInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.UpdateSupplier(r.Context(), supplierID, input); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": supplierID})
}

func (h *Handler) ArchiveSupplier(w http.ResponseWriter, r *http.Request) {
	supplierID := strings.TrimSpace(chi.URLParam(r, "id"))
	if supplierID == "" {
		writeError(w, http.StatusBadRequest, "supplier id is required")
		return
	}
	if err := h.svc.ArchiveSupplier(r.Context(), supplierID); err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": supplierID})
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := parseOptionalInt(r.URL.Query().Get("limit"), 50)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, err := h.svc.Notifications(r.Context(), limit)
	if err != nil {
		writeNotificationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": alerts, "count": len(alerts)})
}

func (h *Handler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	marked, err := h.svc.MarkNotificationsRead(r.Context())
	if err != nil {
		writeNotificationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"marked": marked})
}

func (h *Handler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.UnreadNotifications(r.Context())
	if err != nil {
		writeNotificationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"unread": count})
}

func writeNotificationError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNoAlertStore) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeUpstreamError maps upstream failure kinds onto gateway statuses. The
// failures are never fatal here; the screens show a notice and keep their
// previous data.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch upstream.KindOf(err) {
	case upstream.KindTimeout:
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case upstream.KindNetwork, upstream.KindMalformed, upstream.KindRejected:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
