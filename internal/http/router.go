package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(handler *Handler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}/batches", handler.ProductBatches)
		r.Delete("/products/{id}", handler.ArchiveProduct)

		r.Get("/inventory/summary", handler.InventorySummary)
		r.Get("/inventory/snapshot", handler.InventorySnapshot)

		r.Post("/stock/entries", handler.CreateStockEntry)
		r.Post("/stock/adjustments", handler.CreateStockAdjustment)
		r.Post("/stock/import-excel", handler.ImportStockEntries)
		r.Get("/stock/report.xlsx", handler.StockReport)

		r.Get("/suppliers", handler.ListSuppliers)
		r.Post("/suppliers", handler.CreateSupplier)
		r.Patch("/suppliers/{id}", handler.UpdateSupplier)
		r.Delete("/suppliers/{id}", handler.ArchiveSupplier)

		r.Get("/notifications", handler.ListNotifications)
		r.Post("/notifications/read", handler.MarkNotificationsRead)
		r.Get("/notifications/unread-count", handler.UnreadNotificationCount)
	})

	return r
}
