package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pharmafront/internal/cache"
	"pharmafront/internal/domain"
	"pharmafront/internal/fifo"
	"pharmafront/internal/notify"
	"pharmafront/internal/store"
	"pharmafront/internal/upstream"
)

// InventoryAPI is the slice of the upstream client the service depends on.
type InventoryAPI interface {
	Products(ctx context.Context) ([]domain.Product, error)
	ProductsWithOldestBatch(ctx context.Context) ([]upstream.ProductStock, error)
	ProductBatches(ctx context.Context, productID string) ([]domain.Batch, error)
	FIFOStock(ctx context.Context) ([]domain.Batch, error)
	CreateBatch(ctx context.Context, entry upstream.BatchEntry) error
	AdjustStock(ctx context.Context, adj upstream.StockAdjustment) error
	ArchiveProduct(ctx context.Context, productID string) error
	Suppliers(ctx context.Context) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, input upstream.SupplierInput) (domain.Supplier, error)
	UpdateSupplier(ctx context.Context, supplierID string, input upstream.SupplierInput) error
	ArchiveSupplier(ctx context.Context, supplierID string) error
}

var ErrNoAlertStore = errors.New("alert store not configured")

const productsCacheKey = "pharmafront:products:overview"

// enrichmentLimit caps the per-product batch lookups during the fallback
// path so a large catalog cannot burst the upstream.
const enrichmentLimit = 8

type Service struct {
	api    InventoryAPI
	cache  *cache.Cache
	alerts *store.Store
	th     notify.Thresholds
	log    *zap.Logger
	now    func() time.Time
}

func New(api InventoryAPI, productCache *cache.Cache, alerts *store.Store, th notify.Thresholds, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		api:    api,
		cache:  productCache,
		alerts: alerts,
		th:     th,
		log:    log,
		now:    time.Now,
	}
}

type ProductFilter struct {
	Search   string
	Category string
	Status   domain.StockStatus
}

// ListProducts returns the warehouse listing with derived stock and expiry
// state. It prefers the upstream's precomputed oldest-batch listing and
// falls back to per-product batch enrichment when that action fails.
func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.ProductOverview, error) {
	stocks, err := s.productStocks(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	overviews := make([]domain.ProductOverview, 0, len(stocks))
	for _, stock := range stocks {
		if stock.Product.Archived {
			continue
		}
		overview := domain.ProductOverview{
			Product:        stock.Product,
			StockStatus:    fifo.StockStatusFor(stock.Product.TotalQuantity, s.th.LowStockThreshold),
			OldestExpiry:   stock.OldestExpiry,
			ExpiryDegraded: stock.Degraded,
		}
		overview.ExpiryState, overview.DaysToExpiry = fifo.ClassifyExpiryDate(stock.OldestExpiry, today, s.th.ExpiryWarningDays)
		if !matchesFilter(overview, filter) {
			continue
		}
		overviews = append(overviews, overview)
	}
	sort.Slice(overviews, func(i, j int) bool { return overviews[i].Name < overviews[j].Name })
	return overviews, nil
}

func (s *Service) productStocks(ctx context.Context) ([]upstream.ProductStock, error) {
	var cached []upstream.ProductStock
	if s.cache.Enabled() && s.cache.Get(ctx, productsCacheKey, &cached) {
		return cached, nil
	}

	stocks, err := s.api.ProductsWithOldestBatch(ctx)
	if err != nil {
		s.log.Warn("oldest-batch listing failed, enriching per product", zap.Error(err))
		stocks, err = s.enrichFromBatches(ctx)
		if err != nil {
			return nil, err
		}
	}

	s.cache.Set(ctx, productsCacheKey, stocks)
	return stocks, nil
}

// enrichFromBatches re-derives oldest-batch info per product via individual
// batch calls, bounded to enrichmentLimit in flight. A failed lookup
// degrades that one product to unknown expiry instead of failing the
// listing.
func (s *Service) enrichFromBatches(ctx context.Context) ([]upstream.ProductStock, error) {
	products, err := s.api.Products(ctx)
	if err != nil {
		return nil, err
	}

	stocks := make([]upstream.ProductStock, len(products))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(enrichmentLimit)
	for i, product := range products {
		group.Go(func() error {
			stock := upstream.ProductStock{Product: product}
			batches, err := s.api.ProductBatches(groupCtx, product.ID)
			if err != nil {
				s.log.Warn("batch lookup failed, degrading product",
					zap.String("product_id", product.ID), zap.Error(err))
				stock.Degraded = true
				stocks[i] = stock
				return nil
			}
			rec := fifo.Reconcile(batches)
			stock.Product.TotalQuantity = rec.TotalAvailable
			if info := fifo.ClassifyExpiry(batches, s.now(), s.th.ExpiryWarningDays); info.Expiry != nil {
				stock.OldestExpiry = info.Expiry
				stock.OldestBatchQuantity = info.Batch.AvailableQuantity
			}
			stocks[i] = stock
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return stocks, nil
}

func matchesFilter(overview domain.ProductOverview, filter ProductFilter) bool {
	if filter.Category != "" && !strings.EqualFold(overview.Category, filter.Category) {
		return false
	}
	if filter.Status != "" && overview.StockStatus != filter.Status {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(overview.Name), needle) &&
			!strings.Contains(strings.ToLower(overview.Barcode), needle) {
			return false
		}
	}
	return true
}

// ProductBatches returns the FIFO view of one product's batches.
func (s *Service) ProductBatches(ctx context.Context, productID string) (fifo.Reconciliation, error) {
	batches, err := s.api.ProductBatches(ctx, productID)
	if err != nil {
		return fifo.Reconciliation{}, err
	}
	return fifo.Reconcile(batches), nil
}

// BuildSnapshot implements notify.Source: products and warehouse-wide batch
// data fetched fresh, then classified. Each call is a full recomputation.
func (s *Service) BuildSnapshot(ctx context.Context) (notify.Snapshot, error) {
	var (
		products []domain.Product
		batches  []domain.Batch
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		products, err = s.api.Products(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		batches, err = s.api.FIFOStock(groupCtx)
		return err
	})
	if err := group.Wait(); err != nil {
		return notify.Snapshot{}, err
	}

	byProduct := make(map[string][]domain.Batch, len(products))
	for _, batch := range batches {
		byProduct[batch.ProductID] = append(byProduct[batch.ProductID], batch)
	}
	return notify.BuildSnapshot(products, byProduct, s.th, s.now()), nil
}

// InventorySummary counts products per status bucket for the dashboard
// cards.
type InventorySummary struct {
	TotalProducts int `json:"total_products"`
	TotalQuantity int `json:"total_quantity"`
	InStock       int `json:"in_stock"`
	LowStock      int `json:"low_stock"`
	OutOfStock    int `json:"out_of_stock"`
	ExpiringSoon  int `json:"expiring_soon"`
	Expired       int `json:"expired"`
}

func (s *Service) InventorySummary(ctx context.Context) (InventorySummary, error) {
	overviews, err := s.ListProducts(ctx, ProductFilter{})
	if err != nil {
		return InventorySummary{}, err
	}
	summary := InventorySummary{TotalProducts: len(overviews)}
	for _, overview := range overviews {
		summary.TotalQuantity += overview.TotalQuantity
		switch overview.StockStatus {
		case domain.StockStatusInStock:
			summary.InStock++
		case domain.StockStatusLowStock:
			summary.LowStock++
		case domain.StockStatusOutOfStock:
			summary.OutOfStock++
		}
		switch overview.ExpiryState {
		case domain.ExpiryStateExpiringSoon:
			summary.ExpiringSoon++
		case domain.ExpiryStateExpired:
			summary.Expired++
		}
	}
	return summary, nil
}

// ArchiveProduct soft-deletes a product upstream and drops the cached
// listing.
func (s *Service) ArchiveProduct(ctx context.Context, productID string) error {
	if err := s.api.ArchiveProduct(ctx, productID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productsCacheKey)
	return nil
}

func (s *Service) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.api.Suppliers(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, input upstream.SupplierInput) (domain.Supplier, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Supplier{}, errors.New("supplier name is required")
	}
	return s.api.CreateSupplier(ctx, input)
}

func (s *Service) UpdateSupplier(ctx context.Context, supplierID string, input upstream.SupplierInput) error {
	return s.api.UpdateSupplier(ctx, supplierID, input)
}

func (s *Service) ArchiveSupplier(ctx context.Context, supplierID string) error {
	return s.api.ArchiveSupplier(ctx, supplierID)
}

// Notifications lists locally stored alerts for the bell widget.
func (s *Service) Notifications(ctx context.Context, limit int) ([]domain.Alert, error) {
	if s.alerts == nil {
		return nil, ErrNoAlertStore
	}
	return s.alerts.ListAlerts(ctx, limit)
}

func (s *Service) MarkNotificationsRead(ctx context.Context) (int64, error) {
	if s.alerts == nil {
		return 0, ErrNoAlertStore
	}
	return s.alerts.MarkAllRead(ctx)
}

func (s *Service) UnreadNotifications(ctx context.Context) (int, error) {
	if s.alerts == nil {
		return 0, ErrNoAlertStore
	}
	return s.alerts.UnreadCount(ctx)
}

// StoreAlerts persists aggregator output; used as the aggregator sink.
func (s *Service) StoreAlerts(ctx context.Context, alerts []domain.Alert) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.SaveAlerts(ctx, alerts); err != nil {
		s.log.Error("persist alerts failed", zap.Error(err))
	}
}
