package upstream

import (
	"context"
	"time"

	"pharmafront/internal/domain"
)

// ProductStock is one row of the precomputed oldest-batch listing.
// Degraded marks rows whose batch information could not be fetched during
// the fallback enrichment path.
type ProductStock struct {
	Product             domain.Product
	OldestExpiry        *time.Time
	OldestBatchQuantity int
	Degraded            bool
}

// Products fetches the plain product list (get_products).
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var rows []wireProduct
	if err := c.call(ctx, "get_products", nil, &rows); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

// ProductsWithOldestBatch fetches the listing with server-precomputed
// oldest-batch fields (get_products_oldest_batch).
func (c *Client) ProductsWithOldestBatch(ctx context.Context) ([]ProductStock, error) {
	var rows []wireProduct
	if err := c.call(ctx, "get_products_oldest_batch", nil, &rows); err != nil {
		return nil, err
	}
	stocks := make([]ProductStock, 0, len(rows))
	for _, row := range rows {
		stocks = append(stocks, ProductStock{
			Product:             row.toDomain(),
			OldestExpiry:        resolveExpiry(row.ExpirationDate, row.OldestBatchExpiration, row.Expiration),
			OldestBatchQuantity: int(row.OldestBatchQuantity),
		})
	}
	return stocks, nil
}

// ProductBatches fetches all batches of one product (get_product_batches).
func (c *Client) ProductBatches(ctx context.Context, productID string) ([]domain.Batch, error) {
	var rows []wireBatch
	params := map[string]any{"product_id": productID}
	if err := c.call(ctx, "get_product_batches", params, &rows); err != nil {
		return nil, err
	}
	batches := make([]domain.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, row.toDomain())
	}
	return batches, nil
}

// FIFOStock fetches every live batch across the warehouse (get_fifo_stock).
func (c *Client) FIFOStock(ctx context.Context) ([]domain.Batch, error) {
	var rows []wireBatch
	if err := c.call(ctx, "get_fifo_stock", nil, &rows); err != nil {
		return nil, err
	}
	batches := make([]domain.Batch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, row.toDomain())
	}
	return batches, nil
}

// BatchEntry is the payload for creating a stock lot.
type BatchEntry struct {
	ProductID      string
	BatchReference string
	Quantity       int
	UnitCost       float64
	SRP            *float64
	Expiry         *time.Time
	EnteredBy      string
}

// CreateBatch records a new stock lot (add_product_batch). The batch
// reference is client-generated; the upstream contract requires it in the
// request.
func (c *Client) CreateBatch(ctx context.Context, entry BatchEntry) error {
	params := map[string]any{
		"product_id":      entry.ProductID,
		"batch_reference": entry.BatchReference,
		"quantity":        entry.Quantity,
		"unit_cost":       entry.UnitCost,
		"entry_by":        entry.EnteredBy,
	}
	if entry.SRP != nil {
		params["srp"] = *entry.SRP
	}
	if entry.Expiry != nil {
		params["expiration_date"] = entry.Expiry.Format("2006-01-02")
	}
	return c.call(ctx, "add_product_batch", params, nil)
}

// StockAdjustment corrects a batch quantity; the change only takes effect
// once the upstream confirms it.
type StockAdjustment struct {
	ProductID      string
	BatchReference string
	NewQuantity    int
	Reason         string
	AdjustedBy     string
}

func (c *Client) AdjustStock(ctx context.Context, adj StockAdjustment) error {
	return c.call(ctx, "update_stock", map[string]any{
		"product_id":      adj.ProductID,
		"batch_reference": adj.BatchReference,
		"new_quantity":    adj.NewQuantity,
		"reason":          adj.Reason,
		"adjusted_by":     adj.AdjustedBy,
	}, nil)
}

// ArchiveProduct soft-deletes a product (archive_product).
func (c *Client) ArchiveProduct(ctx context.Context, productID string) error {
	return c.call(ctx, "archive_product", map[string]any{"product_id": productID}, nil)
}

func (c *Client) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	var rows []wireSupplier
	if err := c.call(ctx, "get_suppliers", nil, &rows); err != nil {
		return nil, err
	}
	suppliers := make([]domain.Supplier, 0, len(rows))
	for _, row := range rows {
		suppliers = append(suppliers, row.toDomain())
	}
	return suppliers, nil
}

type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
}

func (c *Client) CreateSupplier(ctx context.Context, input SupplierInput) (domain.Supplier, error) {
	var row wireSupplier
	err := c.call(ctx, "add_supplier", map[string]any{
		"name":    input.Name,
		"contact": input.Contact,
		"address": input.Address,
	}, &row)
	if err != nil {
		return domain.Supplier{}, err
	}
	return row.toDomain(), nil
}

func (c *Client) UpdateSupplier(ctx context.Context, supplierID string, input SupplierInput) error {
	return c.call(ctx, "update_supplier", map[string]any{
		"supplier_id": supplierID,
		"name":        input.Name,
		"contact":     input.Contact,
		"address":     input.Address,
	}, nil)
}

func (c *Client) ArchiveSupplier(ctx context.Context, supplierID string) error {
	return c.call(ctx, "archive_supplier", map[string]any{"supplier_id": supplierID}, nil)
}
