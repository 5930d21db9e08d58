package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/product"
	"github.com/fekuna/omnipos-erp-service/internal/product/dto"
	"github.com/fekuna/omnipos-erp-service/internal/stock"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	stockuc "github.com/fekuna/omnipos-erp-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-erp-service/pkg/cache"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/fekuna/omnipos-erp-service/pkg/search"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	indexName = "products"
	listTTL   = 5 * time.Minute
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"organization_id": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"sku": { "type": "keyword" },
			"category": { "type": "keyword" },
			"selling_price": { "type": "double" },
			"is_active": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo   product.Repository
	stocks stock.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

// NewProductUseCase builds the catalog use case. cache and es are optional.
func NewProductUseCase(repo product.Repository, stocks stock.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		stocks: stocks,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

// EnsureIndex creates the search index. Errors are returned so callers can
// decide to run without search.
func EnsureIndex(ctx context.Context, es *search.Client) error {
	return es.CreateIndex(ctx, indexName, indexMapping)
}

func normalizeSKU(sku string) (string, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if len(sku) < 3 {
		return "", model.Invalid("sku", "SKU must be at least 3 characters")
	}
	return sku, nil
}

func validatePrices(cost, selling decimal.Decimal) error {
	if cost.IsNegative() {
		return model.Invalid("cost_price", "cost price cannot be negative")
	}
	if selling.IsNegative() {
		return model.Invalid("selling_price", "selling price cannot be negative")
	}
	if selling.LessThan(cost) {
		return model.Invalid("selling_price", "selling price should not be less than cost price")
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.Invalid("name", "name is required")
	}
	return name, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	p, err := uc.build(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.invalidateProductCache(ctx, input.OrganizationID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// build validates a create request and returns the unsaved product.
func (uc *productUseCase) build(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	sku, err := normalizeSKU(input.SKU)
	if err != nil {
		return nil, err
	}
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(input.CostPrice, input.SellingPrice); err != nil {
		return nil, err
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.OrganizationID, sku, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, model.ErrDuplicateSKU
	}

	now := time.Now()
	return &model.Product{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: input.OrganizationID,
		SKU:            sku,
		Name:           name,
		Category:       strings.TrimSpace(input.Category),
		Description:    optional(input.Description),
		CostPrice:      input.CostPrice,
		SellingPrice:   input.SellingPrice,
		IsActive:       true,
		CreatedBy:      optional(input.UserID),
	}, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, organizationID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, model.ErrNotFound
	}
	return p, nil
}

type cachedList struct {
	Products []model.Product
	Count    int
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)

	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result cachedList
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				if err := uc.fillTotals(ctx, filters.OrganizationID, result.Products); err != nil {
					return nil, 0, err
				}
				return result.Products, result.Count, nil
			}
		}
	}

	products, count, err := uc.list(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" && uc.cache != nil {
		// Stock totals change without product writes, so they are not cached.
		stripped := make([]model.Product, len(products))
		copy(stripped, products)
		for i := range stripped {
			stripped[i].TotalStock = 0
		}
		if data, err := json.Marshal(cachedList{Products: stripped, Count: count}); err == nil {
			if err := uc.cache.Client.Set(ctx, cacheKey, data, listTTL).Err(); err != nil {
				uc.logger.Warn("failed to cache product list", zap.Error(err))
			}
		}
	}
	return products, count, nil
}

// fillTotals sets TotalStock from the current stock rows.
func (uc *productUseCase) fillTotals(ctx context.Context, organizationID string, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	rows, err := uc.stocks.FindByProducts(ctx, organizationID, ids)
	if err != nil {
		return err
	}
	totals := make(map[string]int, len(products))
	for _, s := range rows {
		totals[s.ProductID] += s.Quantity
	}
	for i := range products {
		products[i].TotalStock = totals[products[i].ID]
	}
	return nil
}

// list answers searches from Elasticsearch when available and falls back to
// the database otherwise.
func (uc *productUseCase) list(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.search(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) search(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "sku", "description"},
			},
		},
		{"term": map[string]interface{}{"organization_id": filters.OrganizationID}},
	}
	if filters.Category != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"category": filters.Category}})
	}
	if filters.IsActive != nil {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"is_active": *filters.IsActive}})
	}
	q := map[string]interface{}{
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"from":    (filters.Page - 1) * filters.PageSize,
		"size":    filters.PageSize,
		"_source": false,
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	// Hits carry ids only; rows come from the database.
	rows, err := uc.repo.FindByIDs(ctx, filters.OrganizationID, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.OrganizationID, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, organizationID string) {
	if uc.cache == nil {
		return
	}
	pattern := fmt.Sprintf("products:list:%s:*", organizationID)
	if err := uc.cache.DeletePattern(ctx, pattern); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("organization_id", organizationID), zap.Error(err))
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}
	p, err := uc.GetProduct(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}

	sku, err := normalizeSKU(input.SKU)
	if err != nil {
		return nil, err
	}
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validatePrices(input.CostPrice, input.SellingPrice); err != nil {
		return nil, err
	}
	if p.SKU != sku {
		unique, err := uc.repo.IsSKUUnique(ctx, input.OrganizationID, sku, p.ID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, model.ErrDuplicateSKU
		}
	}

	p.SKU = sku
	p.Name = name
	p.Category = strings.TrimSpace(input.Category)
	p.Description = optional(input.Description)
	p.CostPrice = input.CostPrice
	p.SellingPrice = input.SellingPrice
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.invalidateProductCache(ctx, p.OrganizationID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, organizationID, id string) error {
	if !auth.FromContext(ctx).CanManageInventory() {
		return model.ErrPermissionDenied
	}
	if err := uc.repo.Deactivate(ctx, organizationID, id); err != nil {
		return err
	}

	uc.invalidateProductCache(ctx, organizationID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) LowStockProducts(ctx context.Context, filters *stockdto.StockFilters) ([]model.Stock, int, error) {
	filters.LowStock = true
	filters.Scope = stockuc.ScopeFor(auth.FromContext(ctx))
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.stocks.FindAll(ctx, filters)
}

func (uc *productUseCase) StockSummary(ctx context.Context, organizationID, id string) (*dto.StockSummary, error) {
	p, err := uc.GetProduct(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	stocks, _, err := uc.stocks.FindAll(ctx, &stockdto.StockFilters{
		OrganizationID: organizationID,
		ProductID:      p.ID,
		Scope:          stockuc.ScopeFor(auth.FromContext(ctx)),
	})
	if err != nil {
		return nil, err
	}

	summary := &dto.StockSummary{ProductID: p.ID, Stocks: stocks}
	for _, s := range stocks {
		summary.TotalStock += s.Quantity
	}
	return summary, nil
}
