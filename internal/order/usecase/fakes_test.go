package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
	stockdto "github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const testOrg = "org-1"

// store is an in-memory stand-in for the order, catalog and stock tables.
// Order writes apply their stock effect atomically under mu.
type store struct {
	mu         sync.Mutex
	orders     map[string]*model.Order
	customers  map[string]*model.Customer
	products   map[string]*model.Product
	warehouses map[string]*model.Warehouse
	stock      map[[2]string]int // {warehouse, product}
	movements  []model.StockMovement
	published  [][]byte
}

func newStore() *store {
	return &store{
		orders:     map[string]*model.Order{},
		customers:  map[string]*model.Customer{},
		products:   map[string]*model.Product{},
		warehouses: map[string]*model.Warehouse{},
		stock:      map[[2]string]int{},
	}
}

func (s *store) addWarehouse(id, name string) {
	s.warehouses[id] = &model.Warehouse{BaseModel: model.BaseModel{ID: id}, OrganizationID: testOrg, Name: name, IsActive: true}
}

func (s *store) addProduct(id, name string, price int64) {
	s.products[id] = &model.Product{
		BaseModel:      model.BaseModel{ID: id},
		OrganizationID: testOrg,
		SKU:            "SKU-" + id,
		Name:           name,
		SellingPrice:   decimal.NewFromInt(price),
		IsActive:       true,
	}
}

func (s *store) addCustomer(id, name string) {
	s.customers[id] = &model.Customer{BaseModel: model.BaseModel{ID: id}, OrganizationID: testOrg, Name: name, IsActive: true}
}

func (s *store) setStock(warehouseID, productID string, qty int) {
	s.stock[[2]string{warehouseID, productID}] = qty
}

func (s *store) quantity(warehouseID, productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[[2]string{warehouseID, productID}]
}

func (s *store) useCase() order.UseCase {
	uc := NewOrderUseCase(orderRepo{s}, customerStore{s}, productReader{s}, warehouseReader{s}, stockReader{s}, publisher{s}, logger.NewNop())
	uc.(*orderUseCase).now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return uc
}

// apply must be called with mu held.
func (s *store) apply(o *model.Order, effect model.StockEffect) error {
	if effect == model.EffectNone {
		return nil
	}
	if o.WarehouseID == nil {
		if effect == model.EffectDeduct {
			return model.ErrWarehouseRequired
		}
		return nil
	}
	wh := *o.WarehouseID
	lines := o.Lines()
	if effect == model.EffectDeduct {
		available := map[string]int{}
		for _, l := range lines {
			if q, ok := s.stock[[2]string{wh, l.ProductID}]; ok {
				available[l.ProductID] = q
			}
		}
		if shortages := model.CheckAvailability(lines, available); len(shortages) > 0 {
			return &model.StockShortageError{WarehouseID: wh, Shortages: shortages}
		}
	}
	for _, l := range lines {
		key := [2]string{wh, l.ProductID}
		before := s.stock[key]
		delta := l.Quantity
		mt := model.MovementReturn
		if effect == model.EffectDeduct {
			delta = -l.Quantity
			mt = model.MovementSale
		}
		s.stock[key] = before + delta
		s.movements = append(s.movements, model.StockMovement{
			ProductID:      l.ProductID,
			WarehouseID:    wh,
			MovementType:   mt,
			QuantityChange: delta,
			QuantityBefore: before,
			QuantityAfter:  before + delta,
		})
	}
	return nil
}

func clone(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

type orderRepo struct{ s *store }

func (r orderRepo) Create(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o.Status.IsFulfilled() {
		if err := r.s.apply(o, model.EffectDeduct); err != nil {
			return err
		}
	}
	r.s.orders[o.ID] = clone(o)
	return nil
}

func (r orderRepo) FindByID(_ context.Context, organizationID, id string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.OrganizationID != organizationID {
		return nil, nil
	}
	return clone(o), nil
}

func (r orderRepo) FindAll(_ context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.Scope.Restricted && (o.WarehouseID == nil || !contains(f.Scope.WarehouseIDs, *o.WarehouseID)) {
			continue
		}
		out = append(out, *clone(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, len(out), nil
}

func (r orderRepo) Update(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return model.ErrNotFound
	}
	if cur.Status != model.OrderPending {
		return model.ErrOrderLocked
	}
	r.s.orders[o.ID] = clone(o)
	return nil
}

func (r orderRepo) ChangeStatus(_ context.Context, o *model.Order, status model.OrderStatus, effect model.StockEffect, _ string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return model.ErrNotFound
	}
	if cur.Status != o.Status {
		return model.ErrConcurrentUpdate
	}
	if err := r.s.apply(cur, effect); err != nil {
		return err
	}
	cur.Status = status
	o.Status = status
	return nil
}

func (r orderRepo) Delete(_ context.Context, o *model.Order, _ string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[o.ID]
	if !ok {
		return model.ErrNotFound
	}
	if cur.Status.IsFulfilled() {
		if err := r.s.apply(cur, model.EffectRestore); err != nil {
			return err
		}
	}
	delete(r.s.orders, o.ID)
	return nil
}

func (r orderRepo) Stats(_ context.Context, _ string, _ stockdto.WarehouseScope) (*model.OrderStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &model.OrderStats{ByStatus: map[string]int{}, Revenue: decimal.Zero}
	for _, o := range r.s.orders {
		stats.Total++
		stats.ByStatus[string(o.Status)]++
		if o.Status.IsFulfilled() {
			stats.Fulfilled++
			stats.Revenue = stats.Revenue.Add(o.TotalAmount)
		}
	}
	return stats, nil
}

type customerStore struct{ s *store }

func (c customerStore) FindByID(_ context.Context, _ string, id string) (*model.Customer, error) {
	return c.s.customers[id], nil
}

func (c customerStore) FindByEmail(_ context.Context, _ string, email string) (*model.Customer, error) {
	for _, cu := range c.s.customers {
		if cu.Email != nil && *cu.Email == email {
			return cu, nil
		}
	}
	return nil, nil
}

func (c customerStore) FindByPhone(_ context.Context, _ string, phone string) (*model.Customer, error) {
	for _, cu := range c.s.customers {
		if cu.Phone != nil && *cu.Phone == phone {
			return cu, nil
		}
	}
	return nil, nil
}

func (c customerStore) Create(_ context.Context, cu *model.Customer) error {
	if cu.ID == "" {
		cu.ID = uuid.New().String()
	}
	c.s.customers[cu.ID] = cu
	return nil
}

type productReader struct{ s *store }

func (p productReader) FindByIDs(_ context.Context, _ string, ids []string) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if pr, ok := p.s.products[id]; ok {
			out = append(out, *pr)
		}
	}
	return out, nil
}

type warehouseReader struct{ s *store }

func (w warehouseReader) FindByID(_ context.Context, _ string, id string) (*model.Warehouse, error) {
	return w.s.warehouses[id], nil
}

type stockReader struct{ s *store }

func (r stockReader) FindByWarehouse(_ context.Context, _ string, warehouseID string, productIDs []string) ([]model.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Stock
	for _, id := range productIDs {
		if q, ok := r.s.stock[[2]string{warehouseID, id}]; ok {
			out = append(out, model.Stock{ProductID: id, WarehouseID: warehouseID, Quantity: q})
		}
	}
	return out, nil
}

func (r stockReader) FindByProducts(_ context.Context, _ string, productIDs []string) ([]model.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Stock
	for key, q := range r.s.stock {
		if contains(productIDs, key[1]) {
			w := r.s.warehouses[key[0]]
			out = append(out, model.Stock{ProductID: key[1], WarehouseID: key[0], WarehouseName: w.Name, Quantity: q})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out, nil
}

type publisher struct{ s *store }

func (p publisher) Publish(_ context.Context, _ string, value []byte) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.published = append(p.s.published, value)
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
