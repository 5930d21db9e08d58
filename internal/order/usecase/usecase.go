package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
	stockuc "github.com/fekuna/omnipos-erp-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const walkInName = "Walk-in Customer"

var tracer = otel.Tracer("github.com/fekuna/omnipos-erp-service/internal/order")

type orderUseCase struct {
	repo       order.Repository
	customers  order.CustomerStore
	products   order.ProductReader
	warehouses order.WarehouseReader
	stocks     order.StockReader
	events     order.EventPublisher
	logger     logger.ZapLogger
	now        func() time.Time
}

// NewOrderUseCase wires the order workflow. events may be nil.
func NewOrderUseCase(
	repo order.Repository,
	customers order.CustomerStore,
	products order.ProductReader,
	warehouses order.WarehouseReader,
	stocks order.StockReader,
	events order.EventPublisher,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:       repo,
		customers:  customers,
		products:   products,
		warehouses: warehouses,
		stocks:     stocks,
		events:     events,
		logger:     log,
		now:        time.Now,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "order.Create")
	defer span.End()

	p := auth.FromContext(ctx)
	if !p.CanManageSales() {
		return nil, model.ErrPermissionDenied
	}

	status := input.Status
	if status == "" {
		status = model.OrderPending
	}
	if !status.Valid() || status == model.OrderCancelled {
		return nil, model.Invalid("status", "orders can only be created as pending, confirmed, shipped or delivered")
	}

	customer, err := uc.customer(ctx, input.OrganizationID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	o, err := uc.draft(ctx, p, input.OrganizationID, input.WarehouseID, input.Items, false)
	if err != nil {
		return nil, err
	}
	o.CustomerID = customer.ID
	o.CustomerName = customer.Name
	o.Status = status
	o.Notes = strings.TrimSpace(input.Notes)
	o.CreatedBy = optional(input.UserID)

	return uc.persist(ctx, p, o)
}

// persist stores a drafted order, deducting stock when it is created in a
// fulfilled state.
func (uc *orderUseCase) persist(ctx context.Context, p *auth.Principal, o *model.Order) (*model.Order, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("order.status", string(o.Status)), attribute.Int("order.lines", len(o.Items)))

	var warehouse *model.Warehouse
	if o.WarehouseID != nil {
		w, err := uc.warehouses.FindByID(ctx, o.OrganizationID, *o.WarehouseID)
		if err != nil {
			return nil, err
		}
		warehouse = w
	}
	if o.Status.IsFulfilled() {
		if warehouse == nil {
			return nil, model.ErrWarehouseRequired
		}
		if !warehouse.IsActive {
			return nil, model.Invalid("warehouse_id", "warehouse is inactive")
		}
		if err := uc.precheck(ctx, p, o, warehouse); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, uc.shortage(ctx, p, o.OrganizationID, err, warehouse, span)
	}

	uc.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("status", string(o.Status)),
	)
	uc.publish(ctx, model.EventOrderCreated, o, "")
	if o.Status.IsFulfilled() {
		uc.publish(ctx, model.EventOrderConfirmed, o, model.OrderPending)
	}
	return o, nil
}

func (uc *orderUseCase) customer(ctx context.Context, organizationID, id string) (*model.Customer, error) {
	if id == "" {
		return nil, model.Invalid("customer_id", "customer is required")
	}
	c, err := uc.customers.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.Invalid("customer_id", "customer not found")
	}
	if !c.IsActive {
		return nil, model.ErrInactiveCustomer
	}
	return c, nil
}

// draft validates the warehouse and items and builds an unsaved order.
// With sellingPrice set, unit prices from the input are ignored.
func (uc *orderUseCase) draft(ctx context.Context, p *auth.Principal, organizationID, warehouseID string, items []dto.ItemInput, sellingPrice bool) (*model.Order, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyOrder
	}

	if warehouseID == "" && p.AssignedWarehouseID != "" {
		warehouseID = p.AssignedWarehouseID
	}
	var whID *string
	if warehouseID != "" {
		w, err := uc.warehouses.FindByID(ctx, organizationID, warehouseID)
		if err != nil {
			return nil, err
		}
		if w == nil || !w.IsActive {
			return nil, model.Invalid("warehouse_id", "warehouse not found")
		}
		if !p.CanAccessWarehouse(w.ID) {
			return nil, model.ErrWarehouseForbidden
		}
		whID = &w.ID
	}

	ids := make([]string, 0, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, model.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, model.Invalid(fmt.Sprintf("items[%d].unit_price", i), "cannot be negative")
		}
		ids = append(ids, it.ProductID)
	}

	products, err := uc.products.FindByIDs(ctx, organizationID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	now := uc.now()
	o := &model.Order{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: organizationID,
		OrderNumber:    orderNumber(now),
		WarehouseID:    whID,
		OrderDate:      now,
		Items:          make([]model.OrderItem, 0, len(items)),
	}
	for i, it := range items {
		prod, ok := byID[it.ProductID]
		if !ok {
			return nil, model.Invalid(fmt.Sprintf("items[%d].product_id", i), "product not found")
		}
		if !prod.IsActive {
			return nil, fmt.Errorf("%w: %s", model.ErrInactiveProduct, prod.Name)
		}
		price := prod.SellingPrice
		if it.UnitPrice != nil && !sellingPrice {
			price = *it.UnitPrice
		}
		o.Items = append(o.Items, model.OrderItem{
			ProductID:   prod.ID,
			ProductName: prod.Name,
			ProductSKU:  prod.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   price,
			CreatedAt:   now,
		})
	}
	o.Recalculate()
	return o, nil
}

func orderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

// precheck validates availability before the transaction starts so most
// shortages are reported without taking row locks.
func (uc *orderUseCase) precheck(ctx context.Context, p *auth.Principal, o *model.Order, w *model.Warehouse) error {
	lines := o.Lines()
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	rows, err := uc.stocks.FindByWarehouse(ctx, o.OrganizationID, w.ID, ids)
	if err != nil {
		return err
	}
	available := make(map[string]int, len(rows))
	for _, s := range rows {
		available[s.ProductID] = s.Quantity
	}
	shortages := model.CheckAvailability(lines, available)
	if len(shortages) == 0 {
		return nil
	}
	return uc.shortage(ctx, p, o.OrganizationID, &model.StockShortageError{WarehouseID: w.ID, Shortages: shortages}, w, trace.SpanFromContext(ctx))
}

// shortage completes a *model.StockShortageError with the warehouse name and
// the alternatives the caller may see. Other errors pass through.
func (uc *orderUseCase) shortage(ctx context.Context, p *auth.Principal, organizationID string, err error, w *model.Warehouse, span trace.Span) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var se *model.StockShortageError
	if !errors.As(err, &se) {
		return err
	}
	if w != nil {
		se.WarehouseName = w.Name
	}
	se.DetailsHidden = !p.SeesStockDetails()

	ids := make([]string, len(se.Shortages))
	for i, s := range se.Shortages {
		ids[i] = s.ProductID
	}
	candidates, lookupErr := uc.stocks.FindByProducts(ctx, organizationID, ids)
	if lookupErr != nil {
		uc.logger.Warn("failed to look up alternative warehouses", zap.Error(lookupErr))
		return se
	}
	se.Alternatives = model.PickAlternatives(se.Shortages, candidates, se.WarehouseID)
	return se
}

func (uc *orderUseCase) GetOrder(ctx context.Context, organizationID, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if o == nil || !visible(auth.FromContext(ctx), o) {
		return nil, model.ErrNotFound
	}
	return o, nil
}

func visible(p *auth.Principal, o *model.Order) bool {
	scope := p.WarehouseScope()
	return scope.All || (o.WarehouseID != nil && scope.Allows(*o.WarehouseID))
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	if filters.Status != "" && !model.OrderStatus(filters.Status).Valid() {
		return nil, 0, model.Invalid("status", "unknown order status")
	}
	filters.Scope = stockuc.ScopeFor(auth.FromContext(ctx))
	filters.Page, filters.PageSize = model.Page(filters.Page, filters.PageSize)
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error) {
	p := auth.FromContext(ctx)
	if !p.CanManageSales() {
		return nil, model.ErrPermissionDenied
	}
	existing, err := uc.GetOrder(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}
	if existing.IsLocked() {
		return nil, model.ErrOrderLocked
	}

	customer, err := uc.customer(ctx, input.OrganizationID, input.CustomerID)
	if err != nil {
		return nil, err
	}
	o, err := uc.draft(ctx, p, input.OrganizationID, input.WarehouseID, input.Items, false)
	if err != nil {
		return nil, err
	}

	existing.CustomerID = customer.ID
	existing.CustomerName = customer.Name
	existing.WarehouseID = o.WarehouseID
	existing.Notes = strings.TrimSpace(input.Notes)
	existing.Items = o.Items
	existing.TotalAmount = o.TotalAmount
	existing.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (uc *orderUseCase) ChangeStatus(ctx context.Context, input *dto.ChangeStatusInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "order.ChangeStatus")
	defer span.End()

	p := auth.FromContext(ctx)
	if !p.CanManageSales() {
		return nil, model.ErrPermissionDenied
	}
	o, err := uc.GetOrder(ctx, input.OrganizationID, input.ID)
	if err != nil {
		return nil, err
	}

	from := o.Status
	effect, err := model.PlanTransition(from, input.Status)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.from", string(from)),
		attribute.String("order.to", string(input.Status)),
		attribute.String("order.stock_effect", effect.String()),
	)
	if from == input.Status {
		return o, nil
	}

	var warehouse *model.Warehouse
	if effect == model.EffectDeduct {
		if o.WarehouseID == nil {
			return nil, model.ErrWarehouseRequired
		}
		if !p.CanAccessWarehouse(*o.WarehouseID) {
			return nil, model.ErrWarehouseForbidden
		}
		warehouse, err = uc.warehouses.FindByID(ctx, o.OrganizationID, *o.WarehouseID)
		if err != nil {
			return nil, err
		}
		if warehouse == nil {
			return nil, model.ErrWarehouseRequired
		}
		if err := uc.precheck(ctx, p, o, warehouse); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.ChangeStatus(ctx, o, input.Status, effect, input.UserID); err != nil {
		return nil, uc.shortage(ctx, p, o.OrganizationID, err, warehouse, span)
	}

	uc.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
		zap.String("stock_effect", effect.String()),
	)
	uc.publish(ctx, model.EventOrderStatusChanged, o, from)
	switch {
	case o.Status == model.OrderCancelled:
		uc.publish(ctx, model.EventOrderCancelled, o, from)
	case effect == model.EffectDeduct:
		uc.publish(ctx, model.EventOrderConfirmed, o, from)
	}
	return o, nil
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, organizationID, id, userID string) (*model.Order, error) {
	return uc.ChangeStatus(ctx, &dto.ChangeStatusInput{
		ID:             id,
		OrganizationID: organizationID,
		Status:         model.OrderCancelled,
		UserID:         userID,
	})
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, organizationID, id, userID string) error {
	ctx, span := tracer.Start(ctx, "order.Delete")
	defer span.End()

	if !auth.FromContext(ctx).CanManageSales() {
		return model.ErrPermissionDenied
	}
	o, err := uc.GetOrder(ctx, organizationID, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, o, userID); err != nil {
		span.RecordError(err)
		return err
	}

	uc.logger.Info("order deleted",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)),
		zap.Bool("stock_restored", o.Status.IsFulfilled()),
	)
	uc.publish(ctx, model.EventOrderDeleted, o, o.Status)
	return nil
}

func (uc *orderUseCase) QuickSale(ctx context.Context, input *dto.QuickSaleInput) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "order.QuickSale")
	defer span.End()

	p := auth.FromContext(ctx)
	if !p.CanManageSales() {
		return nil, model.ErrPermissionDenied
	}

	o, err := uc.draft(ctx, p, input.OrganizationID, input.WarehouseID, input.Items, true)
	if err != nil {
		return nil, err
	}
	if o.WarehouseID == nil {
		return nil, model.ErrWarehouseRequired
	}

	customer, err := uc.walkIn(ctx, input)
	if err != nil {
		return nil, err
	}
	o.CustomerID = customer.ID
	o.CustomerName = customer.Name
	o.Status = model.OrderConfirmed
	o.Notes = strings.TrimSpace(input.Notes)
	if o.Notes == "" {
		o.Notes = "Quick sale"
	}
	o.CreatedBy = optional(input.UserID)

	return uc.persist(ctx, p, o)
}

// walkIn finds the customer of a quick sale: a phone match, or the shared
// walk-in customer of the organization. Both are created on first use.
func (uc *orderUseCase) walkIn(ctx context.Context, input *dto.QuickSaleInput) (*model.Customer, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = walkInName
	}
	phone := strings.TrimSpace(input.CustomerPhone)

	var (
		c   *model.Customer
		err error
	)
	if phone != "" {
		c, err = uc.customers.FindByPhone(ctx, input.OrganizationID, phone)
	} else {
		c, err = uc.customers.FindByEmail(ctx, input.OrganizationID, model.WalkInEmail)
	}
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	now := uc.now()
	c = &model.Customer{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: input.OrganizationID,
		Name:           name,
		IsActive:       true,
		CreatedBy:      optional(input.UserID),
	}
	if phone != "" {
		c.Phone = &phone
	} else {
		email := model.WalkInEmail
		c.Name = walkInName
		c.Email = &email
	}
	if err := uc.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *orderUseCase) OrderStats(ctx context.Context, organizationID string) (*model.OrderStats, error) {
	return uc.repo.Stats(ctx, organizationID, stockuc.ScopeFor(auth.FromContext(ctx)))
}

// publish emits an order event after commit. Failures are only logged.
func (uc *orderUseCase) publish(ctx context.Context, eventType string, o *model.Order, from model.OrderStatus) {
	if uc.events == nil {
		return
	}
	ev := model.OrderEvent{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		OrganizationID: o.OrganizationID,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		FromStatus:     from,
		Status:         o.Status,
		TotalAmount:    o.TotalAmount,
		OrderDate:      o.OrderDate,
		Timestamp:      uc.now(),
	}
	if o.WarehouseID != nil {
		ev.WarehouseID = *o.WarehouseID
	}
	data, err := json.Marshal(ev)
	if err != nil {
		uc.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.events.Publish(pubCtx, o.OrganizationID, data); err != nil {
		uc.logger.Warn("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
