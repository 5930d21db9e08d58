package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	"github.com/fekuna/omnipos-erp-service/internal/order/dto"
)

type workflowContext struct {
	store     *store
	uc        order.UseCase
	principal *auth.Principal
	order     *model.Order
	err       error
}

func (w *workflowContext) reset() {
	w.store = newStore()
	w.store.addCustomer("c-1", "Acme")
	w.uc = w.store.useCase()
	w.principal = nil
	w.order = nil
	w.err = nil
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func (w *workflowContext) ctx() context.Context {
	return auth.WithPrincipal(context.Background(), w.principal)
}

func (w *workflowContext) warehouseHasUnitsOf(warehouse string, qty int, product string) error {
	if _, ok := w.store.warehouses[slug(warehouse)]; !ok {
		w.store.addWarehouse(slug(warehouse), warehouse)
	}
	if _, ok := w.store.products[slug(product)]; !ok {
		w.store.addProduct(slug(product), product, 100)
	}
	w.store.mu.Lock()
	w.store.setStock(slug(warehouse), slug(product), qty)
	w.store.mu.Unlock()
	return nil
}

func (w *workflowContext) iAmSignedInAs(role string) error {
	w.principal = &auth.Principal{UserID: "u-" + role, OrganizationID: testOrg, Role: model.Role(role)}
	return nil
}

func (w *workflowContext) iAmSignedInAsAt(role, warehouse string) error {
	w.principal = &auth.Principal{
		UserID:              "u-" + role,
		OrganizationID:      testOrg,
		Role:                model.Role(role),
		AssignedWarehouseID: slug(warehouse),
	}
	return nil
}

func (w *workflowContext) aPendingOrderForAt(qty int, product, warehouse string) error {
	o, err := w.uc.CreateOrder(w.ctx(), &dto.CreateOrderInput{
		OrganizationID: testOrg,
		CustomerID:     "c-1",
		WarehouseID:    slug(warehouse),
		Items:          []dto.ItemInput{{ProductID: slug(product), Quantity: qty}},
	})
	if err != nil {
		return err
	}
	w.order = o
	return nil
}

func (w *workflowContext) iChangeTheOrderStatusTo(status string) error {
	o, err := w.uc.ChangeStatus(w.ctx(), &dto.ChangeStatusInput{
		ID:             w.order.ID,
		OrganizationID: testOrg,
		Status:         model.OrderStatus(status),
	})
	w.err = err
	if err == nil {
		w.order = o
	}
	return nil
}

func (w *workflowContext) iDeleteTheOrder() error {
	w.err = w.uc.DeleteOrder(w.ctx(), testOrg, w.order.ID, w.principal.UserID)
	return nil
}

func (w *workflowContext) theOrderStatusIs(status string) error {
	o, err := w.uc.GetOrder(w.ctx(), testOrg, w.order.ID)
	if err != nil {
		return err
	}
	if string(o.Status) != status {
		return fmt.Errorf("expected status %q, got %q", status, o.Status)
	}
	return nil
}

func (w *workflowContext) warehouseHasUnitsLeft(warehouse string, qty int, product string) error {
	if got := w.store.quantity(slug(warehouse), slug(product)); got != qty {
		return fmt.Errorf("expected %d units of %s at %s, got %d", qty, product, warehouse, got)
	}
	return nil
}

func (w *workflowContext) theRequestFailsWith(msg string) error {
	if w.err == nil {
		return fmt.Errorf("expected error containing %q, got none", msg)
	}
	if !strings.Contains(w.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, w.err.Error())
	}
	return nil
}

func (w *workflowContext) theErrorMentions(msg string) error {
	return w.theRequestFailsWith(msg)
}

func (w *workflowContext) theErrorDoesNotMention(msg string) error {
	if w.err != nil && strings.Contains(w.err.Error(), msg) {
		return fmt.Errorf("error %q should not mention %q", w.err.Error(), msg)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	w := &workflowContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		w.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^warehouse "([^"]*)" has (\d+) units of "([^"]*)"$`, w.warehouseHasUnitsOf)
	ctx.Step(`^I am signed in as "([^"]*)"$`, w.iAmSignedInAs)
	ctx.Step(`^I am signed in as "([^"]*)" at "([^"]*)"$`, w.iAmSignedInAsAt)
	ctx.Step(`^a pending order for (\d+) "([^"]*)" at "([^"]*)"$`, w.aPendingOrderForAt)

	// When steps
	ctx.Step(`^I change the order status to "([^"]*)"$`, w.iChangeTheOrderStatusTo)
	ctx.Step(`^I delete the order$`, w.iDeleteTheOrder)

	// Then steps
	ctx.Step(`^the order status is "([^"]*)"$`, w.theOrderStatusIs)
	ctx.Step(`^warehouse "([^"]*)" has (\d+) units of "([^"]*)" left$`, w.warehouseHasUnitsLeft)
	ctx.Step(`^the request fails with "([^"]*)"$`, w.theRequestFailsWith)
	ctx.Step(`^the error mentions "([^"]*)"$`, w.theErrorMentions)
	ctx.Step(`^the error does not mention "([^"]*)"$`, w.theErrorDoesNotMention)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
