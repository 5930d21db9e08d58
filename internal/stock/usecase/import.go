package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/stock/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var importColumns = []string{"sku", "warehouse", "quantity", "reorder_level"}

// ImportStock sets stock rows from CSV with the header
// sku,warehouse,quantity[,reorder_level]. Products are matched by SKU and
// warehouses by name. Missing rows are created; existing rows are set to the
// given quantity with a movement for the difference. A bad row is reported
// and skipped.
func (uc *stockUseCase) ImportStock(ctx context.Context, input *dto.ImportStockInput) (*dto.ImportResult, error) {
	if !auth.FromContext(ctx).CanManageInventory() {
		return nil, model.ErrPermissionDenied
	}

	r := csv.NewReader(strings.NewReader(input.CSV))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.Invalid("csv", "file is empty")
		}
		return nil, model.Invalid("csv", err.Error())
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"sku", "warehouse", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, model.Invalid("csv", fmt.Sprintf("missing column %q", required))
		}
	}

	result := &dto.ImportResult{}
	row := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Message: err.Error()})
			continue
		}

		fields := make(map[string]string, len(importColumns))
		for _, c := range importColumns {
			if i, ok := cols[c]; ok && i < len(record) {
				fields[c] = strings.TrimSpace(record[i])
			}
		}

		created, err := uc.importRow(ctx, input, fields)
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{
				Row:       row,
				SKU:       fields["sku"],
				Warehouse: fields["warehouse"],
				Message:   err.Error(),
			})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	uc.logger.Info("stock imported",
		zap.String("organization_id", input.OrganizationID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func parseCount(field, value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, model.Invalid(field, "not a whole number")
	}
	if n < 0 {
		return 0, model.Invalid(field, "cannot be negative")
	}
	return n, nil
}

func (uc *stockUseCase) importRow(ctx context.Context, input *dto.ImportStockInput, fields map[string]string) (bool, error) {
	sku := strings.ToUpper(fields["sku"])
	if sku == "" {
		return false, model.Invalid("sku", "is required")
	}
	if fields["warehouse"] == "" {
		return false, model.Invalid("warehouse", "is required")
	}
	if fields["quantity"] == "" {
		return false, model.Invalid("quantity", "is required")
	}
	quantity, err := parseCount("quantity", fields["quantity"], 0)
	if err != nil {
		return false, err
	}
	reorder, err := parseCount("reorder_level", fields["reorder_level"], uc.cfg.DefaultReorderLevel)
	if err != nil {
		return false, err
	}

	productID, err := uc.repo.FindProductIDBySKU(ctx, input.OrganizationID, sku)
	if err != nil {
		return false, err
	}
	if productID == "" {
		return false, model.Invalid("sku", "product not found in organization")
	}
	warehouseID, err := uc.repo.FindWarehouseIDByName(ctx, input.OrganizationID, fields["warehouse"])
	if err != nil {
		return false, err
	}
	if warehouseID == "" {
		return false, model.Invalid("warehouse", "warehouse not found in organization")
	}
	if !auth.FromContext(ctx).CanAccessWarehouse(warehouseID) {
		return false, model.ErrPermissionDenied
	}

	refType := "import"
	_, created, err := uc.repo.Upsert(ctx, &dto.UpsertStockInput{
		OrganizationID: input.OrganizationID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       quantity,
		ReorderLevel:   reorder,
		UserID:         input.UserID,
	}, &model.StockMovement{
		ID:            uuid.New().String(),
		MovementType:  model.MovementAdjustment,
		ReferenceType: &refType,
		Notes:         "csv import",
		CreatedBy:     optional(input.UserID),
	})
	return created, err
}
