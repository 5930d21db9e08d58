package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/product/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var importColumns = []string{"sku", "name", "category", "description", "cost_price", "selling_price"}

// ImportProducts upserts products by SKU from CSV. The header row names the
// columns; sku, name and selling_price are required. A bad row is reported
// and skipped without affecting the others.
func (uc *productUseCase) ImportProducts(ctx context.Context, input *dto.ImportProductsInput) (*dto.ImportResult, error) {
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
	for _, required := range []string{"sku", "name", "selling_price"} {
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
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, SKU: fields["sku"], Message: err.Error()})
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	if result.Created+result.Updated > 0 {
		uc.invalidateProductCache(ctx, input.OrganizationID)
	}
	uc.logger.Info("products imported",
		zap.String("organization_id", input.OrganizationID),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func parsePrice(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, model.Invalid(field, "not a number")
	}
	return d, nil
}

func (uc *productUseCase) importRow(ctx context.Context, input *dto.ImportProductsInput, fields map[string]string) (bool, error) {
	cost, err := parsePrice("cost_price", fields["cost_price"])
	if err != nil {
		return false, err
	}
	selling, err := parsePrice("selling_price", fields["selling_price"])
	if err != nil {
		return false, err
	}
	sku, err := normalizeSKU(fields["sku"])
	if err != nil {
		return false, err
	}

	existing, err := uc.repo.FindBySKU(ctx, input.OrganizationID, sku)
	if err != nil {
		return false, err
	}
	if existing == nil {
		p, err := uc.build(ctx, &dto.CreateProductInput{
			OrganizationID: input.OrganizationID,
			SKU:            sku,
			Name:           fields["name"],
			Category:       fields["category"],
			Description:    fields["description"],
			CostPrice:      cost,
			SellingPrice:   selling,
			UserID:         input.UserID,
		})
		if err != nil {
			return false, err
		}
		if err := uc.repo.Create(ctx, p); err != nil {
			return false, err
		}
		go uc.syncToElastic(context.Background(), p)
		return true, nil
	}

	name, err := validateName(fields["name"])
	if err != nil {
		return false, err
	}
	if err := validatePrices(cost, selling); err != nil {
		return false, err
	}
	existing.Name = name
	existing.Category = fields["category"]
	existing.Description = optional(fields["description"])
	existing.CostPrice = cost
	existing.SellingPrice = selling
	existing.IsActive = true
	existing.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, existing); err != nil {
		return false, err
	}
	go uc.syncToElastic(context.Background(), existing)
	return false, nil
}
