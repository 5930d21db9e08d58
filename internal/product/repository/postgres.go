package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/product/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const skuConstraint = "products_org_sku_key"

const selectProduct = `
    SELECT p.*, COALESCE((SELECT SUM(s.quantity) FROM stocks s WHERE s.product_id = p.id), 0) AS total_stock
    FROM products p
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, organization_id, sku, name, category, description,
            cost_price, selling_price, is_active, created_by, created_at, updated_at
        )
        VALUES (
            :id, :organization_id, :sku, :name, :category, :description,
            :cost_price, :selling_price, :is_active, :created_by, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if postgres.IsUniqueViolation(err, skuConstraint) {
		return model.ErrDuplicateSKU
	}
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, organizationID, id string) (*model.Product, error) {
	return r.findOne(ctx, selectProduct+` WHERE p.organization_id = $1 AND p.id = $2 LIMIT 1`, organizationID, id)
}

func (r *PGRepository) FindBySKU(ctx context.Context, organizationID, sku string) (*model.Product, error) {
	return r.findOne(ctx, selectProduct+` WHERE p.organization_id = $1 AND p.sku = $2 LIMIT 1`, organizationID, sku)
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.Product, error) {
	var product model.Product
	err := r.DB.GetContext(ctx, &product, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, organizationID string, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(selectProduct+` WHERE p.organization_id = ? AND p.id IN (?)`, organizationID, ids)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product

	conditions := []string{"p.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.Category != "" {
		conditions = append(conditions, "p.category = :category")
		args["category"] = f.Category
	}
	if f.IsActive != nil {
		conditions = append(conditions, "p.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(p.name ILIKE :search OR p.sku ILIKE :search OR p.description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	// Count
	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM products p"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	// List
	orderBy := "p.created_at DESC"
	if f.SortBy != "" {
		// Whitelisted columns only
		switch f.SortBy {
		case "name":
			orderBy = "p.name"
		case "sku":
			orderBy = "p.sku"
		case "price":
			orderBy = "p.selling_price"
		default:
			orderBy = "p.created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("%s%s ORDER BY %s", selectProduct, whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET sku = :sku,
            name = :name,
            category = :category,
            description = :description,
            cost_price = :cost_price,
            selling_price = :selling_price,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if postgres.IsUniqueViolation(err, skuConstraint) {
		return model.ErrDuplicateSKU
	}
	return err
}

// Deactivate soft deletes a product; order history keeps referencing it.
func (r *PGRepository) Deactivate(ctx context.Context, organizationID, id string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE organization_id = $1 AND id = $2`,
		organizationID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PGRepository) IsSKUUnique(ctx context.Context, organizationID, sku, excludeID string) (bool, error) {
	query := `SELECT count(*) FROM products WHERE organization_id = $1 AND sku = $2`
	args := []interface{}{organizationID, sku}
	if excludeID != "" {
		query += ` AND id != $3`
		args = append(args, excludeID)
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count == 0, nil
}
