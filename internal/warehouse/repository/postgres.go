package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse/dto"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectWarehouse = `
    SELECT w.*, (SELECT count(*) FROM stocks s WHERE s.warehouse_id = w.id) AS stock_count
    FROM warehouses w
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, w *model.Warehouse) error {
	query := `
        INSERT INTO warehouses (id, organization_id, name, location, is_active, created_by, created_at, updated_at)
        VALUES (:id, :organization_id, :name, :location, :is_active, :created_by, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, organizationID, id string) (*model.Warehouse, error) {
	var w model.Warehouse
	err := r.DB.GetContext(ctx, &w, selectWarehouse+` WHERE w.organization_id = $1 AND w.id = $2`, organizationID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.WarehouseFilters) ([]model.Warehouse, int, error) {
	var items []model.Warehouse

	conditions := []string{"w.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.Search != "" {
		conditions = append(conditions, "(w.name ILIKE :search OR w.location ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.IsActive != nil {
		conditions = append(conditions, "w.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.Scope.Restricted {
		if len(f.Scope.WarehouseIDs) == 0 {
			return []model.Warehouse{}, 0, nil
		}
		conditions = append(conditions, "w.id = ANY(:scope_ids)")
		args["scope_ids"] = pq.Array(f.Scope.WarehouseIDs)
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM warehouses w"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := selectWarehouse + whereClause + " ORDER BY w.name"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) Update(ctx context.Context, w *model.Warehouse) error {
	query := `
        UPDATE warehouses
        SET name = :name,
            location = :location,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, w)
	return err
}

func (r *PGRepository) Deactivate(ctx context.Context, organizationID, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE warehouses SET is_active = FALSE, updated_at = NOW() WHERE organization_id = $1 AND id = $2`,
		organizationID, id)
	return err
}
