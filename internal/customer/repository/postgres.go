package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-erp-service/internal/customer/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

// total_orders counts every order, total_spent only fulfilled ones.
const selectCustomer = `
    SELECT c.*,
        (SELECT count(*) FROM orders o WHERE o.customer_id = c.id) AS total_orders,
        (SELECT COALESCE(SUM(o.total_amount), 0) FROM orders o
            WHERE o.customer_id = c.id AND o.status IN ('confirmed', 'shipped', 'delivered')) AS total_spent
    FROM customers c
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (id, organization_id, name, email, phone, address, is_active, created_by, created_at, updated_at)
        VALUES (:id, :organization_id, :name, :email, :phone, :address, :is_active, :created_by, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) findOne(ctx context.Context, where string, args ...interface{}) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.GetContext(ctx, &c, selectCustomer+where+" LIMIT 1", args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindByID(ctx context.Context, organizationID, id string) (*model.Customer, error) {
	return r.findOne(ctx, ` WHERE c.organization_id = $1 AND c.id = $2`, organizationID, id)
}

func (r *PGRepository) FindByEmail(ctx context.Context, organizationID, email string) (*model.Customer, error) {
	return r.findOne(ctx, ` WHERE c.organization_id = $1 AND c.email = $2`, organizationID, email)
}

func (r *PGRepository) FindByPhone(ctx context.Context, organizationID, phone string) (*model.Customer, error) {
	return r.findOne(ctx, ` WHERE c.organization_id = $1 AND c.phone = $2`, organizationID, phone)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error) {
	var items []model.Customer

	conditions := []string{"c.organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.Search != "" {
		conditions = append(conditions, "(c.name ILIKE :search OR c.email ILIKE :search OR c.phone ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}
	if f.IsActive != nil {
		conditions = append(conditions, "c.is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM customers c"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := selectCustomer + whereClause + " ORDER BY c.name"
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

func (r *PGRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers
        SET name = :name,
            email = :email,
            phone = :phone,
            address = :address,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id AND organization_id = :organization_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) Deactivate(ctx context.Context, organizationID, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE customers SET is_active = FALSE, updated_at = NOW() WHERE organization_id = $1 AND id = $2`,
		organizationID, id)
	return err
}
