package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/internal/account/dto"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

const usernameConstraint = "users_username_key"

const insertUser = `
    INSERT INTO users (
        id, organization_id, assigned_warehouse_id, username, email, password_hash,
        first_name, last_name, phone, role, is_superuser, is_active, created_at, updated_at
    )
    VALUES (
        :id, :organization_id, :assigned_warehouse_id, :username, :email, :password_hash,
        :first_name, :last_name, :phone, :role, :is_superuser, :is_active, :created_at, :updated_at
    )
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateOrganization(ctx context.Context, org *model.Organization, owner *model.User) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO organizations (id, name, slug, is_active, created_at, updated_at)
            VALUES (:id, :name, :slug, :is_active, :created_at, :updated_at)`, org)
		if err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insertUser, owner); err != nil {
			if postgres.IsUniqueViolation(err, usernameConstraint) {
				return model.ErrUsernameTaken
			}
			return fmt.Errorf("insert owner: %w", err)
		}
		return nil
	})
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM organizations WHERE slug = $1)`, slug)
	return exists, err
}

func (r *PGRepository) CreateUser(ctx context.Context, u *model.User) error {
	_, err := r.DB.NamedExecContext(ctx, insertUser, u)
	if postgres.IsUniqueViolation(err, usernameConstraint) {
		return model.ErrUsernameTaken
	}
	return err
}

func (r *PGRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *PGRepository) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

func (r *PGRepository) FindUsers(ctx context.Context, f *dto.UserFilters) ([]model.User, int, error) {
	var users []model.User

	conditions := []string{"organization_id = :organization_id"}
	args := map[string]interface{}{"organization_id": f.OrganizationID}

	if f.Role != "" {
		conditions = append(conditions, "role = :role")
		args["role"] = f.Role
	}
	if f.Search != "" {
		conditions = append(conditions, "(username ILIKE :search OR email ILIKE :search OR first_name ILIKE :search OR last_name ILIKE :search)")
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := postgres.NamedCount(ctx, r.DB, "SELECT count(*) FROM users"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM users" + whereClause + " ORDER BY username"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &users, args); err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *PGRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, time.Now(), id)
}

func (r *PGRepository) UpdateWarehouse(ctx context.Context, organizationID, id string, warehouseID *string) error {
	return r.exec(ctx,
		`UPDATE users SET assigned_warehouse_id = $1, updated_at = $2 WHERE organization_id = $3 AND id = $4`,
		warehouseID, time.Now(), organizationID, id)
}

func (r *PGRepository) Deactivate(ctx context.Context, organizationID, id string) error {
	return r.exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = $1 WHERE organization_id = $2 AND id = $3`,
		time.Now(), organizationID, id)
}

func (r *PGRepository) TouchLogin(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now(), id)
}

// exec runs a single-row update and reports ErrNotFound when nothing matched.
func (r *PGRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
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
