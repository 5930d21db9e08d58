package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleOwner            Role = "owner"
	RoleGeneralManager   Role = "general_manager"
	RoleInventoryManager Role = "inventory_manager"
	RoleStoreManager     Role = "store_manager"
	RoleStoreStaff       Role = "store_staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleGeneralManager, RoleInventoryManager, RoleStoreManager, RoleStoreStaff:
		return true
	}
	return false
}

// LocationBound roles only ever see the warehouse they are assigned to.
func (r Role) LocationBound() bool {
	return r == RoleStoreManager || r == RoleStoreStaff
}

type User struct {
	BaseModel
	OrganizationID      *string    `db:"organization_id" json:"organization_id"`
	AssignedWarehouseID *string    `db:"assigned_warehouse_id" json:"assigned_warehouse_id"`
	Username            string     `db:"username" json:"username"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FirstName           string     `db:"first_name" json:"first_name"`
	LastName            string     `db:"last_name" json:"last_name"`
	Phone               *string    `db:"phone" json:"phone"`
	Role                Role       `db:"role" json:"role"`
	IsSuperuser         bool       `db:"is_superuser" json:"is_superuser"`
	IsActive            bool       `db:"is_active" json:"is_active"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"last_login_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
