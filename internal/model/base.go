package model

import (
	"errors"
	"time"
)

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Shared domain errors. Handlers translate them to transport codes.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrBusy             = errors.New("resource is being updated, please try again later")
	ErrDuplicateSKU     = errors.New("SKU already exists")
	ErrUsernameTaken    = errors.New("username already exists")
)

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Page normalizes page/page size pairs: page starts at 1, size defaults to 20
// and is capped at 100.
func Page(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
