package model

type Organization struct {
	BaseModel
	Name     string `db:"name" json:"name"`
	Slug     string `db:"slug" json:"slug"`
	IsActive bool   `db:"is_active" json:"is_active"`
}
