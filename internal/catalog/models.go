package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Authors     string          `json:"authors"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type NewProduct struct {
	Name        string          `json:"name"`
	Authors     string          `json:"authors"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
}

type Page struct {
	Products      []Product `json:"products"`
	TotalProducts int       `json:"totalProducts"`
	TotalPages    int       `json:"totalPages"`
	CurrentPage   int       `json:"currentPage"`
	Limit         int       `json:"limit"`
	HasNextPage   bool      `json:"hasNextPage"`
	HasPrevPage   bool      `json:"hasPrevPage"`
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
