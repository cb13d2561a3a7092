package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

type Product struct {
	ID          string
	Name        string
	Brand       string
	Description string
	Price       float64
	Stock       int
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
