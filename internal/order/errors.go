package order

import (
	"fmt"

	"CandyShop/pkg/kit"
)

var (
	ErrInvalidOrder = kit.Validation("invalid order data")
	ErrUserNotFound = kit.NotFound("user not found")
)

// ProductNotFoundError names the first line item whose product is unknown.
type ProductNotFoundError struct {
	ProductID int
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("unknown product id %d", e.ProductID)
}

// InsufficientStockError names the first product that cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductID int
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func productNotFound(id int) error {
	return &kit.Error{
		Kind:    kit.KindNotFound,
		Message: fmt.Sprintf("product %d not found", id),
		Err:     &ProductNotFoundError{ProductID: id},
	}
}

func insufficientStock(p int, name string, requested, available int) error {
	return &kit.Error{
		Kind:    kit.KindValidation,
		Message: "insufficient stock for " + name,
		Err: &InsufficientStockError{
			ProductID: p,
			Name:      name,
			Requested: requested,
			Available: available,
		},
	}
}
