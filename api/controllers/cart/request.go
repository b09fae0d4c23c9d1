package cart

import "github.com/google/uuid"

const defaultAddQuantity = 1

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity,omitempty"`
}

func (r addItemRequest) quantity() int {
	if r.Quantity == nil {
		return defaultAddQuantity
	}
	return *r.Quantity
}

type updateItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity" validate:"required"`
}
