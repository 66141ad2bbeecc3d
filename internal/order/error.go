package order

import "errors"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrItemNotInOrder = errors.New("item does not belong to order")
)
