package domain

import "time"

// OrderStatus values are backend-defined; the client only displays them.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a placed order as returned by the orders endpoints.
type Order struct {
	ID         int64       `json:"id"`
	Number     string      `json:"number"`
	Status     OrderStatus `json:"status"`
	Items      []OrderLine `json:"items"`
	SubTotal   float64     `json:"sub_total"`
	Discount   float64     `json:"discount"`
	GrandTotal float64     `json:"grand_total"`
	Address    *Address    `json:"address"`
	CreatedAt  time.Time   `json:"created_at"`
}
