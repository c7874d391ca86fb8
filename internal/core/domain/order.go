package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

const (
	PriorityUrgent = "URGENT"
	PriorityHigh   = "HIGH"
	PriorityNormal = "NORMAL"
)

type Order struct {
	OrderID           string
	CommandID         string
	HospitalID        string
	ProductCode       string
	Quantity          int
	Priority          string
	Status            OrderStatus
	EstimatedDelivery time.Time
	ActualDelivery    *time.Time
	WarehouseID       string
	ReceivedAt        time.Time
}

// CommandTypeCreateOrder is the only command type the ingestor accepts.
const CommandTypeCreateOrder = "CreateOrder"

// OrderCommand is an inbound replenishment command as received from the
// central authority. Timestamps stay strings until validation parses them.
type OrderCommand struct {
	CommandID             string `json:"commandId" validate:"required"`
	CommandType           string `json:"commandType" validate:"required,eq=CreateOrder"`
	OrderID               string `json:"orderId" validate:"required"`
	HospitalID            string `json:"hospitalId" validate:"required"`
	ProductCode           string `json:"productCode" validate:"required"`
	OrderQuantity         int    `json:"orderQuantity" validate:"required,gt=0"`
	Priority              string `json:"priority" validate:"required,oneof=URGENT HIGH NORMAL"`
	EstimatedDeliveryDate string `json:"estimatedDeliveryDate" validate:"required"`
	Timestamp             string `json:"timestamp" validate:"required"`
	WarehouseID           string `json:"warehouseId"`
}
