package domain

import (
	"context"
	"errors"
	"time"

	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// LineItemInput is one raw item row as supplied by the caller. Quantities
// and prices arrive already parsed; validation happens in pricing.
type LineItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateWorkOrderRequest struct {
	CustomerID      string
	VehicleID       string
	OrderDate       *time.Time
	TravelFeeActive bool
	ExpressActive   bool
	WeekendActive   bool
	Remarks         string
	Items           []LineItemInput
}

// UpdateWorkOrderRequest replaces the mutable fields of an open order.
// Nil means "leave unchanged"; Items nil keeps the existing rows.
type UpdateWorkOrderRequest struct {
	ID              string
	OrderDate       *time.Time
	TravelFeeActive *bool
	ExpressActive   *bool
	WeekendActive   *bool
	Remarks         *string
	Items           []LineItemInput
	ReplaceItems    bool
}

type UpdateStatusRequest struct {
	ID        string
	Target    Status
	Confirmed bool
}

type GetWorkOrderRequest struct {
	ID string
}

type ListWorkOrderRequest struct {
	PageToken  string
	PageSize   int32
	CustomerID string
	Status     string
}

type ListWorkOrderFilter struct {
	CustomerID string
	Status     string
}

type ListWorkOrderResponse struct {
	pagination.PageInfo
	WorkOrders []WorkOrder `json:"work_orders"`
}

type Service interface {
	Create(context.Context, CreateWorkOrderRequest) (WorkOrder, error)
	Update(context.Context, UpdateWorkOrderRequest) (WorkOrder, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (WorkOrder, error)
	GetByID(context.Context, GetWorkOrderRequest) (WorkOrder, error)
	List(context.Context, ListWorkOrderRequest) (ListWorkOrderResponse, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidVehicle  = errors.New("invalid_vehicle")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
