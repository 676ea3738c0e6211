package domain

import (
	"context"
	"errors"

	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateTradeRequest struct {
	Type                   Type
	Make                   string
	Model                  string
	VIN                    string
	LicensePlate           string
	FirstRegistration      int
	OdometerKM             int
	Condition              string
	CounterpartyCustomerID string
	PurchasePrice          decimal.Decimal
	SalePrice              decimal.Decimal
	Remarks                string
}

type UpdateTradeRequest struct {
	ID                     string
	Make                   *string
	Model                  *string
	VIN                    *string
	LicensePlate           *string
	FirstRegistration      *int
	OdometerKM             *int
	Condition              *string
	CounterpartyCustomerID *string
	PurchasePrice          *decimal.Decimal
	SalePrice              *decimal.Decimal
	Remarks                *string
}

type UpdateStatusRequest struct {
	ID        string
	Target    Status
	Confirmed bool
}

type GetTradeRequest struct {
	ID string
}

type ListTradeRequest struct {
	PageToken string
	PageSize  int32
	Type      string
	Status    string
}

type ListTradeFilter struct {
	Type   string
	Status string
}

type ListTradeResponse struct {
	pagination.PageInfo
	Trades []VehicleTrade `json:"trades"`
}

type Service interface {
	Create(context.Context, CreateTradeRequest) (VehicleTrade, error)
	Update(context.Context, UpdateTradeRequest) (VehicleTrade, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (VehicleTrade, error)
	GetByID(context.Context, GetTradeRequest) (VehicleTrade, error)
	List(context.Context, ListTradeRequest) (ListTradeResponse, error)
}

var (
	ErrInvalidType     = errors.New("invalid_trade_type")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
