package domain

import (
	"context"
	"errors"
	"time"

	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// LineItemInput is one raw invoice item row as supplied by the caller.
type LineItemInput struct {
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Category       string          `json:"category"`
}

type CreateInvoiceRequest struct {
	CustomerID      string
	VehicleID       string
	InvoiceDate     *time.Time
	OrderDate       *time.Time
	DiscountPercent *decimal.Decimal
	Remarks         string
	Items           []LineItemInput
}

type UpdateInvoiceRequest struct {
	ID              string
	InvoiceDate     *time.Time
	OrderDate       *time.Time
	DiscountPercent *decimal.Decimal
	Remarks         *string
	Items           []LineItemInput
	ReplaceItems    bool
}

type UpdateStatusRequest struct {
	ID        string
	Target    Status
	Confirmed bool
}

// RecordDepositRequest records a partial payment against an open invoice.
type RecordDepositRequest struct {
	ID          string
	Amount      decimal.Decimal
	DepositDate *time.Time
}

type GetInvoiceRequest struct {
	ID string
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int32
	CustomerID  string
	Status      string
	Outstanding *bool
}

type ListInvoiceFilter struct {
	CustomerID  string
	Status      string
	Outstanding *bool
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) (Invoice, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (Invoice, error)
	RecordDeposit(context.Context, RecordDepositRequest) (Invoice, error)
	GetByID(context.Context, GetInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidVehicle  = errors.New("invalid_vehicle")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
