package domain

import (
	"context"
	"errors"

	"github.com/colorworks/lackwerk/pkg/db/pagination"
)

type ListVehicleRequest struct {
	PageToken    string
	PageSize     int32
	CustomerID   string
	LicensePlate string
	VIN          string
}

type ListVehicleFilter struct {
	CustomerID   string
	LicensePlate string
	VIN          string
}

type ListVehicleResponse struct {
	pagination.PageInfo
	Vehicles []Vehicle `json:"vehicles"`
}

type CreateVehicleRequest struct {
	CustomerID        string
	Make              string
	Model             string
	VIN               string
	LicensePlate      string
	FirstRegistration int
	OdometerKM        int
	PaintCode         string
}

type UpdateVehicleRequest struct {
	ID                string
	Make              *string
	Model             *string
	VIN               *string
	LicensePlate      *string
	FirstRegistration *int
	OdometerKM        *int
	PaintCode         *string
}

type GetVehicleRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateVehicleRequest) (Vehicle, error)
	Update(context.Context, UpdateVehicleRequest) (Vehicle, error)
	List(context.Context, ListVehicleRequest) (ListVehicleResponse, error)
	GetByID(context.Context, GetVehicleRequest) (Vehicle, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidOdometer = errors.New("invalid_odometer")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
