package server

import (
	"net/http"
	"strings"

	vehicledomain "github.com/colorworks/lackwerk/internal/vehicle/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createVehicleRequest struct {
	CustomerID        string `json:"customer_id"`
	Make              string `json:"make"`
	Model             string `json:"model"`
	VIN               string `json:"vin"`
	LicensePlate      string `json:"license_plate"`
	FirstRegistration int    `json:"first_registration"`
	OdometerKM        int    `json:"odometer_km"`
	PaintCode         string `json:"paint_code"`
}

type updateVehicleRequest struct {
	Make              *string `json:"make"`
	Model             *string `json:"model"`
	VIN               *string `json:"vin"`
	LicensePlate      *string `json:"license_plate"`
	FirstRegistration *int    `json:"first_registration"`
	OdometerKM        *int    `json:"odometer_km"`
	PaintCode         *string `json:"paint_code"`
}

func (s *Server) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.Create(c.Request.Context(), vehicledomain.CreateVehicleRequest{
		CustomerID:        strings.TrimSpace(req.CustomerID),
		Make:              strings.TrimSpace(req.Make),
		Model:             strings.TrimSpace(req.Model),
		VIN:               strings.TrimSpace(req.VIN),
		LicensePlate:      strings.TrimSpace(req.LicensePlate),
		FirstRegistration: req.FirstRegistration,
		OdometerKM:        req.OdometerKM,
		PaintCode:         strings.TrimSpace(req.PaintCode),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateVehicle(c *gin.Context) {
	var req updateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.Update(c.Request.Context(), vehicledomain.UpdateVehicleRequest{
		ID:                c.Param("id"),
		Make:              req.Make,
		Model:             req.Model,
		VIN:               req.VIN,
		LicensePlate:      req.LicensePlate,
		FirstRegistration: req.FirstRegistration,
		OdometerKM:        req.OdometerKM,
		PaintCode:         req.PaintCode,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVehicles(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID   string `form:"customer_id"`
		LicensePlate string `form:"license_plate"`
		VIN          string `form:"vin"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.vehicleSvc.List(c.Request.Context(), vehicledomain.ListVehicleRequest{
		PageToken:    query.PageToken,
		PageSize:     int32(query.PageSize),
		CustomerID:   strings.TrimSpace(query.CustomerID),
		LicensePlate: strings.TrimSpace(query.LicensePlate),
		VIN:          strings.TrimSpace(query.VIN),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetVehicle(c *gin.Context) {
	resp, err := s.vehicleSvc.GetByID(c.Request.Context(), vehicledomain.GetVehicleRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
