package server

import (
	"net/http"
	"strings"

	"github.com/colorworks/lackwerk/internal/conversion"
	tradedomain "github.com/colorworks/lackwerk/internal/trade/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createTradeRequest struct {
	Type                   string          `json:"type"`
	Make                   string          `json:"make"`
	Model                  string          `json:"model"`
	VIN                    string          `json:"vin"`
	LicensePlate           string          `json:"license_plate"`
	FirstRegistration      int             `json:"first_registration"`
	OdometerKM             int             `json:"odometer_km"`
	Condition              string          `json:"condition"`
	CounterpartyCustomerID string          `json:"counterparty_customer_id"`
	PurchasePrice          decimal.Decimal `json:"purchase_price"`
	SalePrice              decimal.Decimal `json:"sale_price"`
	Remarks                string          `json:"remarks"`
}

type updateTradeRequest struct {
	Make                   *string          `json:"make"`
	Model                  *string          `json:"model"`
	VIN                    *string          `json:"vin"`
	LicensePlate           *string          `json:"license_plate"`
	FirstRegistration      *int             `json:"first_registration"`
	OdometerKM             *int             `json:"odometer_km"`
	Condition              *string          `json:"condition"`
	CounterpartyCustomerID *string          `json:"counterparty_customer_id"`
	PurchasePrice          *decimal.Decimal `json:"purchase_price"`
	SalePrice              *decimal.Decimal `json:"sale_price"`
	Remarks                *string          `json:"remarks"`
}

func (s *Server) CreateTrade(c *gin.Context) {
	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tradeSvc.Create(c.Request.Context(), tradedomain.CreateTradeRequest{
		Type:                   tradedomain.Type(strings.ToUpper(strings.TrimSpace(req.Type))),
		Make:                   strings.TrimSpace(req.Make),
		Model:                  strings.TrimSpace(req.Model),
		VIN:                    strings.TrimSpace(req.VIN),
		LicensePlate:           strings.TrimSpace(req.LicensePlate),
		FirstRegistration:      req.FirstRegistration,
		OdometerKM:             req.OdometerKM,
		Condition:              strings.TrimSpace(req.Condition),
		CounterpartyCustomerID: strings.TrimSpace(req.CounterpartyCustomerID),
		PurchasePrice:          req.PurchasePrice,
		SalePrice:              req.SalePrice,
		Remarks:                strings.TrimSpace(req.Remarks),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTrade(c *gin.Context) {
	var req updateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tradeSvc.Update(c.Request.Context(), tradedomain.UpdateTradeRequest{
		ID:                     c.Param("id"),
		Make:                   req.Make,
		Model:                  req.Model,
		VIN:                    req.VIN,
		LicensePlate:           req.LicensePlate,
		FirstRegistration:      req.FirstRegistration,
		OdometerKM:             req.OdometerKM,
		Condition:              req.Condition,
		CounterpartyCustomerID: req.CounterpartyCustomerID,
		PurchasePrice:          req.PurchasePrice,
		SalePrice:              req.SalePrice,
		Remarks:                req.Remarks,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTradeStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tradeSvc.UpdateStatus(c.Request.Context(), tradedomain.UpdateStatusRequest{
		ID:        c.Param("id"),
		Target:    tradedomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		Confirmed: req.Confirmed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConvertTrade(c *gin.Context) {
	resp, err := s.conversionSvc.ConvertTradeToInvoice(c.Request.Context(), conversion.ConvertTradeRequest{
		TradeID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTrades(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Type   string `form:"type"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tradeSvc.List(c.Request.Context(), tradedomain.ListTradeRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Type:      strings.ToUpper(strings.TrimSpace(query.Type)),
		Status:    strings.ToUpper(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetTrade(c *gin.Context) {
	resp, err := s.tradeSvc.GetByID(c.Request.Context(), tradedomain.GetTradeRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
