package server

import (
	"net/http"
	"strings"

	invoicedomain "github.com/colorworks/lackwerk/internal/invoice/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type invoiceItemRequest struct {
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
	Category       string          `json:"category"`
}

type createInvoiceRequest struct {
	CustomerID      string               `json:"customer_id"`
	VehicleID       string               `json:"vehicle_id"`
	InvoiceDate     string               `json:"invoice_date"`
	OrderDate       string               `json:"order_date"`
	DiscountPercent *decimal.Decimal     `json:"discount_percent"`
	Remarks         string               `json:"remarks"`
	Items           []invoiceItemRequest `json:"items"`
}

type updateInvoiceRequest struct {
	InvoiceDate     string                `json:"invoice_date"`
	OrderDate       string                `json:"order_date"`
	DiscountPercent *decimal.Decimal      `json:"discount_percent"`
	Remarks         *string               `json:"remarks"`
	Items           *[]invoiceItemRequest `json:"items"`
}

type recordDepositRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	DepositDate string          `json:"deposit_date"`
}

func invoiceItems(items []invoiceItemRequest) []invoicedomain.LineItemInput {
	inputs := make([]invoicedomain.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, invoicedomain.LineItemInput{
			Description:    strings.TrimSpace(item.Description),
			Quantity:       item.Quantity,
			Unit:           strings.TrimSpace(item.Unit),
			UnitPrice:      item.UnitPrice,
			TaxRatePercent: item.TaxRatePercent,
			Category:       strings.TrimSpace(item.Category),
		})
	}
	return inputs
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoiceDate, err := parseOptionalTime(req.InvoiceDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("invoice_date", "invalid_invoice_date", "invalid invoice_date"))
		return
	}
	orderDate, err := parseOptionalTime(req.OrderDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order_date"))
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		VehicleID:       strings.TrimSpace(req.VehicleID),
		InvoiceDate:     invoiceDate,
		OrderDate:       orderDate,
		DiscountPercent: req.DiscountPercent,
		Remarks:         strings.TrimSpace(req.Remarks),
		Items:           invoiceItems(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoiceDate, err := parseOptionalTime(req.InvoiceDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("invoice_date", "invalid_invoice_date", "invalid invoice_date"))
		return
	}
	orderDate, err := parseOptionalTime(req.OrderDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order_date"))
		return
	}

	update := invoicedomain.UpdateInvoiceRequest{
		ID:              c.Param("id"),
		InvoiceDate:     invoiceDate,
		OrderDate:       orderDate,
		DiscountPercent: req.DiscountPercent,
		Remarks:         req.Remarks,
	}
	if req.Items != nil {
		update.Items = invoiceItems(*req.Items)
		update.ReplaceItems = true
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoiceStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateStatus(c.Request.Context(), invoicedomain.UpdateStatusRequest{
		ID:        c.Param("id"),
		Target:    invoicedomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		Confirmed: req.Confirmed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecordInvoiceDeposit(c *gin.Context) {
	var req recordDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	depositDate, err := parseOptionalTime(req.DepositDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("deposit_date", "invalid_deposit_date", "invalid deposit_date"))
		return
	}

	resp, err := s.invoiceSvc.RecordDeposit(c.Request.Context(), invoicedomain.RecordDepositRequest{
		ID:          c.Param("id"),
		Amount:      req.Amount,
		DepositDate: depositDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID  string `form:"customer_id"`
		Status      string `form:"status"`
		Outstanding string `form:"outstanding"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outstanding, err := parseOptionalBool(query.Outstanding)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		CustomerID:  strings.TrimSpace(query.CustomerID),
		Status:      strings.ToUpper(strings.TrimSpace(query.Status)),
		Outstanding: outstanding,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
