package server

import (
	"net/http"
	"strings"

	"github.com/colorworks/lackwerk/internal/conversion"
	workorderdomain "github.com/colorworks/lackwerk/internal/workorder/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type lineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createWorkOrderRequest struct {
	CustomerID      string            `json:"customer_id"`
	VehicleID       string            `json:"vehicle_id"`
	OrderDate       string            `json:"order_date"`
	TravelFeeActive bool              `json:"travel_fee_active"`
	ExpressActive   bool              `json:"express_active"`
	WeekendActive   bool              `json:"weekend_active"`
	Remarks         string            `json:"remarks"`
	Items           []lineItemRequest `json:"items"`
}

type updateWorkOrderRequest struct {
	OrderDate       string             `json:"order_date"`
	TravelFeeActive *bool              `json:"travel_fee_active"`
	ExpressActive   *bool              `json:"express_active"`
	WeekendActive   *bool              `json:"weekend_active"`
	Remarks         *string            `json:"remarks"`
	Items           *[]lineItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status    string `json:"status"`
	Confirmed bool   `json:"confirmed"`
}

func workOrderItems(items []lineItemRequest) []workorderdomain.LineItemInput {
	inputs := make([]workorderdomain.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, workorderdomain.LineItemInput{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			Unit:        strings.TrimSpace(item.Unit),
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

func (s *Server) CreateWorkOrder(c *gin.Context) {
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderDate, err := parseOptionalTime(req.OrderDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order_date"))
		return
	}

	resp, err := s.workOrderSvc.Create(c.Request.Context(), workorderdomain.CreateWorkOrderRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		VehicleID:       strings.TrimSpace(req.VehicleID),
		OrderDate:       orderDate,
		TravelFeeActive: req.TravelFeeActive,
		ExpressActive:   req.ExpressActive,
		WeekendActive:   req.WeekendActive,
		Remarks:         strings.TrimSpace(req.Remarks),
		Items:           workOrderItems(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateWorkOrder(c *gin.Context) {
	var req updateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderDate, err := parseOptionalTime(req.OrderDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("order_date", "invalid_order_date", "invalid order_date"))
		return
	}

	update := workorderdomain.UpdateWorkOrderRequest{
		ID:              c.Param("id"),
		OrderDate:       orderDate,
		TravelFeeActive: req.TravelFeeActive,
		ExpressActive:   req.ExpressActive,
		WeekendActive:   req.WeekendActive,
		Remarks:         req.Remarks,
	}
	if req.Items != nil {
		update.Items = workOrderItems(*req.Items)
		update.ReplaceItems = true
	}

	resp, err := s.workOrderSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateWorkOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.UpdateStatus(c.Request.Context(), workorderdomain.UpdateStatusRequest{
		ID:        c.Param("id"),
		Target:    workorderdomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		Confirmed: req.Confirmed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConvertWorkOrder(c *gin.Context) {
	resp, err := s.conversionSvc.ConvertOrderToInvoice(c.Request.Context(), conversion.ConvertOrderRequest{
		OrderID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListWorkOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.workOrderSvc.List(c.Request.Context(), workorderdomain.ListWorkOrderRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.ToUpper(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetWorkOrder(c *gin.Context) {
	resp, err := s.workOrderSvc.GetByID(c.Request.Context(), workorderdomain.GetWorkOrderRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
