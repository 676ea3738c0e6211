// Package conversion turns a finalized business document into a new
// invoice: a work order about to be completed, or a vehicle sale. The new
// invoice and the source status change are applied in one transaction so
// the pair is committed both-or-neither.
package conversion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/clock"
	invoicedomain "github.com/colorworks/lackwerk/internal/invoice/domain"
	"github.com/colorworks/lackwerk/internal/pricing"
	settingsdomain "github.com/colorworks/lackwerk/internal/settings/domain"
	tradedomain "github.com/colorworks/lackwerk/internal/trade/domain"
	workorderdomain "github.com/colorworks/lackwerk/internal/workorder/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ConvertOrderRequest struct {
	OrderID string
}

type ConvertTradeRequest struct {
	TradeID string
}

type Service interface {
	ConvertOrderToInvoice(context.Context, ConvertOrderRequest) (invoicedomain.Invoice, error)
	ConvertTradeToInvoice(context.Context, ConvertTradeRequest) (invoicedomain.Invoice, error)
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Orders   workorderdomain.Repository
	Trades   tradedomain.Repository
	Invoices invoicedomain.Repository
	Settings settingsdomain.Service
	Audit    auditdomain.Service
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	orders   workorderdomain.Repository
	trades   tradedomain.Repository
	invoices invoicedomain.Repository
	settings settingsdomain.Service
	audit    auditdomain.Service
}

func New(p Params) Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("conversion.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		orders:   p.Orders,
		trades:   p.Trades,
		invoices: p.Invoices,
		settings: p.Settings,
		audit:    p.Audit,
	}
}

func (s *service) ConvertOrderToInvoice(ctx context.Context, req ConvertOrderRequest) (invoicedomain.Invoice, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil || orderID == 0 {
		return invoicedomain.Invoice{}, workorderdomain.ErrInvalidID
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.FindByID(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		if order == nil {
			return workorderdomain.ErrNotFound
		}
		if workorderdomain.Lifecycle.IsTerminal(order.Status) {
			return precondition(ReasonOrderAlreadyFinal)
		}

		items, err := s.orders.FindItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		order.Items = items
		if err := pricing.CheckWorkOrderFinalizable(order.LineItems()); err != nil {
			return precondition(ReasonEmptyDocument)
		}

		totals, err := pricing.PriceWorkOrder(order.LineItems(), order.SurchargeFlags(), snapshot.WorkOrderRates())
		if err != nil {
			return err
		}

		now := s.clock.Now()
		invoice = s.buildOrderInvoice(order, totals, snapshot, now)

		if err := s.repriceAndInsert(ctx, tx, &invoice, now); err != nil {
			return err
		}

		if err := workorderdomain.Lifecycle.Transition(order.Status, workorderdomain.StatusCompleted, true); err != nil {
			return err
		}
		order.Status = workorderdomain.StatusCompleted
		order.UpdatedAt = now
		return s.orders.Update(ctx, tx, order)
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoiceID := invoice.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "invoice.created_from_order", "invoice", &invoiceID, map[string]any{
		"source_order_id": req.OrderID,
		"invoice_number":  invoice.InvoiceNumber,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return invoice, nil
}

func (s *service) ConvertTradeToInvoice(ctx context.Context, req ConvertTradeRequest) (invoicedomain.Invoice, error) {
	tradeID, err := snowflake.ParseString(strings.TrimSpace(req.TradeID))
	if err != nil || tradeID == 0 {
		return invoicedomain.Invoice{}, tradedomain.ErrInvalidID
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trade, err := s.trades.FindByID(ctx, tx, tradeID, true)
		if err != nil {
			return err
		}
		if trade == nil {
			return tradedomain.ErrNotFound
		}
		if trade.Type != tradedomain.TypeSale {
			return precondition(ReasonNotASale)
		}
		if !trade.SalePrice.IsPositive() {
			return precondition(ReasonNoSalePrice)
		}
		if trade.CounterpartyCustomerID == nil || *trade.CounterpartyCustomerID == 0 {
			return precondition(ReasonNoBuyer)
		}

		now := s.clock.Now()
		invoice = s.buildTradeInvoice(trade, snapshot, now)

		if err := s.repriceAndInsert(ctx, tx, &invoice, now); err != nil {
			return err
		}

		if trade.Status != tradedomain.StatusCompleted {
			if err := tradedomain.Lifecycle.Transition(trade.Status, tradedomain.StatusCompleted, true); err != nil {
				return err
			}
			trade.Status = tradedomain.StatusCompleted
			trade.UpdatedAt = now
			return s.trades.Update(ctx, tx, trade)
		}
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoiceID := invoice.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "invoice.created_from_trade", "invoice", &invoiceID, map[string]any{
		"source_trade_id": req.TradeID,
		"invoice_number":  invoice.InvoiceNumber,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return invoice, nil
}

// buildOrderInvoice maps a priced work order into an unsaved invoice. One
// labor row per order item, plus one surcharge row per active surcharge,
// all taxed at the configured VAT rate.
func (s *service) buildOrderInvoice(order *workorderdomain.WorkOrder, totals pricing.WorkOrderTotals, snapshot settingsdomain.Snapshot, now time.Time) invoicedomain.Invoice {
	dueDate := now.AddDate(0, 0, snapshot.PaymentTermDays)
	orderDate := order.OrderDate
	sourceID := order.ID
	vehicleID := order.VehicleID

	invoice := invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		SourceOrderID: &sourceID,
		CustomerID:    order.CustomerID,
		VehicleID:     &vehicleID,
		InvoiceDate:   now,
		OrderDate:     &orderDate,
		DueDate:       &dueDate,
		Status:        invoicedomain.StatusOpen,
		Remarks:       order.Remarks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	position := 0
	addItem := func(description, unit, category string, quantity, unitPrice decimal.Decimal) {
		position++
		invoice.Items = append(invoice.Items, invoicedomain.InvoiceItem{
			ID:             s.genID.Generate(),
			InvoiceID:      invoice.ID,
			Position:       position,
			Description:    description,
			Quantity:       quantity,
			Unit:           unit,
			UnitPrice:      unitPrice,
			TaxRatePercent: snapshot.VATPercent,
			Category:       category,
			CreatedAt:      now,
		})
	}

	one := decimal.NewFromInt(1)
	for _, item := range order.Items {
		addItem(item.Description, item.Unit, pricing.CategoryLabor, item.Quantity, item.UnitPrice)
	}
	if order.TravelFeeActive {
		addItem("Anfahrtspauschale", "flat", pricing.CategorySurcharge, one, totals.TravelFee)
	}
	if order.ExpressActive {
		addItem("Express-Zuschlag", "flat", pricing.CategorySurcharge, one, totals.ExpressFee)
	}
	if order.WeekendActive {
		addItem("Wochenend-Zuschlag", "flat", pricing.CategorySurcharge, one, totals.WeekendFee)
	}

	return invoice
}

// buildTradeInvoice maps a vehicle sale into an unsaved invoice with a
// single gross-to-net converted line item.
func (s *service) buildTradeInvoice(trade *tradedomain.VehicleTrade, snapshot settingsdomain.Snapshot, now time.Time) invoicedomain.Invoice {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	netPrice := pricing.Round2(trade.SalePrice.Div(one.Add(snapshot.VATPercent.Div(hundred))))

	dueDate := now.AddDate(0, 0, snapshot.PaymentTermDays)
	invoice := invoicedomain.Invoice{
		ID:          s.genID.Generate(),
		CustomerID:  *trade.CounterpartyCustomerID,
		InvoiceDate: now,
		DueDate:     &dueDate,
		Status:      invoicedomain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	invoice.Items = []invoicedomain.InvoiceItem{{
		ID:             s.genID.Generate(),
		InvoiceID:      invoice.ID,
		Position:       1,
		Description:    fmt.Sprintf("Fahrzeugverkauf %s %s (%s)", trade.Make, trade.Model, trade.LicensePlate),
		Quantity:       one,
		Unit:           "flat",
		UnitPrice:      netPrice,
		TaxRatePercent: snapshot.VATPercent,
		Category:       pricing.CategoryLabor,
		CreatedAt:      now,
	}}

	return invoice
}

// repriceAndInsert runs the invoice through pricing, allocates its number
// and persists the header, items and tax lines inside the caller's
// transaction.
func (s *service) repriceAndInsert(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice, now time.Time) error {
	totals, err := pricing.PriceInvoice(
		invoice.LineItems(),
		invoice.DiscountPercent,
		invoice.DepositAmount,
		invoice.DepositDate,
		now,
	)
	if err != nil {
		return err
	}

	for i := range invoice.Items {
		invoice.Items[i].LineTotal = totals.Items[i].LineTotal
	}
	invoice.Subtotal = totals.Subtotal
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.NetAfterDiscount = totals.NetAfterDiscount
	invoice.GrandTotal = totals.GrandTotal
	invoice.DepositAmount = totals.DepositAmount
	invoice.DepositDate = totals.DepositDate
	invoice.RemainingBalance = totals.RemainingBalance
	for _, line := range totals.TaxLines {
		invoice.TaxLines = append(invoice.TaxLines, invoicedomain.InvoiceTaxLine{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			RatePercent: line.RatePercent,
			Base:        line.Base,
			Amount:      line.Amount,
			CreatedAt:   now,
		})
	}

	number, err := s.invoices.NextInvoiceNumber(ctx, tx)
	if err != nil {
		return err
	}
	invoice.InvoiceNumber = number

	if err := s.invoices.Insert(ctx, tx, invoice); err != nil {
		return err
	}
	if err := s.invoices.ReplaceItems(ctx, tx, invoice.ID, invoice.Items); err != nil {
		return err
	}
	return s.invoices.ReplaceTaxLines(ctx, tx, invoice.ID, invoice.TaxLines)
}
