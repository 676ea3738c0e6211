package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/clock"
	customerdomain "github.com/colorworks/lackwerk/internal/customer/domain"
	"github.com/colorworks/lackwerk/internal/invoice/domain"
	"github.com/colorworks/lackwerk/internal/pricing"
	settingsdomain "github.com/colorworks/lackwerk/internal/settings/domain"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Customers customerdomain.Repository
	Settings  settingsdomain.Service
	Audit     auditdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Repository
	settings  settingsdomain.Service
	audit     auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		settings:  p.Settings,
		audit:     p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}

	owner, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if owner == nil {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}

	var vehicleID *snowflake.ID
	if v := strings.TrimSpace(req.VehicleID); v != "" {
		id, err := snowflake.ParseString(v)
		if err != nil || id == 0 {
			return domain.Invoice{}, domain.ErrInvalidVehicle
		}
		vehicleID = &id
	}

	snapshot, err := s.settings.Snapshot(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := s.clock.Now()
	invoiceDate := now
	if req.InvoiceDate != nil {
		invoiceDate = req.InvoiceDate.UTC()
	}
	dueDate := invoiceDate.AddDate(0, 0, snapshot.PaymentTermDays)

	discount := snapshot.DiscountDefaultPercent
	if req.DiscountPercent != nil {
		discount = *req.DiscountPercent
	}

	invoice := domain.Invoice{
		ID:              s.genID.Generate(),
		CustomerID:      customerID,
		VehicleID:       vehicleID,
		InvoiceDate:     invoiceDate,
		OrderDate:       req.OrderDate,
		DueDate:         &dueDate,
		Status:          domain.StatusOpen,
		DiscountPercent: discount,
		Remarks:         strings.TrimSpace(req.Remarks),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	invoice.Items = s.buildItems(invoice.ID, req.Items, now)

	if err := s.reprice(&invoice, now); err != nil {
		return domain.Invoice{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.repo.NextInvoiceNumber(ctx, tx)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		if err := s.repo.ReplaceItems(ctx, tx, invoice.ID, invoice.Items); err != nil {
			return err
		}
		return s.repo.ReplaceTaxLines(ctx, tx, invoice.ID, invoice.TaxLines)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	invoiceID := invoice.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "invoice.created", "invoice", &invoiceID, map[string]any{
		"invoice_number": invoice.InvoiceNumber,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return invoice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		if err := domain.Lifecycle.Guard(invoice.Status); err != nil {
			return err
		}

		now := s.clock.Now()
		if req.InvoiceDate != nil {
			invoice.InvoiceDate = req.InvoiceDate.UTC()
		}
		if req.OrderDate != nil {
			invoice.OrderDate = req.OrderDate
		}
		if req.DiscountPercent != nil {
			invoice.DiscountPercent = *req.DiscountPercent
		}
		if req.Remarks != nil {
			invoice.Remarks = strings.TrimSpace(*req.Remarks)
		}

		if req.ReplaceItems {
			invoice.Items = s.buildItems(invoice.ID, req.Items, now)
		} else {
			items, err := s.repo.FindItems(ctx, tx, invoice.ID)
			if err != nil {
				return err
			}
			invoice.Items = items
		}

		if err := s.reprice(invoice, now); err != nil {
			return err
		}
		invoice.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if req.ReplaceItems {
			if err := s.repo.ReplaceItems(ctx, tx, invoice.ID, invoice.Items); err != nil {
				return err
			}
		}
		if err := s.repo.ReplaceTaxLines(ctx, tx, invoice.ID, invoice.TaxLines); err != nil {
			return err
		}

		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	invoiceID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "invoice.updated", "invoice", &invoiceID, nil); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Invoice, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updated domain.Invoice
	var previous domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}

		if err := domain.Lifecycle.Transition(invoice.Status, req.Target, req.Confirmed); err != nil {
			return err
		}

		now := s.clock.Now()

		// Leaving Open finalizes the invoice: it must carry at least one
		// priced, described item by then.
		if invoice.Status == domain.StatusOpen {
			items, err := s.repo.FindItems(ctx, tx, invoice.ID)
			if err != nil {
				return err
			}
			invoice.Items = items
			if err := pricing.CheckInvoiceFinalizable(invoice.LineItems()); err != nil {
				return err
			}
		}

		previous = invoice.Status
		invoice.Status = req.Target

		switch req.Target {
		case domain.StatusPaid:
			invoice.DepositAmount = invoice.GrandTotal
			invoice.RemainingBalance = decimal.Zero
			if invoice.DepositDate == nil {
				invoice.DepositDate = &now
			}
		case domain.StatusCancelled:
			// Deposit stays as recorded; only the open balance is wiped.
			invoice.RemainingBalance = decimal.Zero
		}

		invoice.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}

		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	invoiceID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "invoice.status_changed", "invoice", &invoiceID, map[string]any{
		"from": string(previous),
		"to":   string(updated.Status),
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) RecordDeposit(ctx context.Context, req domain.RecordDepositRequest) (domain.Invoice, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if req.Amount.IsNegative() {
		return domain.Invoice{}, pricing.ErrInvalidAmount
	}

	var updated domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if invoice == nil {
			return domain.ErrNotFound
		}
		if err := domain.Lifecycle.Guard(invoice.Status); err != nil {
			return err
		}

		now := s.clock.Now()
		invoice.DepositAmount = req.Amount
		if req.DepositDate != nil {
			invoice.DepositDate = req.DepositDate
		} else {
			invoice.DepositDate = &now
		}

		items, err := s.repo.FindItems(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		invoice.Items = items

		if err := s.reprice(invoice, now); err != nil {
			return err
		}

		// A recorded positive deposit moves an open invoice to partially
		// paid; clearing it moves it back. Leaving Open finalizes the
		// invoice, so the same item check as UpdateStatus applies.
		if invoice.Status == domain.StatusOpen && invoice.DepositAmount.IsPositive() {
			if err := pricing.CheckInvoiceFinalizable(invoice.LineItems()); err != nil {
				return err
			}
			invoice.Status = domain.StatusPartiallyPaid
		} else if invoice.Status == domain.StatusPartiallyPaid && invoice.DepositAmount.IsZero() {
			invoice.Status = domain.StatusOpen
		}

		invoice.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if err := s.repo.ReplaceTaxLines(ctx, tx, invoice.ID, invoice.TaxLines); err != nil {
			return err
		}

		updated = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	invoiceID := updated.ID.String()
	if err := s.audit.AuditLog(ctx, "user", nil, "invoice.deposit_recorded", "invoice", &invoiceID, map[string]any{
		"amount": updated.DepositAmount.String(),
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}

	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id, false)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items

	lines, err := s.repo.FindTaxLines(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.TaxLines = lines

	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{
		CustomerID:  strings.TrimSpace(req.CustomerID),
		Status:      strings.TrimSpace(req.Status),
		Outstanding: req.Outstanding,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) buildItems(invoiceID snowflake.ID, inputs []domain.LineItemInput, now time.Time) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for i, input := range inputs {
		items = append(items, domain.InvoiceItem{
			ID:             s.genID.Generate(),
			InvoiceID:      invoiceID,
			Position:       i + 1,
			Description:    strings.TrimSpace(input.Description),
			Quantity:       input.Quantity,
			Unit:           strings.TrimSpace(input.Unit),
			UnitPrice:      input.UnitPrice,
			TaxRatePercent: input.TaxRatePercent,
			Category:       strings.TrimSpace(input.Category),
			CreatedAt:      now,
		})
	}
	return items
}

// reprice recomputes every derived money field on the invoice. The
// pricing result is the only writer of these fields.
func (s *Service) reprice(invoice *domain.Invoice, now time.Time) error {
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

	lines := make([]domain.InvoiceTaxLine, 0, len(totals.TaxLines))
	for _, line := range totals.TaxLines {
		lines = append(lines, domain.InvoiceTaxLine{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			RatePercent: line.RatePercent,
			Base:        line.Base,
			Amount:      line.Amount,
			CreatedAt:   now,
		})
	}
	invoice.TaxLines = lines
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
