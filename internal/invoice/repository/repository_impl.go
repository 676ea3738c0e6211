package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/invoice/domain"
	"github.com/colorworks/lackwerk/pkg/db/option"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(invoice_number), 0) + 1 FROM invoices`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO invoices (
			id, invoice_number, source_order_id, customer_id, vehicle_id,
			invoice_date, order_date, due_date, status,
			discount_percent, deposit_amount, deposit_date,
			subtotal, discount_amount, net_after_discount, grand_total, remaining_balance,
			remarks, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.SourceOrderID,
		invoice.CustomerID,
		invoice.VehicleID,
		invoice.InvoiceDate,
		invoice.OrderDate,
		invoice.DueDate,
		invoice.Status,
		invoice.DiscountPercent,
		invoice.DepositAmount,
		invoice.DepositDate,
		invoice.Subtotal,
		invoice.DiscountAmount,
		invoice.NetAfterDiscount,
		invoice.GrandTotal,
		invoice.RemainingBalance,
		invoice.Remarks,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET invoice_date = ?, order_date = ?, due_date = ?, status = ?,
		     discount_percent = ?, deposit_amount = ?, deposit_date = ?,
		     subtotal = ?, discount_amount = ?, net_after_discount = ?,
		     grand_total = ?, remaining_balance = ?, remarks = ?, updated_at = ?
		 WHERE id = ?`,
		invoice.InvoiceDate,
		invoice.OrderDate,
		invoice.DueDate,
		invoice.Status,
		invoice.DiscountPercent,
		invoice.DepositAmount,
		invoice.DepositDate,
		invoice.Subtotal,
		invoice.DiscountAmount,
		invoice.NetAfterDiscount,
		invoice.GrandTotal,
		invoice.RemainingBalance,
		invoice.Remarks,
		invoice.UpdatedAt,
		invoice.ID,
	).Error
}

func (r *repo) ReplaceItems(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, items []domain.InvoiceItem) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM invoice_items WHERE invoice_id = ?`, invoiceID,
	).Error; err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO invoice_items (
				id, invoice_id, position, description, quantity, unit,
				unit_price, tax_rate_percent, category, line_total, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.InvoiceID,
			item.Position,
			item.Description,
			item.Quantity,
			item.Unit,
			item.UnitPrice,
			item.TaxRatePercent,
			item.Category,
			item.LineTotal,
			item.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) ReplaceTaxLines(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, lines []domain.InvoiceTaxLine) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM invoice_tax_lines WHERE invoice_id = ?`, invoiceID,
	).Error; err != nil {
		return err
	}
	for _, line := range lines {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO invoice_tax_lines (id, invoice_id, rate_percent, base, amount, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			line.ID,
			line.InvoiceID,
			line.RatePercent,
			line.Base,
			line.Amount,
			line.CreatedAt,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.Invoice, error) {
	query := `SELECT id, invoice_number, source_order_id, customer_id, vehicle_id,
	                 invoice_date, order_date, due_date, status,
	                 discount_percent, deposit_amount, deposit_date,
	                 subtotal, discount_amount, net_after_discount, grand_total, remaining_balance,
	                 remarks, created_at, updated_at
	          FROM invoices
	          WHERE id = ?`
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var invoice domain.Invoice
	if err := db.WithContext(ctx).Raw(query, id).Scan(&invoice).Error; err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, position, description, quantity, unit,
		        unit_price, tax_rate_percent, category, line_total, created_at
		 FROM invoice_items
		 WHERE invoice_id = ?
		 ORDER BY position ASC`,
		invoiceID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindTaxLines(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceTaxLine, error) {
	var lines []domain.InvoiceTaxLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, invoice_id, rate_percent, base, amount, created_at
		 FROM invoice_tax_lines
		 WHERE invoice_id = ?
		 ORDER BY rate_percent DESC`,
		invoiceID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{})
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Outstanding != nil {
		if *filter.Outstanding {
			stmt = stmt.Where("remaining_balance > 0")
		} else {
			stmt = stmt.Where("remaining_balance = 0")
		}
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
