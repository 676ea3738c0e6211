package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	Insert(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	ReplaceItems(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, items []InvoiceItem) error
	ReplaceTaxLines(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, lines []InvoiceTaxLine) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	FindTaxLines(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceTaxLine, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
}
