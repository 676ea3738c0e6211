// Package option provides composable gorm query options used by the
// repositories for filtering, ordering, and pagination.
package option

import (
	"fmt"

	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Operator is a SQL comparison used by ApplyOperator.
type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// Condition is one field comparison appended to the WHERE clause.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func ApplyOperator(cond Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
	})
}

// WithOrder appends an ORDER BY clause.
func WithOrder(order string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

// ApplyPagination decodes the keyset cursor and fetches one row beyond the
// page size so callers can detect a next page. An undecodable token is
// treated as the first page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 10
		}
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor != nil {
				db = db.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
				)
			}
		}
		return db.Limit(size + 1)
	})
}

// WithLimit caps the result size; zero or negative means no limit.
func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}
