package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	Insert(ctx context.Context, tx *gorm.DB, order *WorkOrder) error
	Update(ctx context.Context, tx *gorm.DB, order *WorkOrder) error
	ReplaceItems(ctx context.Context, tx *gorm.DB, orderID snowflake.ID, items []WorkOrderItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*WorkOrder, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]WorkOrderItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListWorkOrderFilter, page pagination.Pagination) ([]*WorkOrder, error)
}
