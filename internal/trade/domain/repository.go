package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	NextTradeNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	Insert(ctx context.Context, tx *gorm.DB, trade *VehicleTrade) error
	Update(ctx context.Context, tx *gorm.DB, trade *VehicleTrade) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*VehicleTrade, error)
	List(ctx context.Context, db *gorm.DB, filter ListTradeFilter, page pagination.Pagination) ([]*VehicleTrade, error)
}
