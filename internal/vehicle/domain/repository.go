package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
	Update(ctx context.Context, db *gorm.DB, vehicle *Vehicle) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vehicle, error)
	List(ctx context.Context, db *gorm.DB, filter ListVehicleFilter, page pagination.Pagination) ([]*Vehicle, error)
}
