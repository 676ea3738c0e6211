package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Customer struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name       string            `gorm:"not null" json:"name"`
	Email      string            `gorm:"column:email" json:"email,omitempty"`
	Phone      string            `gorm:"column:phone" json:"phone,omitempty"`
	Street     string            `gorm:"column:street" json:"street,omitempty"`
	PostalCode string            `gorm:"column:postal_code" json:"postal_code,omitempty"`
	City       string            `gorm:"column:city" json:"city,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
