package repository

import (
	"context"

	"github.com/colorworks/lackwerk/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO audit_logs (id, actor_type, actor_id, action, target_type, target_id, metadata, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ActorType,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Metadata,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	stmt := db.WithContext(ctx).Model(&domain.AuditLog{})
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		stmt = stmt.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		stmt = stmt.Where("target_id = ?", filter.TargetID)
	}
	if filter.ActorType != "" {
		stmt = stmt.Where("actor_type = ?", filter.ActorType)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", *filter.EndAt)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
