package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/audit/repository"
	"github.com/colorworks/lackwerk/internal/clock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT PRIMARY KEY,
		actor_type TEXT NOT NULL,
		actor_id TEXT,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT,
		metadata TEXT,
		ip_address TEXT,
		user_agent TEXT,
		created_at TIMESTAMP NOT NULL
	)`).Error)

	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clk,
	})
}

func TestAuditLogStampsInjectedClock(t *testing.T) {
	db := setupDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC))
	svc := newTestService(t, db, clk)
	ctx := context.Background()

	targetID := "4711"
	err := svc.AuditLog(ctx, "user", nil, "invoice.created", "invoice", &targetID, map[string]any{"number": 1})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, "invoice.created", entry.Action)
	assert.True(t, entry.CreatedAt.Equal(clk.Now()), "created_at %s", entry.CreatedAt)
}

func TestAuditLogRejectsBlankAction(t *testing.T) {
	db := setupDB(t)
	svc := newTestService(t, db, clock.NewFakeClock(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)))

	err := svc.AuditLog(context.Background(), "user", nil, "  ", "invoice", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}
