package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/customer/domain"
	"github.com/colorworks/lackwerk/internal/customer/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockAuditSvc struct {
	mock.Mock
}

func (m *mockAuditSvc) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	args := m.Called(ctx, actorType, actorID, action, targetType, targetID, metadata)
	return args.Error(0)
}

func (m *mockAuditSvc) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(auditdomain.ListAuditLogResponse), args.Error(1)
}

func setupService(t *testing.T) domain.Service {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	db.Exec(`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		metadata TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mockAudit := new(mockAuditSvc)
	mockAudit.On("AuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Audit: mockAudit,
	})
}

func TestCustomerCreate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	t.Run("trims fields", func(t *testing.T) {
		customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
			Name:  "  Monika Weber  ",
			Email: " monika@example.com ",
			City:  " Hamburg ",
		})
		require.NoError(t, err)
		assert.Equal(t, "Monika Weber", customer.Name)
		assert.Equal(t, "monika@example.com", customer.Email)
		assert.Equal(t, "Hamburg", customer.City)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("malformed email", func(t *testing.T) {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "Weber", Email: "not-an-email"})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestCustomerUpdate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:  "Autohaus Krause",
		Email: "info@krause.de",
		Phone: "040 123456",
	})
	require.NoError(t, err)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		city := "Bremen"
		updated, err := svc.Update(ctx, domain.UpdateCustomerRequest{
			ID:   customer.ID.String(),
			City: &city,
		})
		require.NoError(t, err)
		assert.Equal(t, "Bremen", updated.City)
		assert.Equal(t, "Autohaus Krause", updated.Name)
		assert.Equal(t, "040 123456", updated.Phone)
	})

	t.Run("name cannot be blanked", func(t *testing.T) {
		blank := "  "
		_, err := svc.Update(ctx, domain.UpdateCustomerRequest{
			ID:   customer.ID.String(),
			Name: &blank,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("unknown id", func(t *testing.T) {
		city := "Kiel"
		node, _ := snowflake.NewNode(2)
		_, err := svc.Update(ctx, domain.UpdateCustomerRequest{
			ID:   node.Generate().String(),
			City: &city,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.GetByID(ctx, domain.GetCustomerRequest{ID: "abc"})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestCustomerListFiltersByName(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, name := range []string{"Autohaus Krause", "Werkstatt Meier", "Krause Logistik"} {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListCustomerRequest{Name: "Krause"})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)

	resp, err = svc.List(ctx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 3)
}
