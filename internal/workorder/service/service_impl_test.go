package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/clock"
	customerrepo "github.com/colorworks/lackwerk/internal/customer/repository"
	"github.com/colorworks/lackwerk/internal/lifecycle"
	"github.com/colorworks/lackwerk/internal/pricing"
	settingsdomain "github.com/colorworks/lackwerk/internal/settings/domain"
	vehiclerepo "github.com/colorworks/lackwerk/internal/vehicle/repository"
	"github.com/colorworks/lackwerk/internal/workorder/domain"
	"github.com/colorworks/lackwerk/internal/workorder/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
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

type mockSettingsSvc struct {
	snapshot settingsdomain.Snapshot
}

func (m *mockSettingsSvc) Snapshot(ctx context.Context) (settingsdomain.Snapshot, error) {
	return m.snapshot, nil
}

func (m *mockSettingsSvc) List(ctx context.Context) ([]settingsdomain.Setting, error) {
	return nil, nil
}

func (m *mockSettingsSvc) Update(ctx context.Context, values map[string]string) error {
	return nil
}

func (m *mockSettingsSvc) EnsureDefaults(ctx context.Context) error {
	return nil
}

func dec(value string) decimal.Decimal {
	d, _ := decimal.NewFromString(value)
	return d
}

func defaultSnapshot() settingsdomain.Snapshot {
	return settingsdomain.Snapshot{
		VATPercent:              dec("19"),
		ReducedVATPercent:       dec("7"),
		BaseHourlyRate:          dec("58"),
		TravelFeeAmount:         dec("25"),
		ExpressSurchargePercent: dec("10"),
		WeekendSurchargePercent: dec("20"),
		DiscountDefaultPercent:  dec("0"),
		PaymentTermDays:         14,
		CashDiscountDays:        7,
		CashDiscountPercent:     dec("2"),
	}
}

func setupDB(t *testing.T) *gorm.DB {
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
	db.Exec(`CREATE TABLE IF NOT EXISTS vehicles (
		id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		make TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		vin TEXT NOT NULL DEFAULT '',
		license_plate TEXT NOT NULL DEFAULT '',
		first_registration INT NOT NULL DEFAULT 0,
		odometer_km INT NOT NULL DEFAULT 0,
		paint_code TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS work_orders (
		id BIGINT PRIMARY KEY,
		order_number BIGINT NOT NULL,
		customer_id BIGINT NOT NULL,
		vehicle_id BIGINT NOT NULL,
		order_date TIMESTAMP NOT NULL,
		status TEXT NOT NULL DEFAULT 'OPEN',
		travel_fee_active BOOLEAN NOT NULL DEFAULT FALSE,
		express_active BOOLEAN NOT NULL DEFAULT FALSE,
		weekend_active BOOLEAN NOT NULL DEFAULT FALSE,
		remarks TEXT NOT NULL DEFAULT '',
		labor_net NUMERIC NOT NULL DEFAULT 0,
		travel_fee NUMERIC NOT NULL DEFAULT 0,
		express_fee NUMERIC NOT NULL DEFAULT 0,
		weekend_fee NUMERIC NOT NULL DEFAULT 0,
		net_total NUMERIC NOT NULL DEFAULT 0,
		gross_total NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	db.Exec(`CREATE TABLE IF NOT EXISTS work_order_items (
		id BIGINT PRIMARY KEY,
		work_order_id BIGINT NOT NULL,
		position INT NOT NULL,
		description TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		unit_price NUMERIC NOT NULL DEFAULT 0,
		line_total NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`)

	return db
}

func newTestService(t *testing.T, db *gorm.DB) (*Service, *snowflake.Node, *mockAuditSvc) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mockAudit := new(mockAuditSvc)
	mockAudit.On("AuditLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewFakeClock(time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)),
		Repo:      repository.Provide(),
		Customers: customerrepo.Provide(),
		Vehicles:  vehiclerepo.Provide(),
		Settings:  &mockSettingsSvc{snapshot: defaultSnapshot()},
		Audit:     mockAudit,
	})
	return svc.(*Service), node, mockAudit
}

func seedCustomerAndVehicle(t *testing.T, db *gorm.DB, node *snowflake.Node) (snowflake.ID, snowflake.ID) {
	customerID := node.Generate()
	vehicleID := node.Generate()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO customers (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		customerID, "Monika Weber", "monika@example.com", now, now,
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO vehicles (id, customer_id, make, model, license_plate, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		vehicleID, customerID, "VW", "Golf", "HH-AB 123", now, now,
	).Error)
	return customerID, vehicleID
}

func TestWorkOrderCreatePricesDocument(t *testing.T) {
	db := setupDB(t)
	svc, node, _ := newTestService(t, db)
	customerID, vehicleID := seedCustomerAndVehicle(t, db, node)
	ctx := context.Background()

	order, err := svc.Create(ctx, domain.CreateWorkOrderRequest{
		CustomerID:      customerID.String(),
		VehicleID:       vehicleID.String(),
		TravelFeeActive: true,
		ExpressActive:   true,
		Items: []domain.LineItemInput{
			{Description: "Stossstange lackieren", Quantity: dec("2"), Unit: "h", UnitPrice: dec("58")},
			{Description: "Smart Repair Tuer", Quantity: dec("1.5"), Unit: "h", UnitPrice: dec("56")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), order.OrderNumber)
	assert.Equal(t, domain.StatusOpen, order.Status)
	assert.True(t, order.LaborNet.Equal(dec("200")), "labor net %s", order.LaborNet)
	assert.True(t, order.TravelFee.Equal(dec("25")))
	assert.True(t, order.ExpressFee.Equal(dec("20")))
	assert.True(t, order.WeekendFee.IsZero())
	assert.True(t, order.NetTotal.Equal(dec("245")))
	assert.True(t, order.GrossTotal.Equal(dec("291.55")), "gross %s", order.GrossTotal)

	second, err := svc.Create(ctx, domain.CreateWorkOrderRequest{
		CustomerID: customerID.String(),
		VehicleID:  vehicleID.String(),
		Items: []domain.LineItemInput{
			{Description: "Polieren", Quantity: dec("1"), Unit: "h", UnitPrice: dec("58")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.OrderNumber)
}

func TestWorkOrderCreateRejectsNegativeAmounts(t *testing.T) {
	db := setupDB(t)
	svc, node, _ := newTestService(t, db)
	customerID, vehicleID := seedCustomerAndVehicle(t, db, node)

	_, err := svc.Create(context.Background(), domain.CreateWorkOrderRequest{
		CustomerID: customerID.String(),
		VehicleID:  vehicleID.String(),
		Items: []domain.LineItemInput{
			{Description: "Lackieren", Quantity: dec("-1"), UnitPrice: dec("58")},
		},
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidAmount)
}

func TestWorkOrderUpdateRecomputesTotals(t *testing.T) {
	db := setupDB(t)
	svc, node, _ := newTestService(t, db)
	customerID, vehicleID := seedCustomerAndVehicle(t, db, node)
	ctx := context.Background()

	order, err := svc.Create(ctx, domain.CreateWorkOrderRequest{
		CustomerID: customerID.String(),
		VehicleID:  vehicleID.String(),
		Items: []domain.LineItemInput{
			{Description: "Lackieren", Quantity: dec("2"), Unit: "h", UnitPrice: dec("58")},
		},
	})
	require.NoError(t, err)
	assert.True(t, order.NetTotal.Equal(dec("116")))

	weekend := true
	updated, err := svc.Update(ctx, domain.UpdateWorkOrderRequest{
		ID:            order.ID.String(),
		WeekendActive: &weekend,
	})
	require.NoError(t, err)
	assert.True(t, updated.WeekendFee.Equal(dec("23.20")), "weekend fee %s", updated.WeekendFee)
	assert.True(t, updated.NetTotal.Equal(dec("139.20")))

	// Recomputing with unchanged inputs yields identical totals.
	again, err := svc.Update(ctx, domain.UpdateWorkOrderRequest{ID: order.ID.String()})
	require.NoError(t, err)
	assert.True(t, again.NetTotal.Equal(updated.NetTotal))
	assert.True(t, again.GrossTotal.Equal(updated.GrossTotal))
}

func TestWorkOrderStatusLifecycle(t *testing.T) {
	db := setupDB(t)
	svc, node, _ := newTestService(t, db)
	customerID, vehicleID := seedCustomerAndVehicle(t, db, node)
	ctx := context.Background()

	order, err := svc.Create(ctx, domain.CreateWorkOrderRequest{
		CustomerID: customerID.String(),
		VehicleID:  vehicleID.String(),
		Items: []domain.LineItemInput{
			{Description: "Lackieren", Quantity: dec("1"), Unit: "h", UnitPrice: dec("58")},
		},
	})
	require.NoError(t, err)

	t.Run("open to in progress and back", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
			ID:     order.ID.String(),
			Target: domain.StatusInProgress,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, updated.Status)

		updated, err = svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
			ID:     order.ID.String(),
			Target: domain.StatusOpen,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, updated.Status)
	})

	t.Run("terminal transition requires confirmation", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
			ID:     order.ID.String(),
			Target: domain.StatusCompleted,
		})
		assert.ErrorIs(t, err, lifecycle.ErrConfirmationRequired)
	})

	t.Run("confirmed completion locks the order", func(t *testing.T) {
		updated, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
			ID:        order.ID.String(),
			Target:    domain.StatusCompleted,
			Confirmed: true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, updated.Status)

		_, err = svc.Update(ctx, domain.UpdateWorkOrderRequest{ID: order.ID.String()})
		assert.ErrorIs(t, err, lifecycle.ErrDocumentLocked)

		// Locked takes precedence over the transition table.
		_, err = svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
			ID:        order.ID.String(),
			Target:    domain.StatusOpen,
			Confirmed: true,
		})
		assert.ErrorIs(t, err, lifecycle.ErrDocumentLocked)
	})
}

func TestWorkOrderFinalizeRequiresItems(t *testing.T) {
	db := setupDB(t)
	svc, node, _ := newTestService(t, db)
	customerID, vehicleID := seedCustomerAndVehicle(t, db, node)
	ctx := context.Background()

	order, err := svc.Create(ctx, domain.CreateWorkOrderRequest{
		CustomerID: customerID.String(),
		VehicleID:  vehicleID.String(),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:        order.ID.String(),
		Target:    domain.StatusCompleted,
		Confirmed: true,
	})
	assert.ErrorIs(t, err, pricing.ErrEmptyDocument)

	// Zero-quantity items do not count either.
	_, err = svc.Update(ctx, domain.UpdateWorkOrderRequest{
		ID:           order.ID.String(),
		Items:        []domain.LineItemInput{{Description: "Lackieren", Quantity: dec("0"), UnitPrice: dec("58")}},
		ReplaceItems: true,
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		ID:        order.ID.String(),
		Target:    domain.StatusInProgress,
		Confirmed: true,
	})
	assert.ErrorIs(t, err, pricing.ErrEmptyDocument)
}
