package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	auditrepo "github.com/colorworks/lackwerk/internal/audit/repository"
	auditservice "github.com/colorworks/lackwerk/internal/audit/service"
	"github.com/colorworks/lackwerk/internal/clock"
	"github.com/colorworks/lackwerk/internal/config"
	"github.com/colorworks/lackwerk/internal/conversion"
	customerrepo "github.com/colorworks/lackwerk/internal/customer/repository"
	customerservice "github.com/colorworks/lackwerk/internal/customer/service"
	invoicerepo "github.com/colorworks/lackwerk/internal/invoice/repository"
	invoiceservice "github.com/colorworks/lackwerk/internal/invoice/service"
	"github.com/colorworks/lackwerk/internal/server"
	settingsservice "github.com/colorworks/lackwerk/internal/settings/service"
	traderepo "github.com/colorworks/lackwerk/internal/trade/repository"
	tradeservice "github.com/colorworks/lackwerk/internal/trade/service"
	vehiclerepo "github.com/colorworks/lackwerk/internal/vehicle/repository"
	vehicleservice "github.com/colorworks/lackwerk/internal/vehicle/service"
	workorderrepo "github.com/colorworks/lackwerk/internal/workorder/repository"
	workorderservice "github.com/colorworks/lackwerk/internal/workorder/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
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
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
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
	)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
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
	)`,
	`CREATE TABLE IF NOT EXISTS work_orders (
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
	)`,
	`CREATE TABLE IF NOT EXISTS work_order_items (
		id BIGINT PRIMARY KEY,
		work_order_id BIGINT NOT NULL,
		position INT NOT NULL,
		description TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		unit_price NUMERIC NOT NULL DEFAULT 0,
		line_total NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id BIGINT PRIMARY KEY,
		invoice_number BIGINT NOT NULL,
		source_order_id BIGINT,
		customer_id BIGINT NOT NULL,
		vehicle_id BIGINT,
		invoice_date TIMESTAMP NOT NULL,
		order_date TIMESTAMP,
		due_date TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'OPEN',
		discount_percent NUMERIC NOT NULL DEFAULT 0,
		deposit_amount NUMERIC NOT NULL DEFAULT 0,
		deposit_date TIMESTAMP,
		subtotal NUMERIC NOT NULL DEFAULT 0,
		discount_amount NUMERIC NOT NULL DEFAULT 0,
		net_after_discount NUMERIC NOT NULL DEFAULT 0,
		grand_total NUMERIC NOT NULL DEFAULT 0,
		remaining_balance NUMERIC NOT NULL DEFAULT 0,
		remarks TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_items (
		id BIGINT PRIMARY KEY,
		invoice_id BIGINT NOT NULL,
		position INT NOT NULL,
		description TEXT NOT NULL,
		quantity NUMERIC NOT NULL DEFAULT 0,
		unit TEXT NOT NULL DEFAULT '',
		unit_price NUMERIC NOT NULL DEFAULT 0,
		tax_rate_percent NUMERIC NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '',
		line_total NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_tax_lines (
		id BIGINT PRIMARY KEY,
		invoice_id BIGINT NOT NULL,
		rate_percent NUMERIC NOT NULL DEFAULT 0,
		base NUMERIC NOT NULL DEFAULT 0,
		amount NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_trades (
		id BIGINT PRIMARY KEY,
		trade_number BIGINT NOT NULL,
		type TEXT NOT NULL,
		make TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		vin TEXT NOT NULL DEFAULT '',
		license_plate TEXT NOT NULL DEFAULT '',
		first_registration INT NOT NULL DEFAULT 0,
		odometer_km INT NOT NULL DEFAULT 0,
		condition TEXT NOT NULL DEFAULT '',
		counterparty_customer_id BIGINT,
		purchase_price NUMERIC NOT NULL DEFAULT 0,
		sale_price NUMERIC NOT NULL DEFAULT 0,
		profit NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'OPEN',
		remarks TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
}

func startEnv(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range schema {
		require.NoError(t, db.Exec(ddl).Error)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()
	clk := clock.SystemClock{}

	holder, err := config.NewShopDefaultsHolder()
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Repo: auditrepo.Provide(), Clock: clk,
	})
	settingsSvc := settingsservice.NewService(settingsservice.Params{
		DB: db, Log: log, Defaults: holder,
	})
	require.NoError(t, settingsSvc.EnsureDefaults(context.Background()))

	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerrepo.Provide(), Audit: auditSvc,
	})
	vehicleSvc := vehicleservice.New(vehicleservice.Params{
		DB: db, Log: log, GenID: node, Repo: vehiclerepo.Provide(), Customers: customerrepo.Provide(),
	})
	workOrderSvc := workorderservice.New(workorderservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:      workorderrepo.Provide(),
		Customers: customerrepo.Provide(),
		Vehicles:  vehiclerepo.Provide(),
		Settings:  settingsSvc,
		Audit:     auditSvc,
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:      invoicerepo.Provide(),
		Customers: customerrepo.Provide(),
		Settings:  settingsSvc,
		Audit:     auditSvc,
	})
	tradeSvc := tradeservice.New(tradeservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:      traderepo.Provide(),
		Customers: customerrepo.Provide(),
		Audit:     auditSvc,
	})
	conversionSvc := conversion.New(conversion.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Orders:   workorderrepo.Provide(),
		Trades:   traderepo.Provide(),
		Invoices: invoicerepo.Provide(),
		Settings: settingsSvc,
		Audit:    auditSvc,
	})

	engine := server.NewEngine()
	server.NewServer(server.ServerParams{
		Gin:           engine,
		Cfg:           config.Config{},
		DB:            db,
		GenID:         node,
		AuditSvc:      auditSvc,
		SettingsSvc:   settingsSvc,
		CustomerSvc:   customerSvc,
		VehicleSvc:    vehicleSvc,
		WorkOrderSvc:  workOrderSvc,
		InvoiceSvc:    invoiceSvc,
		TradeSvc:      tradeSvc,
		ConversionSvc: conversionSvc,
	})

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type lineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type workOrderData struct {
	ID          string          `json:"id"`
	OrderNumber int64           `json:"order_number"`
	Status      string          `json:"status"`
	LaborNet    decimal.Decimal `json:"labor_net"`
	ExpressFee  decimal.Decimal `json:"express_fee"`
	NetTotal    decimal.Decimal `json:"net_total"`
	GrossTotal  decimal.Decimal `json:"gross_total"`
}

type invoiceData struct {
	ID               string          `json:"id"`
	InvoiceNumber    int64           `json:"invoice_number"`
	SourceOrderID    string          `json:"source_order_id"`
	Status           string          `json:"status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	DepositAmount    decimal.Decimal `json:"deposit_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

type tradeData struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Profit decimal.Decimal `json:"profit"`
}

func TestHealthAndMetrics(t *testing.T) {
	srv := startEnv(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRepairFlow(t *testing.T) {
	srv := startEnv(t)
	api := srv.URL + "/api/v1"

	var customer struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	status := doJSON(t, http.MethodPost, api+"/customers", map[string]any{
		"name":  "Monika Weber",
		"email": "monika@example.com",
		"city":  "Hamburg",
	}, &customer)
	require.Equal(t, http.StatusOK, status)

	var vehicle struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/vehicles", map[string]any{
		"customer_id":   customer.Data.ID,
		"make":          "VW",
		"model":         "Golf",
		"license_plate": "HH-AB 123",
	}, &vehicle)
	require.Equal(t, http.StatusOK, status)

	var order struct {
		Data workOrderData `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/work-orders", map[string]any{
		"customer_id":    customer.Data.ID,
		"vehicle_id":     vehicle.Data.ID,
		"express_active": true,
		"items": []lineItem{
			{Description: "Komplettlackierung", Quantity: decimal.NewFromInt(2), Unit: "h", UnitPrice: decimal.NewFromInt(100)},
		},
	}, &order)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OPEN", order.Data.Status)
	assert.True(t, order.Data.LaborNet.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.Data.ExpressFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, order.Data.NetTotal.Equal(decimal.NewFromInt(220)))

	var invoice struct {
		Data invoiceData `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/work-orders/"+order.Data.ID+"/convert", nil, &invoice)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, invoice.Data.Subtotal.Equal(decimal.NewFromInt(220)))
	assert.True(t, invoice.Data.GrandTotal.Equal(decimal.RequireFromString("261.80")), "grand %s", invoice.Data.GrandTotal)
	assert.Equal(t, order.Data.ID, invoice.Data.SourceOrderID)

	var converted struct {
		Data workOrderData `json:"data"`
	}
	status = doJSON(t, http.MethodGet, api+"/work-orders/"+order.Data.ID, nil, &converted)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "COMPLETED", converted.Data.Status)

	// The completed order refuses edits with a conflict.
	var locked struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	status = doJSON(t, http.MethodPatch, api+"/work-orders/"+order.Data.ID, map[string]any{
		"remarks": "zu spaet",
	}, &locked)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "document_locked", locked.Error.Type)

	// Partial payment, then settle.
	var paid struct {
		Data invoiceData `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/invoices/"+invoice.Data.ID+"/deposit", map[string]any{
		"amount": "100",
	}, &paid)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PARTIALLY_PAID", paid.Data.Status)
	assert.True(t, paid.Data.RemainingBalance.Equal(decimal.RequireFromString("161.80")))

	// The outstanding filter sees the open balance.
	var listing struct {
		Invoices []struct {
			ID string `json:"id"`
		} `json:"invoices"`
	}
	status = doJSON(t, http.MethodGet, api+"/invoices?outstanding=true", nil, &listing)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, listing.Invoices, 1)
	assert.Equal(t, invoice.Data.ID, listing.Invoices[0].ID)

	status = doJSON(t, http.MethodGet, api+"/invoices?outstanding=nope", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, api+"/invoices/"+invoice.Data.ID+"/status", map[string]any{
		"status":    "PAID",
		"confirmed": true,
	}, &paid)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PAID", paid.Data.Status)
	assert.True(t, paid.Data.RemainingBalance.IsZero())

	status = doJSON(t, http.MethodGet, api+"/invoices?outstanding=true", nil, &listing)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, listing.Invoices)

	// Audit trail captured the whole flow.
	var audit struct {
		AuditLogs []struct {
			Action string `json:"action"`
		} `json:"audit_logs"`
	}
	status = doJSON(t, http.MethodGet, api+"/audit-logs", nil, &audit)
	require.Equal(t, http.StatusOK, status)
	actions := make([]string, 0, len(audit.AuditLogs))
	for _, entry := range audit.AuditLogs {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, "customer.created")
	assert.Contains(t, actions, "work_order.created")
	assert.Contains(t, actions, "invoice.created_from_order")
}

func TestTradeFlow(t *testing.T) {
	srv := startEnv(t)
	api := srv.URL + "/api/v1"

	var buyer struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	status := doJSON(t, http.MethodPost, api+"/customers", map[string]any{
		"name": "Autohaus Krause",
	}, &buyer)
	require.Equal(t, http.StatusOK, status)

	var trade struct {
		Data tradeData `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/trades", map[string]any{
		"type":                     "SALE",
		"make":                     "BMW",
		"model":                    "320i",
		"license_plate":            "M-XY 99",
		"counterparty_customer_id": buyer.Data.ID,
		"purchase_price":           "8500",
		"sale_price":               "11900",
	}, &trade)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, trade.Data.Profit.Equal(decimal.NewFromInt(3400)))

	var invoice struct {
		Data invoiceData `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/trades/"+trade.Data.ID+"/convert", nil, &invoice)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, invoice.Data.Subtotal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, invoice.Data.GrandTotal.Equal(decimal.NewFromInt(11900)))

	var completed struct {
		Data tradeData `json:"data"`
	}
	status = doJSON(t, http.MethodGet, api+"/trades/"+trade.Data.ID, nil, &completed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "COMPLETED", completed.Data.Status)

	// A purchase has nothing to convert.
	var purchase struct {
		Data tradeData `json:"data"`
	}
	status = doJSON(t, http.MethodPost, api+"/trades", map[string]any{
		"type":           "PURCHASE",
		"purchase_price": "8500",
	}, &purchase)
	require.Equal(t, http.StatusOK, status)

	var failure struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	status = doJSON(t, http.MethodPost, api+"/trades/"+purchase.Data.ID+"/convert", nil, &failure)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSettingsEndpoint(t *testing.T) {
	srv := startEnv(t)
	api := srv.URL + "/api/v1"

	var settings struct {
		Data []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"data"`
	}
	status := doJSON(t, http.MethodGet, api+"/settings", nil, &settings)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, settings.Data, 10)

	status = doJSON(t, http.MethodPut, api+"/settings", map[string]any{
		"values": map[string]string{"vat_percent": "20"},
	}, &settings)
	require.Equal(t, http.StatusOK, status)

	found := ""
	for _, setting := range settings.Data {
		if setting.Key == "vat_percent" {
			found = setting.Value
		}
	}
	assert.Equal(t, "20", found)

	status = doJSON(t, http.MethodPut, api+"/settings", map[string]any{
		"values": map[string]string{"vat_percent": "-150"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
