package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/audit"
	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/config"
	"github.com/colorworks/lackwerk/internal/conversion"
	"github.com/colorworks/lackwerk/internal/customer"
	customerdomain "github.com/colorworks/lackwerk/internal/customer/domain"
	"github.com/colorworks/lackwerk/internal/invoice"
	invoicedomain "github.com/colorworks/lackwerk/internal/invoice/domain"
	"github.com/colorworks/lackwerk/internal/settings"
	settingsdomain "github.com/colorworks/lackwerk/internal/settings/domain"
	"github.com/colorworks/lackwerk/internal/trade"
	tradedomain "github.com/colorworks/lackwerk/internal/trade/domain"
	"github.com/colorworks/lackwerk/internal/vehicle"
	vehicledomain "github.com/colorworks/lackwerk/internal/vehicle/domain"
	"github.com/colorworks/lackwerk/internal/workorder"
	workorderdomain "github.com/colorworks/lackwerk/internal/workorder/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	settings.Module,
	customer.Module,
	vehicle.Module,
	workorder.Module,
	invoice.Module,
	trade.Module,
	conversion.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AuditContext())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	auditSvc      auditdomain.Service
	settingsSvc   settingsdomain.Service
	customerSvc   customerdomain.Service
	vehicleSvc    vehicledomain.Service
	workOrderSvc  workorderdomain.Service
	invoiceSvc    invoicedomain.Service
	tradeSvc      tradedomain.Service
	conversionSvc conversion.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	AuditSvc      auditdomain.Service
	SettingsSvc   settingsdomain.Service
	CustomerSvc   customerdomain.Service
	VehicleSvc    vehicledomain.Service
	WorkOrderSvc  workorderdomain.Service
	InvoiceSvc    invoicedomain.Service
	TradeSvc      tradedomain.Service
	ConversionSvc conversion.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		auditSvc:      p.AuditSvc,
		settingsSvc:   p.SettingsSvc,
		customerSvc:   p.CustomerSvc,
		vehicleSvc:    p.VehicleSvc,
		workOrderSvc:  p.WorkOrderSvc,
		invoiceSvc:    p.InvoiceSvc,
		tradeSvc:      p.TradeSvc,
		conversionSvc: p.ConversionSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomer)
	api.PATCH("/customers/:id", s.UpdateCustomer)

	api.POST("/vehicles", s.CreateVehicle)
	api.GET("/vehicles", s.ListVehicles)
	api.GET("/vehicles/:id", s.GetVehicle)
	api.PATCH("/vehicles/:id", s.UpdateVehicle)

	api.POST("/work-orders", s.CreateWorkOrder)
	api.GET("/work-orders", s.ListWorkOrders)
	api.GET("/work-orders/:id", s.GetWorkOrder)
	api.PATCH("/work-orders/:id", s.UpdateWorkOrder)
	api.POST("/work-orders/:id/status", s.UpdateWorkOrderStatus)
	api.POST("/work-orders/:id/convert", s.ConvertWorkOrder)

	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoice)
	api.PATCH("/invoices/:id", s.UpdateInvoice)
	api.POST("/invoices/:id/status", s.UpdateInvoiceStatus)
	api.POST("/invoices/:id/deposit", s.RecordInvoiceDeposit)

	api.POST("/trades", s.CreateTrade)
	api.GET("/trades", s.ListTrades)
	api.GET("/trades/:id", s.GetTrade)
	api.PATCH("/trades/:id", s.UpdateTrade)
	api.POST("/trades/:id/status", s.UpdateTradeStatus)
	api.POST("/trades/:id/convert", s.ConvertTrade)

	api.GET("/settings", s.ListSettings)
	api.PUT("/settings", s.UpdateSettings)

	api.GET("/audit-logs", s.ListAuditLogs)
}
