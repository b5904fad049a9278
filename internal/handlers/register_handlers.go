package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/internal/middleware"
	"github.com/shipdesk/settlement-core/internal/platform/config"
)

// registerCustomValidators adds the dgt0 binding rule, used on monetary
// request fields that must be strictly positive.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && d.GreaterThan(decimal.Zero)
		})
	}
}

// RegisterRoutes sets up all application routes, injecting dependencies using
// the service container.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) error {
	registerCustomValidators()

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return err
	}
	limiterInstance := limiter.New(memorystore.NewStore(), rate)

	v1 := r.Group("/api/v1",
		middleware.RateLimit(limiterInstance),
		middleware.AuthMiddleware(cfg.JWTSecret),
	)

	registerWalletRoutes(v1, services.Ledger)
	registerShipmentRoutes(v1, services.Shipment)
	registerRemittanceRoutes(v1, services.Remittance)
	registerDisputeRoutes(v1, services.Dispute)
	registerClientRoutes(v1, services.Ledger, services.Remittance, services.Dispute)

	return nil
}
