package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bookwell/booking-platform-backend/internal/auth"
	"github.com/bookwell/booking-platform-backend/internal/availability"
	availabilityHttp "github.com/bookwell/booking-platform-backend/internal/availability/http"
	"github.com/bookwell/booking-platform-backend/internal/booking"
	bookingHttp "github.com/bookwell/booking-platform-backend/internal/booking/http"
	"github.com/bookwell/booking-platform-backend/internal/reservation"
	"github.com/bookwell/booking-platform-backend/internal/resource"
	resourceHttp "github.com/bookwell/booking-platform-backend/internal/resource/http"
	"github.com/bookwell/booking-platform-backend/internal/user"
	userHttp "github.com/bookwell/booking-platform-backend/internal/user/http"
)

// Config carries everything the router needs to assemble middleware and
// register module routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService         user.Service
	ResourceService     resource.Service
	AvailabilityService availability.Service
	BookingService      booking.Service
	Coordinator         *reservation.Coordinator
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine: global middleware (CORS,
// Logger, Recovery) plus the per-module route registrations under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewHandler(cfg.UserService)
	resourceHandler := resourceHttp.NewHandler(cfg.ResourceService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.Coordinator, cfg.BookingService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		resourceHttp.RegisterRoutes(v1, resourceHandler, authMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
	}

	return r
}
