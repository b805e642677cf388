package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bookwell/booking-platform-backend/internal/api"
	"github.com/bookwell/booking-platform-backend/internal/auth"
	"github.com/bookwell/booking-platform-backend/internal/availability"
	"github.com/bookwell/booking-platform-backend/internal/booking"
	"github.com/bookwell/booking-platform-backend/internal/conflict"
	"github.com/bookwell/booking-platform-backend/internal/config"
	"github.com/bookwell/booking-platform-backend/internal/event"
	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/reservation"
	"github.com/bookwell/booking-platform-backend/internal/resource"
	"github.com/bookwell/booking-platform-backend/internal/user"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router    *gin.Engine
	Completer *booking.Completer

	emitter event.Emitter
	logger  *zap.Logger
}

// NewContainer wires every module together: auth, repositories, the slot
// ledger, the reservation coordinator and the HTTP router.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) *Container {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	// Events go through Redis when configured, otherwise to the log.
	var emitter event.Emitter
	if cfg.RedisAddr != "" {
		emitter = event.NewAsynqEmitter(cfg.RedisAddr, cfg.RedisPassword)
	} else {
		emitter = event.NewLogEmitter(logger)
	}

	// User Module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher, jwtManager)

	// Resource Module
	resourceRepo := resource.NewPgxRepository(pool)
	resourceService := resource.NewService(resourceRepo)

	// Slot Ledger
	ldg := ledger.New(ledger.NewPgxStore(pool), logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(
		bookingRepo, ldg, resourceService, emitter, cfg.Booking.CancelCutoff, logger)

	// Availability Module
	availabilityRepo := availability.NewPgxRepository(pool)
	availabilityService := availability.NewService(
		availabilityRepo, resourceService, bookingRepo, ldg)

	// Reservation Coordinator
	policy := conflict.Policy{
		LeadTime:   cfg.Booking.LeadTime,
		MaxAdvance: cfg.Booking.MaxAdvance,
		Buffer:     cfg.Booking.Buffer,
	}
	idemStore := reservation.NewPgxIdempotencyStore(pool)
	coordinator := reservation.NewCoordinator(
		ldg, bookingRepo, resourceService, idemStore, emitter, policy, cfg.Booking.AutoConfirm, logger)

	completer := booking.NewCompleter(
		bookingRepo, ldg, emitter, cfg.Booking.CompletionSweepInterval, logger)

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		UserService:         userService,
		ResourceService:     resourceService,
		AvailabilityService: availabilityService,
		BookingService:      bookingService,
		Coordinator:         coordinator,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:    router,
		Completer: completer,
		emitter:   emitter,
		logger:    logger,
	}
}

// Close releases resources owned by the container.
func (c *Container) Close() {
	if closer, ok := c.emitter.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.logger.Warn("emitter close failed", zap.Error(err))
		}
	}
}
