package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/api"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/config"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	DBPool         *pgxpool.Pool
	Logger         *zap.Logger
	JWTSecret      string // empty disables bearer tokens
	JWTTTL         time.Duration
	GatewaySecret  string
	BookingStore   string // config.BookingStorePostgres (default) or config.BookingStoreMemory
	RateLimitRPS   int
	RateLimitBurst int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, log)

	// Item store first: the booking core resolves items through it
	itemRepo := item.NewPgxRepository(cfg.DBPool)

	// Booking Module
	bookingRepo := newBookingRepository(cfg.BookingStore, cfg.DBPool, log)
	bookingService := booking.NewService(bookingRepo, NewBookingResolver(userService, itemRepo), log)

	// Request Module
	requestRepo := itemrequest.NewPgxRepository(cfg.DBPool)
	requestService := itemrequest.NewService(requestRepo, userService, itemRepo, log)

	// Item Module
	itemService := item.NewService(itemRepo, userService, bookingService, requestRepo, log)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		RateLimitRPS:   float64(cfg.RateLimitRPS),
		RateLimitBurst: cfg.RateLimitBurst,
		Logger:         log,
		UserService:    userService,
		ItemService:    itemService,
		BookingService: bookingService,
		RequestService: requestService,
		JWTManager:     jwtManager,
		GatewaySecret:  cfg.GatewaySecret,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
	}
}

// newBookingRepository picks the booking store. The memory store keeps bookings for the
// life of the process only and is meant for local runs.
func newBookingRepository(store string, pool *pgxpool.Pool, log *zap.Logger) booking.Repository {
	if store == config.BookingStoreMemory {
		log.Warn("bookings are kept in memory and lost on restart")
		return booking.NewMemoryRepository()
	}
	return booking.NewPgxRepository(pool)
}
