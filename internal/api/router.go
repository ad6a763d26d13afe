package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/shareit-backend/internal/booking/http"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	requestHttp "github.com/nekogravitycat/shareit-backend/internal/itemrequest/http"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/nekogravitycat/shareit-backend/internal/user"
	userHttp "github.com/nekogravitycat/shareit-backend/internal/user/http"
)

// Config holds everything the router needs.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *zap.Logger

	UserService    user.Service
	ItemService    item.Service
	BookingService booking.Service
	RequestService itemrequest.Service
	JWTManager     *auth.JWTManager // nil trusts X-Sharer-User-Id
	GatewaySecret  string           // guards token issuing in JWT mode
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, request id, logging, rate limiting, identity)
// and registering routes for the user, item, request and booking modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	request.MustRegisterValidators()

	r := gin.New()

	r.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(cfg.Logger.Named("http")),
		RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:8081"}
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", auth.UserIDHeader, RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	identify := auth.Identify(cfg.JWTManager)

	var issuer gin.HandlerFunc
	if cfg.JWTManager != nil {
		issuer = auth.Gateway(cfg.GatewaySecret)
	}

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	itemHandler := itemHttp.NewHandler(cfg.ItemService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	requestHandler := requestHttp.NewHandler(cfg.RequestService)

	root := r.Group("")
	{
		userHttp.RegisterRoutes(root, userHandler, issuer)
		itemHttp.RegisterRoutes(root, itemHandler, identify)
		bookingHttp.RegisterRoutes(root, bookingHandler, identify)
		requestHttp.RegisterRoutes(root, requestHandler, identify)
	}

	return r
}
