package handler

import (
	"log/slog"
	"net/http"
	"time"

	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Auth        service.AuthService
	Catalog     service.CatalogService
	Circulation service.CirculationService
	Reports     service.ReportService
	DB          Pinger
	Logger      *slog.Logger

	CORSOrigins   []string
	AuthRateLimit float64
	AuthRateBurst int
	StoreTimeout  time.Duration
}

// NewRouter wires the JSON API.
func NewRouter(d RouterDeps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	health := NewHealthHandler(d.DB, d.StoreTimeout)
	r.GET("/healthz", health.Healthz)

	authH := NewAuthHandler(d.Auth)
	bookH := NewBookHandler(d.Catalog)
	circH := NewCirculationHandler(d.Circulation)
	reportH := NewReportHandler(d.Reports)

	authn := middleware.Authenticate(d.Auth)
	allow := func(op service.Operation) gin.HandlerFunc { return middleware.Authorize(d.Auth, op) }

	api := r.Group("/api")

	limiter := middleware.NewRateLimiter(d.AuthRateLimit, d.AuthRateBurst)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", limiter.Middleware(), authH.Login)
		authGroup.POST("/register", limiter.Middleware(), authH.Register)
		authGroup.POST("/logout", authn, allow(service.OpLogout), authH.Logout)
	}

	books := api.Group("/books")
	{
		books.GET("", allow(service.OpSearchBooks), bookH.List)
		books.GET("/:id", allow(service.OpSearchBooks), bookH.Get)
		books.POST("", authn, allow(service.OpManageBooks), bookH.Create)
		books.PUT("/:id", authn, allow(service.OpManageBooks), bookH.Update)
		books.DELETE("/:id", authn, allow(service.OpManageBooks), bookH.Delete)
	}

	api.POST("/borrow", authn, allow(service.OpBorrow), circH.Borrow)
	api.POST("/return", authn, allow(service.OpReturn), circH.Return)
	api.POST("/reserve", authn, allow(service.OpReserve), circH.Reserve)
	api.GET("/reservations", authn, allow(service.OpListOwnLoans), circH.ListReservations)
	api.DELETE("/reservations/:id", authn, allow(service.OpCancelReservation), circH.CancelReservation)
	api.GET("/borrowed-books", authn, allow(service.OpListOwnLoans), circH.ListBorrowed)

	api.GET("/admin/stats", authn, allow(service.OpViewStats), reportH.Stats)

	reports := api.Group("/reports", authn, allow(service.OpViewReports))
	{
		reports.GET("/overdue", reportH.Overdue)
		reports.GET("/active-loans", reportH.ActiveLoans)
		reports.GET("/borrowing-history", reportH.BorrowingHistory)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	// bearer tokens travel in a header, so credentials are only needed for named origins
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
