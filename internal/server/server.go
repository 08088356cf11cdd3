package server

import (
	"context"
	"net/http"

	"velobook/internal/auth"
	"velobook/internal/availability"
	"velobook/internal/booking"
	"velobook/internal/catalog"
	"velobook/internal/config"
	"velobook/internal/notify"
	"velobook/internal/payment"
	"velobook/internal/player"
	"velobook/internal/subscription"
	"velobook/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

// Services bundles the wired service layer so main can share instances with
// the scheduler.
type Services struct {
	Booking      booking.Service
	Subscription subscription.Service
	Payment      payment.Service
	User         user.Service
	Availability availability.Service
}

// BuildServices wires repositories and services against a single DB handle.
func BuildServices(db *sqlx.DB, cfg *config.Config, notifier *notify.Service) *Services {
	userRepo := user.NewRepository(db)
	playerRepo := player.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	subRepo := subscription.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	availSvc := availability.NewService(availability.NewRepository(db))
	bookingSvc := booking.NewService(bookingRepo, playerRepo, catalogRepo, availSvc, subRepo, userRepo, notifier)
	subSvc := subscription.NewService(subRepo, playerRepo, catalogRepo)
	userSvc := user.NewService(userRepo, cfg.JWTSecret)

	gateway := payment.NewSquareGateway(cfg.SquareBaseURL, cfg.SquareAccessToken, cfg.SquareLocationID, cfg.GatewayTimeout)
	paymentSvc := payment.NewService(paymentRepo, gateway, bookingRepo, bookingSvc, subRepo, userRepo, notifier)

	return &Services{
		Booking:      bookingSvc,
		Subscription: subSvc,
		Payment:      paymentSvc,
		User:         userSvc,
		Availability: availSvc,
	}
}

func New(db *sqlx.DB, cfg *config.Config, svcs *Services, notifier *notify.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	userHandler := user.NewHandler(svcs.User)
	catalogHandler := catalog.NewHandler(db)
	playerHandler := player.NewHandler(db)
	availHandler := availability.NewHandler(db)
	bookingHandler := booking.NewHandler(svcs.Booking)
	subHandler := subscription.NewHandler(db)
	paymentHandler := payment.NewHandler(svcs.Payment)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/trainers", catalogHandler.ListTrainers)
		protected.GET("/session-types", catalogHandler.ListSessionTypes)
		protected.GET("/session-types/:sessionTypeID/options", catalogHandler.ListOptions)
		protected.GET("/trainers/:trainerID/availability", availHandler.ListTrainerWindows)

		protected.POST("/players", playerHandler.CreatePlayer)
		protected.GET("/players", playerHandler.ListMyPlayers)
		protected.GET("/players/:playerID", playerHandler.GetPlayer)

		protected.POST("/bookings", bookingHandler.Create)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.GET("/bookings/:id", bookingHandler.Get)
		protected.POST("/bookings/:id/cancel", bookingHandler.Cancel)

		protected.POST("/payments", paymentHandler.Process)
		protected.GET("/payments/me", paymentHandler.ListMine)
		protected.GET("/payments/booking/:bookingId", paymentHandler.GetByBooking)

		protected.POST("/subscriptions", subHandler.Create)
		protected.GET("/subscriptions", subHandler.ListMine)
		protected.GET("/players/:playerID/subscriptions", subHandler.ListByPlayer)
		protected.GET("/subscriptions/:subscriptionID/transactions", subHandler.ListTransactions)
	}

	trainer := router.Group("/trainer")
	trainer.Use(authMiddleware, auth.RequireRole(auth.RoleTrainer))
	{
		trainer.POST("/availability", availHandler.AddWindow)
		trainer.GET("/availability", availHandler.ListMyWindows)
		trainer.PUT("/availability/:windowID", availHandler.UpdateWindow)
		trainer.DELETE("/availability/:windowID", availHandler.DeleteWindow)

		trainer.GET("/bookings", bookingHandler.ListForTrainer)
		trainer.POST("/bookings/:id/no-show", bookingHandler.MarkNoShow)
		trainer.POST("/payments/:id/receive", paymentHandler.ReceiveInPerson)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/trainers", catalogHandler.CreateTrainer)
		admin.POST("/session-types", catalogHandler.CreateSessionType)
		admin.POST("/options", catalogHandler.CreateOption)
		admin.DELETE("/options/:optionID", catalogHandler.DeactivateOption)

		admin.GET("/bookings", bookingHandler.ListByStatus)
		admin.POST("/bookings/:id/status", bookingHandler.OverrideStatus)
		admin.POST("/sweep", bookingHandler.TriggerSweep)

		admin.GET("/payments/:id", paymentHandler.Get)
		admin.POST("/payments/:id/refund", paymentHandler.Refund)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	if notifier != nil {
		router.GET("/test-email", TestEmail(notifier))
	}
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
