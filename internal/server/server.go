package server

import (
	"context"
	"net/http"

	"fitify/internal/booking"
	"fitify/internal/class"
	"fitify/internal/config"
	"fitify/internal/event"
	"fitify/internal/rules"
	"fitify/internal/studio"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, rulesStore *rules.Store, outbox *event.Outbox) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	studioRepo := studio.NewRepository(db)
	classRepo := class.NewRepository(db, outbox)
	bookingRepo := booking.NewRepository(db, outbox)

	studioHandler := studio.NewHandler(studio.NewService(studioRepo))
	classHandler := class.NewHandler(class.NewService(classRepo, studioRepo))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, classRepo, rulesStore))

	public := router.Group("/")
	{
		public.GET("/locations", studioHandler.ListLocations)
		public.GET("/locations/:locationID", studioHandler.GetLocation)
		public.GET("/locations/:locationID/coaches", studioHandler.ListCoaches)
		public.GET("/locations/:locationID/classes", classHandler.ListUpcoming)
		public.GET("/classes/:classID", classHandler.GetClass)
		public.POST("/classes/:classID/book", bookingHandler.BookClass)
		public.POST("/classes/:classID/cancel", bookingHandler.CancelBooking)
		public.POST("/classes/:classID/waitlist/leave", bookingHandler.LeaveWaitlist)
		public.GET("/users/:userID/bookings", bookingHandler.ListUserBookings)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/locations", studioHandler.CreateLocation)
		admin.POST("/locations/:locationID/coaches", studioHandler.CreateCoach)
		admin.PUT("/coaches/:coachID/active", studioHandler.SetCoachActive)
		admin.GET("/coaches/:coachID/classes", classHandler.ListByCoach)
		admin.POST("/classes", classHandler.CreateClass)
		admin.PATCH("/classes/:classID", classHandler.UpdateClass)
		admin.POST("/classes/:classID/cancel", classHandler.CancelClass)
		admin.GET("/classes/:classID/bookings", bookingHandler.ListClassBookings)
		admin.GET("/classes/:classID/waitlist", bookingHandler.ListWaitlist)
		admin.GET("/analytics/utilization", classHandler.GetUtilization)
		admin.GET("/analytics/cancellations", classHandler.GetCancellations)
		admin.GET("/rules", CurrentRules(rulesStore))
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
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

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
