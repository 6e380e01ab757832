package router

import (
	"net/http"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/controllers"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/events"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/middlewares"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Registry  *services.TableRegistry
	Scheduler *services.ReservationScheduler
	Auth      *services.AuthService
	Hub       *events.Hub

	AuthRequired bool
	CORSOrigin   string
	// RateLimiter is optional; nil disables per-IP limiting.
	RateLimiter *middlewares.RateLimiter
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.RateLimit())
	}

	r.NoRoute(func(c *gin.Context) {
		utils.RespondMessage(c, http.StatusBadRequest, "Invalid route")
	})
	r.HandleMethodNotAllowed = false

	userCtrl := controllers.NewUserController(deps.Auth)
	tableCtrl := controllers.NewTableController(deps.Registry)
	reservationCtrl := controllers.NewReservationController(deps.Scheduler)
	adminCtrl := controllers.NewAdminController(deps.Registry, deps.Scheduler, deps.Hub)
	eventsCtrl := controllers.NewEventsController(deps.Hub, deps.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.POST("/signup", userCtrl.SignUp)
	r.POST("/signin", userCtrl.SignIn)

	// ----------------------------------------------------------------
	//                      PROTECTED ROUTES
	// ----------------------------------------------------------------
	protected := r.Group("/")
	ws := r.Group("/ws")
	if deps.AuthRequired {
		protected.Use(middlewares.AuthMiddleware(deps.Auth))
		ws.Use(middlewares.QueryTokenAuthMiddleware(deps.Auth))
	}
	{
		protected.POST("/tables", tableCtrl.CreateTable)
		protected.GET("/tables", tableCtrl.GetAllTables)
		protected.GET("/tables/:table_id", tableCtrl.GetTableByID)

		protected.POST("/reservations", reservationCtrl.CreateReservation)
		protected.GET("/reservations", reservationCtrl.GetAllReservations)

		protected.GET("/admin/stats", adminCtrl.GetStats)
	}
	ws.GET("/events", eventsCtrl.Stream)

	return r
}
