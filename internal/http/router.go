package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"furious-host/internal/repository"
	"furious-host/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas del portal.
func NewRouter(
	logger *zap.Logger,
	userH *UserHandler,
	planH *PlanHandler,
	chatH *ChatHandler,
	ticketH *TicketHandler,
	adminH *AdminHandler,
	jwtSvc *service.JWTService,
	roles repository.RoleRepository,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(), jsonContentTypeMiddleware())

	users := r.Group("/users")
	users.POST("", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/oauth", userH.OAuthLogin)
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	// La recomendacion de planes es publica: el frontend la consume antes del login.
	r.POST("/plans/suggest", planH.SuggestPlan)

	authed := r.Group("")
	authed.Use(JWTAuthMiddleware(jwtSvc))

	authed.GET("/me", userH.Me)
	authed.PUT("/me/profile", userH.UpdateProfile)

	chat := authed.Group("/chat")
	chat.POST("/message", chatH.PostMessage)
	chat.GET("/messages", chatH.ListMessages)

	tickets := authed.Group("/tickets")
	tickets.POST("", ticketH.CreateTicket)
	tickets.GET("", ticketH.ListTickets)

	admin := authed.Group("/admin")
	admin.Use(AdminRequiredMiddleware(roles))
	admin.GET("/tickets", adminH.ListTickets)
	admin.PATCH("/tickets/:id/status", adminH.UpdateTicketStatus)
	admin.PATCH("/tickets/:id/notes", adminH.UpdateTicketNotes)
	admin.GET("/users", adminH.ListUsers)
	admin.GET("/roles", adminH.ListRoles)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware responde preflights y habilita llamadas desde el frontend del portal.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
