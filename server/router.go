package server

import (
	"net/http"
	"time"

	httpHandler "social-publisher/interfaces/http"
	"social-publisher/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	userHandler httpHandler.IUserHandler,
	postHandler httpHandler.IPostHandler,
	credentialHandler httpHandler.ICredentialHandler,
	suggestionHandler httpHandler.ISuggestionHandler,
	dispatchHandler httpHandler.IDispatchHandler,
	metricsHandler http.Handler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:4201"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", userHandler.Login)
	router.POST("/register", userHandler.Register)
	router.GET("/metrics", gin.WrapH(metricsHandler))

	api := router.Group("api")
	api.Use(middleware.Auth())

	api.POST("/posts", postHandler.Create)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get)
	api.POST("/posts/:id/cancel", postHandler.Cancel)
	api.POST("/posts/:id/reschedule", postHandler.Reschedule)

	api.GET("/credentials", credentialHandler.List)
	api.DELETE("/credentials/:platform", credentialHandler.Disconnect)

	api.GET("/suggestions", suggestionHandler.Suggest)

	api.POST("/dispatch/run", dispatchHandler.Run)

	return router
}
