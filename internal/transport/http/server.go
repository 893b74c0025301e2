package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "pneumascan/internal/app"
	"pneumascan/internal/bootstrap"
	"pneumascan/internal/cache"
	"pneumascan/internal/geo"
	"pneumascan/internal/repository"
	"pneumascan/internal/transport/http/handler"
	"pneumascan/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/login", "web/login.html")
	router.StaticFile("/signup", "web/signup.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)

	locator := geo.NewClient(
		app.Config.Geo.OverpassURL,
		app.Config.Geo.RadiusMeters,
		app.Config.Geo.MaxResults,
		time.Duration(app.Config.Geo.TimeoutSeconds)*time.Second,
	)
	facilityCache := cache.NewFacilityCache(
		app.Redis,
		time.Duration(app.Config.Redis.FacilityTTLSeconds)*time.Second,
	)
	screeningService := appsvc.NewScreeningService(app.Classifier, locator, facilityCache, app.Log)

	authHandler := handler.NewAuthHandler(authService)
	screeningHandler := handler.NewScreeningHandler(
		screeningService,
		app.Config.Upload.MaxSizeMB<<20,
		app.Log,
	)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	router.POST("/predict", middleware.AuthJWT(app.Config.Auth.JWTSecret), screeningHandler.Predict)

	return router
}
