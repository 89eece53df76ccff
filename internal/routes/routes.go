package routes

import (
	"auth-service/internal/handlers"
	"auth-service/internal/middleware"
	"auth-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
)

func SetupRoutes(app *fiber.App, authHandler *handlers.AuthHandler, jwtService *services.JWTService, users services.UserStore, tokens services.TokenStore) {
	// API routes group
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Monitor route
	app.Get("/metrics", monitor.New())

	// Auth routes
	auth := v1.Group("/auth")

	// Public auth routes
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Protected auth routes
	authProtected := auth.Use(middleware.RequireAuth(jwtService, users, tokens))
	authProtected.Post("/logout-all", authHandler.LogoutAll)
	authProtected.Get("/userinfo", authHandler.UserInfo)
}
