package main

import (
	"time"

	"auth-service/internal/config"
	"auth-service/internal/constants"
	"auth-service/internal/handlers"
	"auth-service/internal/queue"
	"auth-service/internal/routes"
	"auth-service/internal/services"
	"auth-service/pkg/database"
	"auth-service/pkg/utils"
	"auth-service/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load all configs
	if err := config.LoadConfig(); err != nil {
		utils.LogFatal("load config", err)
	}

	// Initialize validator
	validator.InitValidator()

	// Connect to database
	if err := database.ConnectDB(); err != nil {
		utils.LogFatal("connect database", err)
	}

	jwtService, err := services.NewJWTService(services.JWTConfig{
		AccessSecret:  []byte(utils.GetEnv("JWT_ACCESS_SECRET")),
		RefreshSecret: []byte(utils.GetEnv("JWT_REFRESH_SECRET")),
		AccessTTL:     parseTTL(config.Auth.Token.Access.Expiry, constants.DefaultAccessTokenTTL),
		RefreshTTL:    parseTTL(config.Auth.Token.Refresh.Expiry, constants.DefaultRefreshTokenTTL),
	})
	if err != nil {
		utils.LogFatal("init jwt service", err)
	}

	userStore := services.NewGormUserStore(database.DB)
	tokenStore := services.NewGormTokenStore(database.DB)

	var publisher services.EventPublisher
	if utils.GetEnvOrDefault("RABBITMQ_ENABLED", "true") == "true" {
		producer, err := queue.NewProducer()
		if err != nil {
			utils.LogFatal("connect RabbitMQ", err)
		}
		defer producer.Close()
		publisher = producer
	}

	authService := services.NewAuthService(userStore, tokenStore, jwtService, publisher)
	authHandler := handlers.NewAuthHandler(authService)

	// Prune expired and revoked token records in the background. The rotation
	// protocol itself only flags rows.
	go runTokenCleanup(tokenStore)

	app := fiber.New(fiber.Config{})

	routes.SetupRoutes(app, authHandler, jwtService, userStore, tokenStore)

	port := utils.GetEnvOrDefault("PORT", "3001")
	if err := app.Listen(":" + port); err != nil {
		utils.LogFatal("start server", err)
	}
}

func parseTTL(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	ttl, err := time.ParseDuration(value)
	if err != nil {
		utils.LogWarn("config", "unparsable token expiry "+value+", using default")
		return fallback
	}
	return ttl
}

func runTokenCleanup(tokenStore services.TokenStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		pruned, err := tokenStore.CleanupExpired()
		if err != nil {
			utils.LogError("token cleanup", err)
			continue
		}
		if pruned > 0 {
			utils.LogInfo("token cleanup", "pruned stale refresh token records")
		}
	}
}
