// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"go-typing-comp/controllers"
	"go-typing-comp/logger"
	"go-typing-comp/middleware"
	"go-typing-comp/session"
	"go-typing-comp/store"
	"go-typing-comp/websocket"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("No .env file loaded: %v", err)
	}

	env := os.Getenv("APP_ENV")
	logger.SetLogLevel(env)
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "typing_comp"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	db, err := store.New(ctx, mongoURI, dbName)
	if err != nil {
		logger.Error.Fatalf("Failed to connect to store: %v", err)
	}
	controllers.SetStore(db)

	// one registry and one hub for the whole process, passed by reference
	registry := session.NewSessionRegistry(db)
	hub := websocket.NewHub()
	wsHandler := websocket.NewHandler(hub, registry)

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "dev-secret-change-me"
		logger.Warn.Println("SESSION_SECRET not set; using development default")
	}
	cookieStore := cookie.NewStore([]byte(sessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 24 hours
		HttpOnly: true,
		Secure:   env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("typingcomp", cookieStore))

	router.GET("/health", controllers.Health)

	// Public routes
	router.POST("/api/auth/register", controllers.Register)
	router.POST("/api/auth/login", controllers.Login)
	router.POST("/api/auth/logout", controllers.Logout)
	router.GET("/api/competitions/:code", controllers.GetCompetitionByCode)
	router.GET("/api/competitions/:code/qr", controllers.GetJoinQRCode)
	router.GET("/api/rankings/:competitionId", controllers.GetRankings)

	// Protected routes
	protected := router.Group("/api", middleware.AuthRequired)
	{
		protected.POST("/competitions", controllers.CreateCompetition)
		protected.GET("/my-competitions", controllers.MyCompetitions)
	}

	// WebSocket entry point
	router.GET("/ws", func(c *gin.Context) {
		wsHandler.ServeWs(c.Writer, c.Request)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info.Printf("Starting server on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logger.Error.Fatalf("Failed to run server: %v", err)
	}
}
