package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/config"
	"github.com/printcraft-studio/printcraft-api/controllers"
	"github.com/printcraft-studio/printcraft-api/middleware"
	"github.com/printcraft-studio/printcraft-api/models"
	"github.com/printcraft-studio/printcraft-api/services"
)

func main() {
	log.Println("Starting Printcraft Studio API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := config.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Order{}, &models.Message{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	s3Service, err := services.NewS3Service(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	imageService := services.NewImageService(s3Service)
	mailer := services.NewResendService(cfg)
	messageService := services.NewMessageService(db)

	if cfg.ResendWebhookSecret == "" {
		log.Println("WARNING: RESEND_WEBHOOK_SECRET is not set; inbound webhook events will NOT be verified")
	}

	router := setupRouter(cfg, &appControllers{
		orders:        controllers.NewOrderController(db, mailer, cfg),
		messages:      controllers.NewMessageController(db, messageService, mailer, cfg),
		conversations: controllers.NewConversationController(messageService),
		webhooks:      controllers.NewWebhookController(db, messageService, mailer, cfg),
		uploads:       controllers.NewUploadController(imageService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server is running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}

	log.Println("Server stopped")
}

// appControllers bundles the request handlers for route registration
type appControllers struct {
	orders        *controllers.OrderController
	messages      *controllers.MessageController
	conversations *controllers.ConversationController
	webhooks      *controllers.WebhookController
	uploads       *controllers.UploadController
}

// setupRouter wires all routes. Admin routes require a valid JWT carrying
// the admin scope; quote submission and the provider webhook are public.
func setupRouter(cfg *config.Config, ctrl *appControllers) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)
		api.POST("/quotes", ctrl.orders.CreateQuote)
		api.POST("/webhooks/resend", ctrl.webhooks.HandleResendWebhook)
	}

	admin := api.Group("")
	admin.Use(middleware.EnsureValidToken(cfg), middleware.RequireScope("admin"))
	{
		admin.GET("/admin/orders", ctrl.orders.ListOrders)
		admin.GET("/admin/orders/:orderId", ctrl.orders.GetOrder)
		admin.PATCH("/admin/orders/:orderId/status", ctrl.orders.UpdateStatus)
		admin.GET("/admin/conversations", ctrl.conversations.ListConversations)
		admin.POST("/admin/uploads", ctrl.uploads.UploadImage)
		admin.POST("/orders/:orderId/messages", ctrl.messages.SendMessage)
		admin.GET("/orders/:orderId/messages", ctrl.messages.ListMessages)
		admin.PATCH("/orders/:orderId/read", ctrl.conversations.MarkRead)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Printcraft Studio API is running",
	})
}
