package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/config"
	"github.com/printcraft-studio/printcraft-api/models"
	"github.com/printcraft-studio/printcraft-api/services"
	"gorm.io/gorm"
)

// MessageController handles the admin side of order conversations
type MessageController struct {
	db       *gorm.DB
	messages *services.MessageService
	mailer   services.EmailService
	cfg      *config.Config
}

// NewMessageController creates a message controller with its dependencies
func NewMessageController(db *gorm.DB, messages *services.MessageService, mailer services.EmailService, cfg *config.Config) *MessageController {
	return &MessageController{db: db, messages: messages, mailer: mailer, cfg: cfg}
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
}

// SendMessage handles POST /api/orders/:orderId/messages - the admin sends a
// message on an order. The message is persisted, then the customer is
// notified by email with the thread history and a reply-to address that
// routes their answer back to this order.
func (mc *MessageController) SendMessage(c *gin.Context) {
	order, ok := mc.findOrder(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	message, err := mc.messages.Append(order.ID, models.SenderAdmin, req.Message, req.ImageURL, "")
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    validationErr.Code,
					"message": validationErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create message",
			},
		})
		return
	}

	// Notify the customer. The message is already persisted, so a send
	// failure is logged and surfaced nowhere else.
	thread, err := mc.messages.ListByOrder(order.ID)
	if err != nil {
		log.Printf("Failed to load thread for notification on order %s: %v", order.ID, err)
		thread = []models.Message{*message}
	}
	email := buildMessageNotificationEmail(order, thread, mc.cfg)
	if _, err := mc.mailer.SendEmail(context.Background(), email); err != nil {
		log.Printf("Failed to send message notification for order %s: %v", order.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/orders/:orderId/messages - returns the
// order's thread in chronological order
func (mc *MessageController) ListMessages(c *gin.Context) {
	order, ok := mc.findOrder(c)
	if !ok {
		return
	}

	messages, err := mc.messages.ListByOrder(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch messages",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}

func (mc *MessageController) findOrder(c *gin.Context) (*models.Order, bool) {
	orderID := c.Param("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID is required",
			},
		})
		return nil, false
	}

	var order models.Order
	if err := mc.db.First(&order, "id = ?", orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return nil, false
	}

	return &order, true
}
