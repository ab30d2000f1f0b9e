package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/config"
	"github.com/printcraft-studio/printcraft-api/models"
	"github.com/printcraft-studio/printcraft-api/services"
	"gorm.io/gorm"
)

// OrderController handles quote submission and order lifecycle endpoints
type OrderController struct {
	db     *gorm.DB
	mailer services.EmailService
	cfg    *config.Config
}

// NewOrderController creates an order controller with its dependencies
func NewOrderController(db *gorm.DB, mailer services.EmailService, cfg *config.Config) *OrderController {
	return &OrderController{db: db, mailer: mailer, cfg: cfg}
}

// CreateQuoteRequest represents the request body for submitting a quote
type CreateQuoteRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	Description   string `json:"description" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
}

// CreateQuote handles POST /api/quotes - a customer submits a print request
func (oc *OrderController) CreateQuote(c *gin.Context) {
	var req CreateQuoteRequest
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

	order := models.Order{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Description:   req.Description,
		Quantity:      req.Quantity,
		Status:        models.OrderStatusSubmitted,
	}

	if err := oc.db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/admin/orders - lists all orders, newest first
func (oc *OrderController) ListOrders(c *gin.Context) {
	var orders []models.Order
	if err := oc.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/admin/orders/:orderId - fetches one order
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, ok := oc.findOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateStatusRequest represents the request body for a status transition
type UpdateStatusRequest struct {
	Status string   `json:"status" binding:"required"`
	Price  *float64 `json:"price"`
}

var validStatuses = map[string]bool{
	models.OrderStatusSubmitted: true,
	models.OrderStatusQuoted:    true,
	models.OrderStatusApproved:  true,
	models.OrderStatusPrinting:  true,
	models.OrderStatusShipped:   true,
	models.OrderStatusDelivered: true,
	models.OrderStatusRejected:  true,
}

// UpdateStatus handles PATCH /api/admin/orders/:orderId/status - advances the
// order lifecycle and emails the customer a status notification
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	order, ok := oc.findOrder(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
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

	if !validStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": fmt.Sprintf("Unknown status %q", req.Status),
			},
		})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if err := oc.db.Model(order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	// Notify the customer; a send failure must not undo the transition
	email := buildStatusEmail(order, oc.cfg)
	if _, err := oc.mailer.SendEmail(context.Background(), email); err != nil {
		log.Printf("Failed to send status notification for order %s: %v", order.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// findOrder loads the order named in the URL, answering 404 on miss.
func (oc *OrderController) findOrder(c *gin.Context) (*models.Order, bool) {
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
	if err := oc.db.First(&order, "id = ?", orderID).Error; err != nil {
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
