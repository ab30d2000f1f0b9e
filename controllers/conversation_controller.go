package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/services"
	"gorm.io/gorm"
)

// ConversationController serves the admin inbox view
type ConversationController struct {
	messages *services.MessageService
}

// NewConversationController creates a conversation controller
func NewConversationController(messages *services.MessageService) *ConversationController {
	return &ConversationController{messages: messages}
}

// ListConversations handles GET /api/admin/conversations - returns the
// per-order conversation summaries for the admin inbox, recomputed on
// every call
func (cc *ConversationController) ListConversations(c *gin.Context) {
	summaries, err := cc.messages.ListConversations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch conversations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}

// MarkRead handles PATCH /api/orders/:orderId/read - moves the order's
// last-read watermark to now
func (cc *ConversationController) MarkRead(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID is required",
			},
		})
		return
	}

	if err := cc.messages.MarkRead(orderID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to mark order read",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
