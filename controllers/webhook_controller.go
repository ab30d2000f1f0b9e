package controllers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/config"
	"github.com/printcraft-studio/printcraft-api/models"
	"github.com/printcraft-studio/printcraft-api/services"
	"github.com/printcraft-studio/printcraft-api/utils"
	"gorm.io/gorm"
)

// Webhook response status tokens. The endpoint answers 200 for every
// expected outcome, including non-events, so the provider never retries;
// only a failed signature check is rejected.
const (
	webhookStatusSaved            = "saved"
	webhookStatusIgnored          = "ignored"
	webhookStatusNoEmailID        = "no_email_id"
	webhookStatusNoOrderID        = "no_order_id"
	webhookStatusOrderNotFound    = "order_not_found"
	webhookStatusError            = "error"
	webhookStatusInvalidSignature = "invalid_signature"
)

// resendEvent is the webhook envelope. Only the email.received variant is
// parsed in full; every other event type is acknowledged and dropped, so
// its data fields are never inspected.
type resendEvent struct {
	Type      string          `json:"type"`
	CreatedAt string          `json:"created_at"`
	Data      resendEventData `json:"data"`
}

type resendEventData struct {
	EmailID string   `json:"email_id"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
}

// WebhookController ingests inbound-email webhook events and turns them
// into customer messages on the matching order
type WebhookController struct {
	db       *gorm.DB
	messages *services.MessageService
	mailer   services.EmailService
	cfg      *config.Config
}

// NewWebhookController creates a webhook controller with its dependencies
func NewWebhookController(db *gorm.DB, messages *services.MessageService, mailer services.EmailService, cfg *config.Config) *WebhookController {
	return &WebhookController{db: db, messages: messages, mailer: mailer, cfg: cfg}
}

// HandleResendWebhook handles POST /api/webhooks/resend.
//
// The pipeline: verify the signature (when a secret is configured), keep
// only email.received events, resolve the target order from the recipient
// list, fetch the full email body from the provider, extract the new reply
// text and persist it as a customer message. Infrastructure failures after
// the signature check are logged and still acknowledged with 200 so the
// provider does not enter a retry storm.
func (wc *WebhookController) HandleResendWebhook(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		log.Printf("Webhook: failed to read request body: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusError})
		return
	}

	if wc.cfg.ResendWebhookSecret != "" {
		if !verifyWebhookSignature(
			wc.cfg.ResendWebhookSecret,
			c.GetHeader("svix-id"),
			c.GetHeader("svix-timestamp"),
			c.GetHeader("svix-signature"),
			rawBody,
		) {
			c.JSON(http.StatusUnauthorized, gin.H{"status": webhookStatusInvalidSignature})
			return
		}
	}

	var event resendEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Printf("Webhook: failed to decode event payload: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusError})
		return
	}

	if event.Type != "email.received" {
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusIgnored})
		return
	}

	if event.Data.EmailID == "" {
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusNoEmailID})
		return
	}

	orderID := wc.resolveOrderID(event.Data.To)
	if orderID == "" {
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusNoOrderID})
		return
	}

	var order models.Order
	if err := wc.db.First(&order, "id = ?", orderID).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusOrderNotFound})
		return
	}

	// Providers deliver duplicates; an already-ingested email is a no-op
	seen, err := wc.messages.HasEmail(event.Data.EmailID)
	if err != nil {
		log.Printf("Webhook: dedup check failed for email %s: %v", event.Data.EmailID, err)
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusError})
		return
	}
	if seen {
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusSaved})
		return
	}

	// The webhook payload omits the body; fetch the stored email
	email, err := wc.mailer.GetReceivedEmail(context.Background(), event.Data.EmailID)
	if err != nil {
		log.Printf("Webhook: failed to retrieve email %s: %v", event.Data.EmailID, err)
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusError})
		return
	}

	body := email.Text
	if body == "" && email.HTML != "" {
		body = utils.StripHTMLTags(email.HTML)
	}
	reply := utils.ExtractReplyOrFallback(body, email.Subject)

	if _, err := wc.messages.Append(order.ID, models.SenderCustomer, reply, "", event.Data.EmailID); err != nil {
		log.Printf("Webhook: failed to persist reply on order %s: %v", order.ID, err)
		c.JSON(http.StatusOK, gin.H{"status": webhookStatusError})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": webhookStatusSaved})
}

// resolveOrderID tries each recipient address until one parses to an
// order identifier.
func (wc *WebhookController) resolveOrderID(recipients []string) string {
	for _, address := range recipients {
		if orderID := utils.OrderIDFromAddress(address, wc.cfg.ReplyDomain); orderID != "" {
			return orderID
		}
	}
	return ""
}

// verifyWebhookSignature checks the svix-convention signature Resend sends:
// HMAC-SHA256 over "<id>.<timestamp>.<body>", keyed by the base64 secret
// after its "whsec_" prefix. The header may carry several space-separated
// "v1,<base64>" entries (one per signing key version); any match accepts.
func verifyWebhookSignature(secret, deliveryID, timestamp, signatureHeader string, body []byte) bool {
	if deliveryID == "" || timestamp == "" || signatureHeader == "" {
		return false
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		log.Printf("Webhook: malformed webhook secret: %v", err)
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(deliveryID + "." + timestamp + "."))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, entry := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}
