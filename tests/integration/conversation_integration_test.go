package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/printcraft-studio/printcraft-api/config"
	"github.com/printcraft-studio/printcraft-api/controllers"
	"github.com/printcraft-studio/printcraft-api/models"
	"github.com/printcraft-studio/printcraft-api/services"
	"github.com/printcraft-studio/printcraft-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConversationIntegrationTestSuite drives the whole messaging pipeline
// through the HTTP surface: quote submission, admin messaging, inbound
// webhook ingestion, the conversation projection and read-marking.
// Admin JWT validation is covered by the middleware tests and left out of
// the wiring here.
type ConversationIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
	mailer *services.MockEmailService
	cfg    *config.Config
}

func (suite *ConversationIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())
}

func (suite *ConversationIntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.NoError(db.AutoMigrate(&models.Order{}, &models.Message{}))
	suite.db = db

	suite.cfg = &config.Config{
		GoEnv:       "test",
		Port:        "8080",
		ReplyDomain: "reply.printcraft.studio",
		FromAddress: "Printcraft Studio <orders@printcraft.studio>",
	}
	suite.mailer = services.NewMockEmailService()

	messageService := services.NewMessageService(db)
	orders := controllers.NewOrderController(db, suite.mailer, suite.cfg)
	messages := controllers.NewMessageController(db, messageService, suite.mailer, suite.cfg)
	conversations := controllers.NewConversationController(messageService)
	webhooks := controllers.NewWebhookController(db, messageService, suite.mailer, suite.cfg)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/quotes", orders.CreateQuote)
	api.POST("/webhooks/resend", webhooks.HandleResendWebhook)
	api.GET("/admin/conversations", conversations.ListConversations)
	api.POST("/orders/:orderId/messages", messages.SendMessage)
	api.GET("/orders/:orderId/messages", messages.ListMessages)
	api.PATCH("/orders/:orderId/read", conversations.MarkRead)
	suite.router = router
}

func (suite *ConversationIntegrationTestSuite) request(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		suite.NoError(err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	suite.NoError(err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	response := map[string]interface{}{}
	if w.Body.Len() > 0 {
		suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (suite *ConversationIntegrationTestSuite) TestFullConversationLifecycle() {
	// A customer submits a quote request
	w, response := suite.request(http.MethodPost, "/api/quotes", map[string]interface{}{
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"description":    "Articulated dragon, 20cm, matte black",
		"quantity":       1,
	})
	suite.Equal(http.StatusCreated, w.Code)
	orderID := response["data"].(map[string]interface{})["id"].(string)

	// The admin replies through the UI; the customer gets an email whose
	// reply-to routes back to this order
	w, _ = suite.request(http.MethodPost, "/api/orders/"+orderID+"/messages", map[string]interface{}{
		"message": "Your order ships tomorrow!",
	})
	suite.Equal(http.StatusCreated, w.Code)

	sent := suite.mailer.SentEmails()
	suite.Len(sent, 1)
	replyTo := "order-" + orderID + "@reply.printcraft.studio"
	suite.Equal(replyTo, sent[0].ReplyTo)

	// The customer answers by email; the provider delivers a webhook event
	suite.mailer.AddInboundEmail(&services.InboundEmail{
		ID:      "email_reply_1",
		Subject: "Re: New message about your order " + orderID,
		Text:    "Great, thank you! See you then.\n\nOn Mon, Jan 5, 2026 at 3:00 PM Printcraft Studio wrote:\n> Your order ships tomorrow!",
	})
	event, err := json.Marshal(map[string]interface{}{
		"type": "email.received",
		"data": map[string]interface{}{
			"email_id": "email_reply_1",
			"from":     "jane@example.com",
			"to":       []string{replyTo},
			"subject":  "Re: New message about your order " + orderID,
		},
	})
	suite.NoError(err)

	req, err := http.NewRequest(http.MethodPost, "/api/webhooks/resend", bytes.NewReader(event))
	suite.NoError(err)
	w = httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)

	// The thread now holds both sides of the exchange, in order
	w, response = suite.request(http.MethodGet, "/api/orders/"+orderID+"/messages", nil)
	suite.Equal(http.StatusOK, w.Code)
	thread := response["data"].([]interface{})
	suite.Len(thread, 2)
	suite.Equal("admin", thread[0].(map[string]interface{})["sender"])
	suite.Equal("customer", thread[1].(map[string]interface{})["sender"])
	suite.Equal("Great, thank you! See you then.", thread[1].(map[string]interface{})["body"])

	// The inbox shows one unread customer message
	w, response = suite.request(http.MethodGet, "/api/admin/conversations", nil)
	suite.Equal(http.StatusOK, w.Code)
	inbox := response["data"].([]interface{})
	suite.Len(inbox, 1)
	row := inbox[0].(map[string]interface{})
	suite.Equal(orderID, row["order_id"])
	suite.Equal(float64(1), row["unread_count"])
	suite.Equal(float64(2), row["total_messages"])
	suite.Equal("Great, thank you! See you then.", row["last_message_preview"])

	// Marking the thread read clears the unread count
	w, _ = suite.request(http.MethodPatch, "/api/orders/"+orderID+"/read", nil)
	suite.Equal(http.StatusOK, w.Code)

	_, response = suite.request(http.MethodGet, "/api/admin/conversations", nil)
	row = response["data"].([]interface{})[0].(map[string]interface{})
	suite.Equal(float64(0), row["unread_count"])
}

func (suite *ConversationIntegrationTestSuite) TestWebhookNonEventsCreateNothing() {
	_, response := suite.request(http.MethodPost, "/api/webhooks/resend", map[string]interface{}{
		"type": "email.delivered",
		"data": map[string]interface{}{"email_id": "email_x"},
	})
	suite.Equal("ignored", response["status"])

	_, response = suite.request(http.MethodPost, "/api/webhooks/resend", map[string]interface{}{
		"type": "email.received",
		"data": map[string]interface{}{
			"email_id": "email_x",
			"to":       []string{"nobody@example.com"},
		},
	})
	suite.Equal("no_order_id", response["status"])

	var count int64
	suite.db.Model(&models.Message{}).Count(&count)
	suite.Equal(int64(0), count)
}

func TestConversationIntegrationTestSuite(t *testing.T) {
	testutil.RequireTestEnvironmentOrSkip(t)
	suite.Run(t, new(ConversationIntegrationTestSuite))
}
