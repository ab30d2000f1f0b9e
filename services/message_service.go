package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/printcraft-studio/printcraft-api/models"
	"gorm.io/gorm"
)

// ValidationError represents invalid caller input to the message store
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConversationSummary is one row of the admin inbox projection: an order
// joined with its latest message and an unread count. It is computed on
// every call and never cached.
type ConversationSummary struct {
	OrderID            string     `json:"order_id"`
	CustomerName       string     `json:"customer_name"`
	Status             string     `json:"status"`
	LastMessagePreview *string    `json:"last_message_preview"`
	LastSender         *string    `json:"last_sender"`
	LastMessageAt      *time.Time `json:"last_message_at"`
	UnreadCount        int        `json:"unread_count"`
	TotalMessages      int        `json:"total_messages"`
	OrderCreatedAt     time.Time  `json:"order_created_at"`
}

const previewMaxLen = 120

// MessageService persists order conversation messages and computes the
// conversation projection. It holds its database handle by injection;
// lifecycle is owned by the process entry point.
type MessageService struct {
	db *gorm.DB
}

// NewMessageService creates a message service on the given database handle
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Append inserts a new immutable message on an order. At least one of body
// and imageURL must be non-empty; emailID, when set, records the provider
// email that produced the message so duplicate webhook deliveries can be
// detected.
func (s *MessageService) Append(orderID, sender, body, imageURL, emailID string) (*models.Message, error) {
	if body == "" && imageURL == "" {
		return nil, &ValidationError{
			Code:    "VALIDATION_ERROR",
			Message: "Message must include text or an image",
		}
	}

	message := models.Message{
		OrderID:  orderID,
		Sender:   sender,
		Body:     optional(body),
		ImageURL: optional(imageURL),
		EmailID:  optional(emailID),
	}

	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return &message, nil
}

// ListByOrder returns an order's messages in thread order (ascending by
// creation time, insertion order breaking ties). An order with no messages
// yields an empty slice, not an error.
func (s *MessageService) ListByOrder(orderID string) ([]models.Message, error) {
	var messages []models.Message
	if err := s.db.Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}

// MarkRead moves the order's last-admin-read watermark to asOf. The update
// is idempotent and touches only the order row.
func (s *MessageService) MarkRead(orderID string, asOf time.Time) error {
	result := s.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("last_read_at", asOf)
	if result.Error != nil {
		return fmt.Errorf("failed to mark order read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasEmail reports whether a message for the given provider email
// identifier has already been ingested.
func (s *MessageService) HasEmail(emailID string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Message{}).
		Where("email_id = ?", emailID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email id: %w", err)
	}
	return count > 0, nil
}

// messageStats carries the grouped per-order aggregates for the projection
type messageStats struct {
	OrderID       string
	TotalMessages int
	UnreadCount   int
}

// ListConversations produces the admin inbox projection: every order with
// its latest message preview, unread count (customer messages strictly
// newer than the order's last-read watermark, null treated as epoch) and
// total, sorted by the more recent of last message time and order creation
// time. Orders without messages still appear so new leads are not lost.
func (s *MessageService) ListConversations() ([]ConversationSummary, error) {
	var orders []models.Order
	if err := s.db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	var stats []messageStats
	if err := s.db.Raw(`
		SELECT m.order_id AS order_id,
		       COUNT(*) AS total_messages,
		       SUM(CASE WHEN m.sender = ? AND (o.last_read_at IS NULL OR m.created_at > o.last_read_at)
		                THEN 1 ELSE 0 END) AS unread_count
		FROM messages m
		JOIN orders o ON o.id = m.order_id
		GROUP BY m.order_id`, models.SenderCustomer).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate messages: %w", err)
	}

	statsByOrder := make(map[string]messageStats, len(stats))
	for _, st := range stats {
		statsByOrder[st.OrderID] = st
	}

	// Thread order is insertion order, so the row with the highest id per
	// order is the latest message.
	var lastMessages []models.Message
	if err := s.db.Where(`id IN (SELECT MAX(id) FROM messages GROUP BY order_id)`).
		Find(&lastMessages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch latest messages: %w", err)
	}

	lastByOrder := make(map[string]models.Message, len(lastMessages))
	for _, m := range lastMessages {
		lastByOrder[m.OrderID] = m
	}

	summaries := make([]ConversationSummary, 0, len(orders))
	for _, order := range orders {
		summary := ConversationSummary{
			OrderID:        order.ID,
			CustomerName:   order.CustomerName,
			Status:         order.Status,
			OrderCreatedAt: order.CreatedAt,
		}
		if st, ok := statsByOrder[order.ID]; ok {
			summary.TotalMessages = st.TotalMessages
			summary.UnreadCount = st.UnreadCount
		}
		if last, ok := lastByOrder[order.ID]; ok {
			preview := messagePreview(last)
			lastAt := last.CreatedAt
			sender := last.Sender
			summary.LastMessagePreview = &preview
			summary.LastMessageAt = &lastAt
			summary.LastSender = &sender
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaryActivity(summaries[i]).After(summaryActivity(summaries[j]))
	})

	return summaries, nil
}

// summaryActivity is the sort key: last message time when the thread has
// one, the order's creation time otherwise.
func summaryActivity(s ConversationSummary) time.Time {
	if s.LastMessageAt != nil {
		return *s.LastMessageAt
	}
	return s.OrderCreatedAt
}

func messagePreview(m models.Message) string {
	if m.Body == nil || *m.Body == "" {
		return "[Image]"
	}
	body := *m.Body
	if len(body) > previewMaxLen {
		return body[:previewMaxLen] + "..."
	}
	return body
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
