package models

import (
	"time"
)

// Message sender roles. Every message in an order thread is attributed to
// one of the two sides of the conversation.
const (
	SenderAdmin    = "admin"
	SenderCustomer = "customer"
)

// Message represents a single unit of communication in an order thread.
// Messages are immutable once created; there is no edit or delete path.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   string    `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order     Order     `gorm:"foreignKey:OrderID" json:"-"`    // don't include full order in JSON
	Sender    string    `gorm:"not null" json:"sender"`         // "admin" or "customer"
	Body      *string   `gorm:"type:text" json:"body"`          // nullable when the message is image-only
	ImageURL  *string   `json:"image_url"`                      // nullable, image attachment URL
	EmailID   *string   `gorm:"index" json:"-"`                 // provider email id for webhook dedup
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
