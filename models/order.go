package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses follow the quote lifecycle from submission to delivery.
const (
	OrderStatusSubmitted = "submitted"
	OrderStatusQuoted    = "quoted"
	OrderStatusApproved  = "approved"
	OrderStatusPrinting  = "printing"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusRejected  = "rejected"
)

// Order represents a custom print quote/order in the system
type Order struct {
	ID            string     `gorm:"primaryKey" json:"id"` // public identifier, e.g. "quote_0f3a9c1d2b4e"
	CustomerName  string     `gorm:"not null" json:"customer_name"`
	CustomerEmail string     `gorm:"not null;index" json:"customer_email"`
	Description   string     `gorm:"type:text;not null" json:"description"` // what the customer wants printed
	Quantity      int        `gorm:"not null;check:quantity > 0" json:"quantity"`
	Status        string     `gorm:"not null;default:'submitted'" json:"status"`
	Price         *float64   `json:"price"`                       // nullable, set when the order is quoted
	ImageS3Key    *string    `json:"image_s3_key"`                // nullable, S3 key for the reference image
	LastReadAt    *time.Time `json:"last_read_at"`                // admin's last-read watermark for the thread
	Messages      []Message  `gorm:"foreignKey:OrderID" json:"-"` // don't include the thread in order JSON
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns a public identifier when none is set. The identifier
// alphabet is restricted to [a-z0-9_] so it can always be embedded in a
// reply address local-part and parsed back out.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		hex := strings.ReplaceAll(uuid.New().String(), "-", "")
		o.ID = "quote_" + hex[:12]
	}
	return nil
}
