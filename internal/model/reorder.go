package model

import (
	"time"

	"github.com/google/uuid"
)

// ReorderStatus constants
const (
	ReorderPending   = "PENDING"
	ReorderReceived  = "RECEIVED"
	ReorderCancelled = "CANCELLED"
)

// ReorderRequest is an open supplier notification for a low-stock product. It is
// resolved later by an explicit confirmation or cancellation.
type ReorderRequest struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID         int64      `gorm:"not null;index" json:"product_id"`
	Product           *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Supplier          string     `gorm:"type:varchar(100)" json:"supplier"`
	QuantityAtRequest int        `gorm:"type:int;not null" json:"quantity_at_request"`
	Status            string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	NotifiedVia       string     `gorm:"type:varchar(20)" json:"notified_via"`
	NotifyError       string     `gorm:"type:text" json:"notify_error,omitempty"`
	ReceivedQuantity  int        `gorm:"type:int;not null;default:0" json:"received_quantity"`
	ResolvedBy        *uuid.UUID `gorm:"type:uuid" json:"resolved_by"`
	ResolvedAt        *time.Time `json:"resolved_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
