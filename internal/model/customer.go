package model

import "time"

// Customer is keyed naturally by a 10-digit phone number.
type Customer struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"phone"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	Address   string    `gorm:"type:varchar(100)" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
