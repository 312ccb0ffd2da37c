package model

import (
	"time"

	"storepos/internal/money"

	"github.com/google/uuid"
)

// Bill is the committed record of one checkout. It is written once and never updated.
type Bill struct {
	ID         int64       `gorm:"primaryKey" json:"id"`
	CustomerID int64       `gorm:"not null;index" json:"customer_id"`
	Customer   *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CashierID  *uuid.UUID  `gorm:"type:uuid;index" json:"cashier_id"`
	BillDate   time.Time   `gorm:"type:date;not null;index" json:"bill_date"`
	Subtotal   money.Money `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount  money.Money `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	GrandTotal money.Money `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	Items      []BillItem  `gorm:"foreignKey:BillID" json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
}

// BillItem is a line of a bill with price, tax rate and profit captured at sale time.
type BillItem struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	BillID       int64       `gorm:"not null;index" json:"bill_id"`
	Position     int         `gorm:"type:int;not null" json:"position"`
	ProductID    int64       `gorm:"not null;index" json:"product_id"`
	ProductName  string      `gorm:"type:varchar(100);not null" json:"product_name"`
	Quantity     int         `gorm:"type:int;not null;check:quantity > 0" json:"quantity"`
	UnitPrice    money.Money `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TaxRate      money.Money `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	LineSubtotal money.Money `gorm:"type:decimal(12,2);not null" json:"line_subtotal"`
	UnitProfit   money.Money `gorm:"type:decimal(12,2);not null;default:0" json:"unit_profit"`
}
