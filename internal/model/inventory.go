package model

import (
	"time"

	"storepos/internal/money"

	"github.com/google/uuid"
)

// Product is a catalog row. Quantity never goes negative; price and tax rate are
// read under a row lock during checkout.
type Product struct {
	ID            int64       `gorm:"primaryKey" json:"id"`
	Name          string      `gorm:"type:varchar(100);not null;index" json:"name"`
	Price         money.Money `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity      int         `gorm:"type:int;not null;default:0;check:quantity >= 0" json:"quantity"`
	TaxRate       money.Money `gorm:"type:decimal(5,2);not null;default:18.00" json:"tax_rate"`
	UnitProfit    money.Money `gorm:"type:decimal(12,2);not null;default:0" json:"unit_profit"`
	Brand         string      `gorm:"type:varchar(100)" json:"brand"`
	Supplier      string      `gorm:"type:varchar(100)" json:"supplier"`
	SupplierPhone string      `gorm:"type:varchar(20)" json:"supplier_phone"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TransactionType Enum Simulation
const (
	TxTypeIn     = "IN"
	TxTypeOut    = "OUT"
	TxTypeAdjust = "ADJUST"
)

// InventoryTransaction is the stock ledger: one row per quantity change.
type InventoryTransaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID       int64      `gorm:"not null;index" json:"product_id"`
	BillID          *int64     `gorm:"index" json:"bill_id"`
	ReorderID       *uuid.UUID `gorm:"type:uuid;index" json:"reorder_id"`
	TransactionType string     `gorm:"type:varchar(10);not null" json:"transaction_type"`
	QuantityChanged int        `gorm:"type:int;not null" json:"quantity_changed"`
	StockAfter      int        `gorm:"type:int;not null" json:"stock_after"`
	CreatedAt       time.Time  `json:"created_at"`
}
