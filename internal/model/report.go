package model

import (
	"time"

	"storepos/internal/money"
)

// SalesReport aggregates committed bills over a date range.
type SalesReport struct {
	BillCount      int64            `json:"bill_count"`
	TotalSales     money.Money      `json:"total_sales"`
	TotalTax       money.Money      `json:"total_tax"`
	TotalGrand     money.Money      `json:"total_grand"`
	TotalProfit    money.Money      `json:"total_profit"`
	TopProducts    []ProductRanking `json:"top_products"`
	RangeStartDate *time.Time       `json:"range_start_date,omitempty"`
	RangeEndDate   *time.Time       `json:"range_end_date,omitempty"`
}

// ProductRanking represents a ranked product based on accumulated quantities
type ProductRanking struct {
	ProductID     int64       `json:"product_id"`
	ProductName   string      `json:"product_name"`
	TotalQuantity int         `json:"total_quantity"`
	TotalValue    money.Money `json:"total_value"`
}
