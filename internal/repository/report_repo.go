package repository

import (
	"context"
	"fmt"
	"time"

	"storepos/internal/model"
	"storepos/internal/money"

	"gorm.io/gorm"
)

// SalesTotals is the raw aggregate row behind a sales report.
type SalesTotals struct {
	BillCount   int64
	TotalSales  money.Money
	TotalTax    money.Money
	TotalGrand  money.Money
	TotalProfit money.Money
}

type ReportRepository interface {
	SalesTotals(ctx context.Context, from, to *time.Time) (SalesTotals, error)
	TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]model.ProductRanking, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func billRange(db *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		db = db.Where("bills.bill_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("bills.bill_date <= ?", *to)
	}
	return db
}

// SalesTotals sums header totals and line profit snapshots. The two sums run
// as separate queries so the item join does not multiply header amounts.
func (r *reportRepository) SalesTotals(ctx context.Context, from, to *time.Time) (SalesTotals, error) {
	var out SalesTotals

	var header struct {
		BillCount  int64
		TotalSales string
		TotalTax   string
		TotalGrand string
	}
	db := billRange(GetDB(ctx, r.db).Table("bills"), from, to)
	if err := db.Select("COUNT(*) as bill_count, " +
		"CAST(COALESCE(SUM(subtotal), 0) AS TEXT) as total_sales, " +
		"CAST(COALESCE(SUM(tax_amount), 0) AS TEXT) as total_tax, " +
		"CAST(COALESCE(SUM(grand_total), 0) AS TEXT) as total_grand").
		Scan(&header).Error; err != nil {
		return out, fmt.Errorf("failed to query sales totals: %w", err)
	}

	var profit struct {
		TotalProfit string
	}
	db = billRange(GetDB(ctx, r.db).Table("bill_items").Joins("JOIN bills ON bills.id = bill_items.bill_id"), from, to)
	if err := db.Select("CAST(COALESCE(SUM(bill_items.unit_profit * bill_items.quantity), 0) AS TEXT) as total_profit").
		Scan(&profit).Error; err != nil {
		return out, fmt.Errorf("failed to query profit: %w", err)
	}

	out.BillCount = header.BillCount
	for _, f := range []struct {
		raw string
		dst *money.Money
	}{
		{header.TotalSales, &out.TotalSales},
		{header.TotalTax, &out.TotalTax},
		{header.TotalGrand, &out.TotalGrand},
		{profit.TotalProfit, &out.TotalProfit},
	} {
		if f.raw == "" {
			continue
		}
		m, err := money.Parse(f.raw)
		if err != nil {
			return out, err
		}
		*f.dst = m
	}
	return out, nil
}

func (r *reportRepository) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	db := billRange(GetDB(ctx, r.db).Table("bill_items").Joins("JOIN bills ON bills.id = bill_items.bill_id"), from, to)
	if err := db.
		Select("bill_items.product_id as product_id, MAX(bill_items.product_name) as product_name, SUM(bill_items.quantity) as total_quantity, SUM(bill_items.line_subtotal) as total_value").
		Group("bill_items.product_id").
		Order("total_quantity DESC").Order("bill_items.product_id").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}
