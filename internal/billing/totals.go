package billing

import (
	"fmt"
	"time"

	"storepos/internal/model"
	"storepos/internal/money"
)

// Totals are the quantized amounts written on a bill header.
type Totals struct {
	Subtotal   money.Money
	Tax        money.Money
	GrandTotal money.Money
}

// LineTax is the unrounded tax on one line.
func LineTax(item model.BillItem) money.Money {
	return item.LineSubtotal.Percent(item.TaxRate)
}

// ComputeTotals sums exact line tax and rounds it once. Rounding each line and
// then summing can drift by a cent and is never done here.
func ComputeTotals(items []model.BillItem) Totals {
	lines := make([]money.Money, 0, len(items))
	taxes := make([]money.Money, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.LineSubtotal)
		taxes = append(taxes, LineTax(it))
	}
	subtotal := money.Sum(lines...).Quantize()
	tax := money.Sum(taxes...).Quantize()
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: money.Sum(subtotal, tax),
	}
}

// NewLine snapshots a locked product into a bill line.
func NewLine(position int, p *model.Product, quantity int) model.BillItem {
	return model.BillItem{
		Position:     position,
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     quantity,
		UnitPrice:    p.Price,
		TaxRate:      p.TaxRate,
		LineSubtotal: p.Price.MulInt(int64(quantity)),
		UnitProfit:   p.UnitProfit,
	}
}

// InvoiceNumber is INV-<year>-<id>, the id zero padded to six digits.
func InvoiceNumber(billDate time.Time, billID int64) string {
	return fmt.Sprintf("INV-%d-%06d", billDate.Year(), billID)
}

// ValidPhone accepts exactly ten ASCII digits.
func ValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}
