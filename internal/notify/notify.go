// Package notify delivers reorder requests to suppliers.
package notify

import (
	"context"
	"fmt"
	"log"
)

// Notice is a reorder request addressed to one supplier.
type Notice struct {
	StoreName     string
	ProductID     int64
	ProductName   string
	Quantity      int
	Supplier      string
	SupplierPhone string
}

// Message is the text sent to the supplier.
func (n Notice) Message() string {
	supplier := n.Supplier
	if supplier == "" {
		supplier = "supplier"
	}
	return fmt.Sprintf("Hello %s, %s requests a restock of %s (product %d). Current stock: %d.",
		supplier, n.StoreName, n.ProductName, n.ProductID, n.Quantity)
}

// SupplierNotifier sends a Notice over some channel.
type SupplierNotifier interface {
	Channel() string
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the process log. It is used when no SMS
// provider is configured.
type LogNotifier struct{}

func (LogNotifier) Channel() string { return "log" }

func (LogNotifier) Notify(ctx context.Context, n Notice) error {
	log.Printf("Reorder notice to %s <%s>: %s", n.Supplier, n.SupplierPhone, n.Message())
	return nil
}
