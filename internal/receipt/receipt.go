// Package receipt renders committed bills as write-once text files named by
// invoice number.
package receipt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"storepos/internal/model"
	"storepos/internal/money"
)

// ErrReceiptExists means a receipt for the invoice was already written.
var ErrReceiptExists = errors.New("receipt already exists")

const (
	nameWidth  = 25
	dateLayout = "2006-01-02"
)

type Renderer struct {
	Dir    string
	Seller string
}

func NewRenderer(dir, seller string) *Renderer {
	return &Renderer{Dir: dir, Seller: seller}
}

// Path is where the receipt for invoice lives.
func (r *Renderer) Path(invoice string) string {
	return filepath.Join(r.Dir, invoice+".txt")
}

// Write creates the receipt file. It never overwrites an existing one.
func (r *Renderer) Write(bill *model.Bill, invoice string) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}
	path := r.Path(invoice)
	if err := createOnce(path, func(w io.Writer) error {
		return r.Render(w, bill, invoice)
	}); err != nil {
		return "", err
	}
	return path, nil
}

// createOnce writes a new file with fill. A partial file is removed so a
// failed write never leaves something that looks like a finished receipt.
func createOnce(path string, fill func(w io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrReceiptExists, path)
		}
		return fmt.Errorf("open receipt: %w", err)
	}

	if err := fill(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write receipt: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("sync receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close receipt: %w", err)
	}
	return nil
}

// Render writes the receipt text. The bill is only read.
func (r *Renderer) Render(w io.Writer, bill *model.Bill, invoice string) error {
	bw := bufio.NewWriter(w)

	customerName, phone := "", ""
	if bill.Customer != nil {
		customerName, phone = bill.Customer.Name, bill.Customer.Phone
	}

	fmt.Fprintf(bw, "%s RECEIPT\n", strings.ToUpper(r.seller()))
	fmt.Fprintf(bw, "Invoice: %s\n", invoice)
	fmt.Fprintf(bw, "Date: %s\n", bill.BillDate.Format(dateLayout))
	fmt.Fprintf(bw, "Customer: %s  Phone: %s\n", customerName, phone)
	fmt.Fprintf(bw, "\nItems:\n")
	fmt.Fprintf(bw, "%-8s%-25s%-6s%-10s%-8s%s\n", "P_ID", "Name", "Qty", "Price", "Tax%", "Line")
	for _, it := range bill.Items {
		fmt.Fprintf(bw, "%-8d%-25s%-6d%-10s%-8s%s\n",
			it.ProductID, fit(it.ProductName, nameWidth-1), it.Quantity,
			it.UnitPrice.String(), it.TaxRate.String(), it.LineSubtotal.String())
	}
	fmt.Fprintf(bw, "\n")
	fmt.Fprintf(bw, "%s%s\n", subtotalLabel, bill.Subtotal.String())
	fmt.Fprintf(bw, "%s%s\n", taxLabel, bill.TaxAmount.String())
	fmt.Fprintf(bw, "%s%s\n", grandTotalLabel, bill.GrandTotal.String())

	return bw.Flush()
}

func (r *Renderer) seller() string {
	if r.Seller == "" {
		return "GROCERY SHOP"
	}
	return r.Seller
}

// fit truncates s to at most n runes.
func fit(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

const (
	invoiceLabel    = "Invoice: "
	subtotalLabel   = "Subtotal: "
	taxLabel        = "GST: "
	grandTotalLabel = "Grand Total: "
)

// Summary is what ParseSummary recovers from a receipt.
type Summary struct {
	Invoice    string
	Subtotal   money.Money
	Tax        money.Money
	GrandTotal money.Money
}

// ParseSummary reads the invoice number and totals back from receipt text.
func ParseSummary(r io.Reader) (Summary, error) {
	var s Summary
	found := map[string]bool{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := sc.Text()
		var dst *money.Money
		var label string
		switch {
		case strings.HasPrefix(text, invoiceLabel):
			s.Invoice = strings.TrimPrefix(text, invoiceLabel)
			found[invoiceLabel] = true
			continue
		case strings.HasPrefix(text, subtotalLabel):
			dst, label = &s.Subtotal, subtotalLabel
		case strings.HasPrefix(text, taxLabel):
			dst, label = &s.Tax, taxLabel
		case strings.HasPrefix(text, grandTotalLabel):
			dst, label = &s.GrandTotal, grandTotalLabel
		default:
			continue
		}
		m, err := money.Parse(strings.TrimSpace(strings.TrimPrefix(text, label)))
		if err != nil {
			return s, fmt.Errorf("parse %q: %w", strings.TrimSpace(label), err)
		}
		*dst = m
		found[label] = true
	}
	if err := sc.Err(); err != nil {
		return s, err
	}
	for _, label := range []string{invoiceLabel, subtotalLabel, taxLabel, grandTotalLabel} {
		if !found[label] {
			return s, fmt.Errorf("receipt has no %q line", strings.TrimSpace(label))
		}
	}
	return s, nil
}
