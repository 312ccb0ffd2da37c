package terminal

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"storepos/internal/billing"
	"storepos/internal/model"
)

// Operator drives one checkout from the console.
type Operator struct {
	con *Console
}

func NewOperator(con *Console) *Operator {
	return &Operator{con: con}
}

func (o *Operator) Phone(ctx context.Context) (string, error) {
	return o.con.Prompt(ctx, "Enter Phone no. of Customer: ")
}

func (o *Operator) NewCustomer(ctx context.Context, phone string) (string, string, error) {
	name, err := o.con.Prompt(ctx, "Enter Name of Customer: ")
	if err != nil {
		return "", "", err
	}
	address, err := o.con.Prompt(ctx, "Enter Address of Customer: ")
	if err != nil {
		return "", "", err
	}
	return name, address, nil
}

// Next reads a product id (followed by a quantity), a search term, or e/c to
// finalize or cancel. A quantity that is not a number is passed on as zero so
// the engine reports it.
func (o *Operator) Next(ctx context.Context) (billing.Command, error) {
	for {
		raw, err := o.con.Prompt(ctx, "Enter product ID or search text (e=finalize, c=cancel): ")
		if err != nil {
			return billing.Command{}, err
		}
		switch strings.ToLower(raw) {
		case "":
			continue
		case "e", "exit":
			return billing.Finalize(), nil
		case "c", "cancel":
			return billing.Cancel(), nil
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return billing.Search(raw), nil
		}
		qtyRaw, err := o.con.Prompt(ctx, "Enter quantity: ")
		if err != nil {
			return billing.Command{}, err
		}
		qty, _ := strconv.Atoi(qtyRaw)
		return billing.AddItem(id, qty), nil
	}
}

func (o *Operator) Notify(ev billing.Event) {
	switch ev.Kind {
	case billing.EventRejected:
		o.con.Printf("%s\n", rejectionText(ev.Err))
	case billing.EventCustomerResolved:
		if ev.Created {
			o.con.Println("Customer Information Added")
		} else {
			o.con.Printf("Welcome back, %s!\n", ev.Customer.Name)
		}
	case billing.EventItemAdded:
		o.con.Printf("Added %d x %s -> line total %s (%d left)\n",
			ev.Line.Quantity, ev.Line.ProductName, ev.Line.LineSubtotal, ev.Stock)
	case billing.EventSearchResults:
		if len(ev.Matches) == 0 {
			o.con.Println("No products match.")
			return
		}
		productTable(o.con, ev.Matches)
	case billing.EventReceiptFailed:
		o.con.Printf("Receipt could not be written: %v\n", ev.Err)
	case billing.EventCommitted:
		res := ev.Result
		o.con.Printf("\nBill %s saved\n", res.Invoice)
		o.con.Printf("Customer: %s (%s)\n", res.Bill.Customer.Name, res.Bill.Customer.Phone)
		o.con.Printf("Date: %s\n", res.Bill.BillDate.Format("2006-01-02"))
		o.con.Printf("Subtotal: %s\nGST: %s\nGrand Total: %s\n", res.Bill.Subtotal, res.Bill.TaxAmount, res.Bill.GrandTotal)
		if res.ReceiptPath != "" && res.ReceiptErr == nil {
			o.con.Printf("Receipt saved to %s\n", res.ReceiptPath)
		}
		for _, p := range res.LowStock {
			o.con.Printf("Low stock: %s has %d left\n", p.Name, p.Quantity)
		}
	case billing.EventAborted:
		if errors.Is(ev.Err, billing.ErrCancelled) {
			o.con.Println("Bill cancelled. Stock was not changed.")
			return
		}
		o.con.Printf("Bill aborted: %v. Stock was not changed.\n", ev.Err)
	}
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, billing.ErrInsufficientStock):
		return "Insufficient stock: " + err.Error()
	case errors.Is(err, billing.ErrNotFound):
		return "Product not found: " + err.Error()
	default:
		return err.Error()
	}
}

func productTable(con *Console, products []model.Product) {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), p.Name, p.Brand, p.Price.String(), strconv.Itoa(p.Quantity),
		})
	}
	con.Table([]string{"ID", "Name", "Brand", "Price", "Qty"}, rows)
}
