// Package billing runs a checkout: resolve the customer, build a cart under
// row locks, then commit the bill and its stock decrements as one transaction.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"storepos/internal/model"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Catalog is the subset of the product store a checkout needs.
type Catalog interface {
	FindByIDForUpdate(ctx context.Context, id int64) (*model.Product, error)
	DecrementQuantity(ctx context.Context, id int64, amount int) (int, error)
	Search(ctx context.Context, pattern string, limit int) ([]model.Product, error)
}

// Directory looks customers up by phone and creates unseen ones.
type Directory interface {
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
}

type BillStore interface {
	Create(ctx context.Context, bill *model.Bill) error
}

type Ledger interface {
	CreateBatch(ctx context.Context, txs []model.InventoryTransaction) error
}

type Auditor interface {
	Log(ctx context.Context, entry *model.AuditLog) error
}

// ReceiptWriter persists the receipt of a committed bill and returns where it went.
type ReceiptWriter interface {
	Write(bill *model.Bill, invoice string) (string, error)
}

// Publisher broadcasts engine events to listeners such as the websocket hub.
type Publisher interface {
	Publish(event string, data map[string]interface{})
}

// Deps are the collaborators a checkout drives. Receipts and Events are optional.
type Deps struct {
	Tx        repository.TransactionManager
	Catalog   Catalog
	Customers Directory
	Bills     BillStore
	Ledger    Ledger
	Audit     Auditor
	Receipts  ReceiptWriter
	Events    Publisher
}

// Options tune an Engine.
type Options struct {
	SearchLimit  int
	ReorderLevel int
	Now          func() time.Time
}

// Result describes a committed checkout.
type Result struct {
	Bill        *model.Bill
	Invoice     string
	ReceiptPath string
	ReceiptErr  error
	LowStock    []model.Product
}

type Engine struct {
	deps Deps
	opts Options
}

func NewEngine(deps Deps, opts Options) *Engine {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{deps: deps, opts: opts}
}

// session is the mutable state of one checkout.
type session struct {
	op       Operator
	state    State
	cashier  *uuid.UUID
	customer *model.Customer
	items    []model.BillItem
	after    []int
	stock    map[int64]int
	products map[int64]model.Product
}

func (s *session) notify(ev Event) {
	ev.State = s.state
	s.op.Notify(ev)
}

func (s *session) reject(err error) {
	s.notify(Event{Kind: EventRejected, Err: err})
}

// Checkout runs one session to a terminal state. A nil error means the bill
// committed; the receipt may still have failed, see Result.ReceiptErr.
func (e *Engine) Checkout(ctx context.Context, op Operator, cashierID *uuid.UUID) (*Result, error) {
	s := &session{
		op:       op,
		state:    StateAwaitingCustomer,
		cashier:  cashierID,
		stock:    make(map[int64]int),
		products: make(map[int64]model.Product),
	}

	if err := e.resolveCustomer(ctx, s); err != nil {
		return nil, e.abort(s, err)
	}

	var bill *model.Bill
	var fnErr error
	err := e.deps.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		bill, fnErr = e.buildCart(txCtx, s)
		return fnErr
	})
	if err != nil {
		if fnErr == nil {
			err = fmt.Errorf("%w: commit bill: %v", ErrPersistence, err)
		}
		return nil, e.abort(s, err)
	}

	return e.commit(s, bill), nil
}

func (e *Engine) abort(s *session, err error) error {
	s.state = StateAborted
	log.Printf("Checkout aborted: %v", err)
	s.notify(Event{Kind: EventAborted, Err: err})
	return err
}

// resolveCustomer loops until a valid phone is given and the customer exists.
// Directory writes use a detached context so they commit on their own.
func (e *Engine) resolveCustomer(ctx context.Context, s *session) error {
	dctx := repository.Detach(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		phone, err := s.op.Phone(ctx)
		if err != nil {
			return err
		}
		phone = strings.TrimSpace(phone)
		if !ValidPhone(phone) {
			s.reject(fmt.Errorf("%w: phone number must be exactly 10 digits", ErrValidation))
			continue
		}

		c, err := e.deps.Customers.FindByPhone(dctx, phone)
		switch {
		case err == nil:
			s.customer = c
			s.state = StateBuildingCart
			s.notify(Event{Kind: EventCustomerResolved, Customer: c})
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: find customer: %v", ErrPersistence, err)
		}

		c, created, err := e.createCustomer(dctx, s, phone)
		if err != nil {
			return err
		}
		s.customer = c
		s.state = StateBuildingCart
		s.notify(Event{Kind: EventCustomerResolved, Customer: c, Created: created})
		return nil
	}
}

func (e *Engine) createCustomer(ctx context.Context, s *session, phone string) (*model.Customer, bool, error) {
	for {
		name, address, err := s.op.NewCustomer(ctx, phone)
		if err != nil {
			return nil, false, err
		}
		c := &model.Customer{Phone: phone, Name: strings.TrimSpace(name), Address: strings.TrimSpace(address)}
		if err := ValidateCustomer(c); err != nil {
			s.reject(err)
			continue
		}

		err = e.deps.Customers.Create(ctx, c)
		if err == nil {
			return c, true, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, false, fmt.Errorf("%w: create customer: %v", ErrPersistence, err)
		}

		// Another session created the same phone first.
		s.reject(fmt.Errorf("%w: customer %s was created concurrently, using existing record", ErrIntegrity, phone))
		existing, err := e.deps.Customers.FindByPhone(ctx, phone)
		if err != nil {
			return nil, false, fmt.Errorf("%w: re-read customer: %v", ErrPersistence, err)
		}
		return existing, false, nil
	}
}

// ValidateCustomer checks the fields a new customer record needs.
func ValidateCustomer(c *model.Customer) error {
	if !ValidPhone(c.Phone) {
		return fmt.Errorf("%w: phone number must be exactly 10 digits", ErrValidation)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if utf8.RuneCountInString(c.Name) > 50 {
		return fmt.Errorf("%w: customer name exceeds 50 characters", ErrValidation)
	}
	if utf8.RuneCountInString(c.Address) > 100 {
		return fmt.Errorf("%w: address exceeds 100 characters", ErrValidation)
	}
	return nil
}

// buildCart consumes operator commands inside the bill transaction until the
// cart is finalized or the session ends.
func (e *Engine) buildCart(ctx context.Context, s *session) (*model.Bill, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		cmd, err := s.op.Next(ctx)
		if err != nil {
			return nil, err
		}

		switch cmd.Kind {
		case CmdAddItem:
			if err := e.addItem(ctx, s, cmd.ProductID, cmd.Quantity); err != nil {
				if !Recoverable(err) {
					return nil, err
				}
				s.reject(err)
			}
		case CmdSearch:
			term := strings.TrimSpace(cmd.Term)
			if term == "" {
				s.reject(fmt.Errorf("%w: search term is empty", ErrValidation))
				continue
			}
			matches, err := e.deps.Catalog.Search(ctx, term, e.opts.SearchLimit)
			if err != nil {
				return nil, fmt.Errorf("%w: search products: %v", ErrPersistence, err)
			}
			s.notify(Event{Kind: EventSearchResults, Matches: matches})
		case CmdFinalize:
			s.state = StateFinalizing
			return e.finalize(ctx, s)
		case CmdCancel:
			return nil, ErrCancelled
		default:
			s.reject(fmt.Errorf("%w: unknown command", ErrValidation))
		}
	}
}

func (e *Engine) addItem(ctx context.Context, s *session, productID int64, quantity int) error {
	if productID <= 0 {
		return fmt.Errorf("%w: product id must be a positive integer", ErrValidation)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	p, err := e.deps.Catalog.FindByIDForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return fmt.Errorf("%w: lock product %d: %v", ErrPersistence, productID, err)
	}
	if quantity > p.Quantity {
		return fmt.Errorf("%w: product %d has %d left, requested %d", ErrInsufficientStock, productID, p.Quantity, quantity)
	}

	after, err := e.deps.Catalog.DecrementQuantity(ctx, productID, quantity)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
		}
		return fmt.Errorf("%w: decrement product %d: %v", ErrPersistence, productID, err)
	}

	line := NewLine(len(s.items)+1, p, quantity)
	s.items = append(s.items, line)
	s.after = append(s.after, after)
	s.stock[productID] = after
	s.products[productID] = *p
	s.notify(Event{Kind: EventItemAdded, Line: &line, Stock: after})
	return nil
}

func (e *Engine) finalize(ctx context.Context, s *session) (*model.Bill, error) {
	totals := ComputeTotals(s.items)
	now := e.opts.Now()
	bill := &model.Bill{
		CustomerID: s.customer.ID,
		CashierID:  s.cashier,
		BillDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Subtotal:   totals.Subtotal,
		TaxAmount:  totals.Tax,
		GrandTotal: totals.GrandTotal,
		Items:      s.items,
	}
	if err := e.deps.Bills.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("%w: save bill: %v", ErrPersistence, err)
	}

	entries := make([]model.InventoryTransaction, 0, len(bill.Items))
	for i, it := range bill.Items {
		entries = append(entries, model.InventoryTransaction{
			ProductID:       it.ProductID,
			BillID:          &bill.ID,
			TransactionType: model.TxTypeOut,
			QuantityChanged: -it.Quantity,
			StockAfter:      s.after[i],
		})
	}
	if err := e.deps.Ledger.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("%w: record stock ledger: %v", ErrPersistence, err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"customer_id": bill.CustomerID,
		"items":       len(bill.Items),
		"subtotal":    bill.Subtotal,
		"tax_amount":  bill.TaxAmount,
		"grand_total": bill.GrandTotal,
	})
	entry := &model.AuditLog{
		UserID:     s.cashier,
		Action:     model.ActionCreateBill,
		EntityID:   strconv.FormatInt(bill.ID, 10),
		EntityName: InvoiceNumber(bill.BillDate, bill.ID),
		Details:    datatypes.JSON(details),
	}
	if err := e.deps.Audit.Log(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: write audit log: %v", ErrPersistence, err)
	}
	return bill, nil
}

// commit runs after the transaction is durable. Nothing here can undo the sale.
func (e *Engine) commit(s *session, bill *model.Bill) *Result {
	s.state = StateCommitted
	bill.Customer = s.customer
	res := &Result{Bill: bill, Invoice: InvoiceNumber(bill.BillDate, bill.ID)}

	if e.deps.Receipts != nil {
		path, err := e.deps.Receipts.Write(bill, res.Invoice)
		if err != nil {
			log.Printf("Receipt for %s not written: %v", res.Invoice, err)
			res.ReceiptErr = err
			s.notify(Event{Kind: EventReceiptFailed, Err: err, Result: res})
		}
		res.ReceiptPath = path
	}

	for id, after := range s.stock {
		if after <= e.opts.ReorderLevel {
			p := s.products[id]
			p.Quantity = after
			res.LowStock = append(res.LowStock, p)
		}
	}
	sort.Slice(res.LowStock, func(i, j int) bool { return res.LowStock[i].ID < res.LowStock[j].ID })

	log.Printf("Bill %s committed: %d lines, grand total %s", res.Invoice, len(bill.Items), bill.GrandTotal)
	e.publish(res)
	s.notify(Event{Kind: EventCommitted, Result: res})
	return res
}

func (e *Engine) publish(res *Result) {
	if e.deps.Events == nil {
		return
	}
	e.deps.Events.Publish("bill_committed", map[string]interface{}{
		"bill_id":     res.Bill.ID,
		"invoice":     res.Invoice,
		"grand_total": res.Bill.GrandTotal,
		"items":       len(res.Bill.Items),
	})
	for _, p := range res.LowStock {
		e.deps.Events.Publish("stock_low", map[string]interface{}{
			"product_id": p.ID,
			"name":       p.Name,
			"quantity":   p.Quantity,
		})
	}
}
