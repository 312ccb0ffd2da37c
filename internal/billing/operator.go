package billing

import (
	"context"

	"storepos/internal/model"
)

// CommandKind selects what a cart command does.
type CommandKind int

const (
	CmdAddItem CommandKind = iota + 1
	CmdSearch
	CmdFinalize
	CmdCancel
)

// Command is one operator input while the cart is open.
type Command struct {
	Kind      CommandKind
	ProductID int64
	Quantity  int
	Term      string
}

func AddItem(productID int64, quantity int) Command {
	return Command{Kind: CmdAddItem, ProductID: productID, Quantity: quantity}
}

func Search(term string) Command { return Command{Kind: CmdSearch, Term: term} }

func Finalize() Command { return Command{Kind: CmdFinalize} }

func Cancel() Command { return Command{Kind: CmdCancel} }

// EventKind tells the operator what happened.
type EventKind int

const (
	EventRejected EventKind = iota + 1
	EventCustomerResolved
	EventItemAdded
	EventSearchResults
	EventCommitted
	EventReceiptFailed
	EventAborted
)

// Event is pushed to the operator after every step. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind     EventKind
	State    State
	Err      error
	Customer *model.Customer
	Created  bool
	Line     *model.BillItem
	Stock    int
	Matches  []model.Product
	Result   *Result
}

// Operator supplies input to a checkout and receives its feedback. Returning an
// error from Phone, NewCustomer or Next aborts the checkout.
type Operator interface {
	Phone(ctx context.Context) (string, error)
	NewCustomer(ctx context.Context, phone string) (name, address string, err error)
	Next(ctx context.Context) (Command, error)
	Notify(ev Event)
}
