package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storepos/internal/model"
	"storepos/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

type harness struct {
	store    *memStore
	receipts *fakeReceipts
	events   *fakePublisher
	engine   *Engine
}

func newHarness(products ...model.Product) *harness {
	h := &harness{
		store:    newMemStore(products...),
		receipts: &fakeReceipts{},
		events:   &fakePublisher{},
	}
	h.engine = NewEngine(Deps{
		Tx:        h.store,
		Catalog:   h.store,
		Customers: h.store,
		Bills:     billStore{h.store},
		Ledger:    h.store,
		Audit:     h.store,
		Receipts:  h.receipts,
		Events:    h.events,
	}, Options{SearchLimit: 10, ReorderLevel: 10, Now: func() time.Time { return fixedNow }})
	return h
}

func newCustomerOp(cmds ...Command) *queueOperator {
	return &queueOperator{
		phones:    []string{"9876543210"},
		customers: [][2]string{{"Asha", "12 Market Road"}},
		cmds:      cmds,
	}
}

func TestCheckoutCommitsSingleLine(t *testing.T) {
	h := newHarness(product(1, "Basmati Rice", "50.00", 20, "18.00"))
	cashier := uuid.New()
	op := newCustomerOp(AddItem(1, 3), Finalize())

	res, err := h.engine.Checkout(context.Background(), op, &cashier)
	require.NoError(t, err)

	bill := res.Bill
	assert.Equal(t, "150.00", bill.Subtotal.String())
	assert.Equal(t, "27.00", bill.TaxAmount.String())
	assert.Equal(t, "177.00", bill.GrandTotal.String())
	assert.Equal(t, "INV-2026-000001", res.Invoice)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), bill.BillDate)
	assert.Equal(t, &cashier, bill.CashierID)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, "Basmati Rice", bill.Items[0].ProductName)
	assert.Equal(t, "150.00", bill.Items[0].LineSubtotal.String())
	require.NotNil(t, bill.Customer)
	assert.Equal(t, "9876543210", bill.Customer.Phone)

	assert.Equal(t, 17, h.store.quantity(1))
	require.Len(t, h.store.ledger, 1)
	assert.Equal(t, model.TxTypeOut, h.store.ledger[0].TransactionType)
	assert.Equal(t, -3, h.store.ledger[0].QuantityChanged)
	assert.Equal(t, 17, h.store.ledger[0].StockAfter)
	assert.Equal(t, bill.ID, *h.store.ledger[0].BillID)
	require.Len(t, h.store.audit, 1)
	assert.Equal(t, model.ActionCreateBill, h.store.audit[0].Action)
	assert.Equal(t, "INV-2026-000001", h.store.audit[0].EntityName)

	assert.Equal(t, []string{"INV-2026-000001"}, h.receipts.invoices)
	assert.Equal(t, "receipts/INV-2026-000001.txt", res.ReceiptPath)
	assert.Equal(t, []string{"bill_committed"}, h.events.names())
	assert.Equal(t, EventCommitted, op.last().Kind)
	assert.Equal(t, StateCommitted, op.last().State)
}

func TestStockDecreasesByExactlyQuantity(t *testing.T) {
	for q := 1; q <= 7; q++ {
		h := newHarness(product(4, "Sugar", "0.10", 7, "5.00"))
		res, err := h.engine.Checkout(context.Background(), newCustomerOp(AddItem(4, q), Finalize()), nil)
		require.NoError(t, err)

		assert.Equal(t, 7-q, h.store.quantity(4))
		want := money.MustParse("0.10").MulInt(int64(q))
		assert.True(t, res.Bill.Items[0].LineSubtotal.Equal(want), "q=%d got %s", q, res.Bill.Items[0].LineSubtotal.Exact())
	}
}

func TestPhoneIsRepromptedUntilValid(t *testing.T) {
	h := newHarness()
	op := newCustomerOp(Finalize())
	op.phones = []string{"12345", "98765abcde", " 9876543210 "}

	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)

	rejections := op.rejections()
	require.Len(t, rejections, 2)
	for _, r := range rejections {
		assert.ErrorIs(t, r, ErrValidation)
	}
	assert.Equal(t, "9876543210", res.Bill.Customer.Phone)
	assert.Equal(t, "Asha", res.Bill.Customer.Name)
}

func TestExistingCustomerIsReused(t *testing.T) {
	h := newHarness()
	h.store.customers["9876543210"] = &model.Customer{ID: 42, Phone: "9876543210", Name: "Ravi"}
	op := newCustomerOp(Finalize())

	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.Bill.CustomerID)
	assert.Len(t, op.customers, 1, "name and address are only asked for new customers")
	for _, ev := range op.events {
		if ev.Kind == EventCustomerResolved {
			assert.False(t, ev.Created)
		}
	}
}

func TestNewCustomerNameIsValidated(t *testing.T) {
	h := newHarness()
	op := newCustomerOp(Finalize())
	op.customers = [][2]string{{"  ", ""}, {"Meena", ""}}

	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)

	require.Len(t, op.rejections(), 1)
	assert.ErrorIs(t, op.rejections()[0], ErrValidation)
	assert.Equal(t, "Meena", res.Bill.Customer.Name)
}

func TestDuplicateCustomerRaceIsRecovered(t *testing.T) {
	h := newHarness()
	h.store.raceCustomer = &model.Customer{Phone: "9876543210", Name: "Other Session"}
	op := newCustomerOp(Finalize())

	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)

	require.Len(t, op.rejections(), 1)
	assert.ErrorIs(t, op.rejections()[0], ErrIntegrity)
	assert.Equal(t, "Other Session", res.Bill.Customer.Name)
	assert.Len(t, h.store.customers, 1)
}

func TestInsufficientStockBoundary(t *testing.T) {
	h := newHarness(product(2, "Olive Oil", "12.50", 5, "12.00"))
	op := newCustomerOp(AddItem(2, 6))

	// The operator runs out of input right after the rejection, which aborts.
	_, err := h.engine.Checkout(context.Background(), op, nil)
	require.ErrorIs(t, err, errNoInput)

	require.Len(t, op.rejections(), 1)
	assert.ErrorIs(t, op.rejections()[0], ErrInsufficientStock)
	assert.Equal(t, 5, h.store.quantity(2))

	op = newCustomerOp(AddItem(2, 6), AddItem(2, 5), Finalize())
	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)
	assert.Len(t, res.Bill.Items, 1)
	assert.Equal(t, 0, h.store.quantity(2))
}

func TestRecoverableInputKeepsCartOpen(t *testing.T) {
	h := newHarness(
		product(1, "Milk", "1.20", 30, "5.00"),
		product(2, "Milkshake Powder", "4.00", 8, "12.00"),
	)
	op := newCustomerOp(
		AddItem(1, 0),
		AddItem(1, -2),
		AddItem(0, 1),
		AddItem(999, 1),
		Search("  "),
		Search("milk"),
		Command{Kind: CommandKind(99)},
		AddItem(1, 2),
		Finalize(),
	)

	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)

	rejections := op.rejections()
	require.Len(t, rejections, 6)
	assert.ErrorIs(t, rejections[0], ErrValidation)
	assert.ErrorIs(t, rejections[1], ErrValidation)
	assert.ErrorIs(t, rejections[2], ErrValidation)
	assert.ErrorIs(t, rejections[3], ErrNotFound)
	assert.ErrorIs(t, rejections[4], ErrValidation)
	assert.ErrorIs(t, rejections[5], ErrValidation)

	var matches []model.Product
	for _, ev := range op.events {
		if ev.Kind == EventSearchResults {
			matches = ev.Matches
		}
	}
	assert.Len(t, matches, 2)

	require.Len(t, res.Bill.Items, 1)
	assert.Equal(t, "2.40", res.Bill.Subtotal.String())
	assert.Equal(t, "0.12", res.Bill.TaxAmount.String())
	assert.Equal(t, "2.52", res.Bill.GrandTotal.String())
}

func TestEmptyCartCommitsZeroBill(t *testing.T) {
	h := newHarness(product(1, "Milk", "1.20", 30, "5.00"))
	res, err := h.engine.Checkout(context.Background(), newCustomerOp(Finalize()), nil)
	require.NoError(t, err)

	assert.Empty(t, res.Bill.Items)
	assert.Equal(t, "0.00", res.Bill.Subtotal.String())
	assert.Equal(t, "0.00", res.Bill.TaxAmount.String())
	assert.Equal(t, "0.00", res.Bill.GrandTotal.String())
	assert.Empty(t, h.store.ledger)
	assert.Len(t, h.receipts.invoices, 1)
}

func TestSameProductTwiceRecordsRunningStock(t *testing.T) {
	h := newHarness(product(3, "Eggs", "0.25", 24, "0.00"))
	res, err := h.engine.Checkout(context.Background(), newCustomerOp(AddItem(3, 6), AddItem(3, 12), Finalize()), nil)
	require.NoError(t, err)

	require.Len(t, res.Bill.Items, 2)
	assert.Equal(t, 1, res.Bill.Items[0].Position)
	assert.Equal(t, 2, res.Bill.Items[1].Position)
	require.Len(t, h.store.ledger, 2)
	assert.Equal(t, 18, h.store.ledger[0].StockAfter)
	assert.Equal(t, 6, h.store.ledger[1].StockAfter)
	assert.Equal(t, "4.50", res.Bill.GrandTotal.String())
}

func TestAbortRollsBackEveryDecrement(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*memStore)
		cmds    []Command
		wantErr error
	}{
		{
			name:    "operator cancel",
			cmds:    []Command{AddItem(1, 2), AddItem(2, 1), Cancel()},
			wantErr: ErrCancelled,
		},
		{
			name:    "bill insert fails",
			setup:   func(s *memStore) { s.failBillCreate = errors.New("disk full") },
			cmds:    []Command{AddItem(1, 2), AddItem(2, 1), Finalize()},
			wantErr: ErrPersistence,
		},
		{
			name:    "commit fails",
			setup:   func(s *memStore) { s.failCommit = errors.New("connection lost") },
			cmds:    []Command{AddItem(1, 2), AddItem(2, 1), Finalize()},
			wantErr: ErrPersistence,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(product(1, "Tea", "3.00", 10, "5.00"), product(2, "Coffee", "7.00", 4, "12.00"))
			if tt.setup != nil {
				tt.setup(h.store)
			}
			op := newCustomerOp(tt.cmds...)

			res, err := h.engine.Checkout(context.Background(), op, nil)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)

			assert.Equal(t, 10, h.store.quantity(1))
			assert.Equal(t, 4, h.store.quantity(2))
			assert.Empty(t, h.store.bills)
			assert.Empty(t, h.store.ledger)
			assert.Empty(t, h.store.audit)
			assert.Empty(t, h.receipts.invoices)
			assert.Empty(t, h.events.names())
			assert.Equal(t, EventAborted, op.last().Kind)
			assert.Equal(t, StateAborted, op.last().State)
			// The customer write is outside the bill and survives.
			assert.Len(t, h.store.customers, 1)
		})
	}
}

func TestCancelledContextAborts(t *testing.T) {
	h := newHarness(product(1, "Tea", "3.00", 10, "5.00"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.engine.Checkout(ctx, newCustomerOp(AddItem(1, 1), Finalize()), nil)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 10, h.store.quantity(1))
}

func TestReceiptFailureDoesNotUndoSale(t *testing.T) {
	h := newHarness(product(1, "Tea", "3.00", 10, "5.00"))
	h.receipts.fail = errors.New("permission denied")
	op := newCustomerOp(AddItem(1, 1), Finalize())

	res, err := h.engine.Checkout(context.Background(), op, nil)
	require.NoError(t, err)

	assert.EqualError(t, res.ReceiptErr, "permission denied")
	assert.Empty(t, res.ReceiptPath)
	assert.Len(t, h.store.bills, 1)
	assert.Equal(t, 9, h.store.quantity(1))

	var kinds []EventKind
	for _, ev := range op.events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, EventReceiptFailed)
	assert.Equal(t, EventCommitted, op.last().Kind)
}

func TestLowStockIsPublished(t *testing.T) {
	h := newHarness(product(1, "Tea", "3.00", 12, "5.00"), product(2, "Coffee", "7.00", 40, "12.00"))
	res, err := h.engine.Checkout(context.Background(), newCustomerOp(AddItem(2, 1), AddItem(1, 3), Finalize()), nil)
	require.NoError(t, err)

	require.Len(t, res.LowStock, 1)
	assert.Equal(t, int64(1), res.LowStock[0].ID)
	assert.Equal(t, 9, res.LowStock[0].Quantity)
	assert.Equal(t, []string{"bill_committed", "stock_low"}, h.events.names())
}

func TestConcurrentCheckoutsCannotOversell(t *testing.T) {
	h := newHarness(product(9, "Last Mango", "2.00", 1, "5.00"))

	scripts := []*Script{
		NewScript("9000000001", "First", "", []ScriptLine{{ProductID: 9, Quantity: 1}}),
		NewScript("9000000002", "Second", "", []ScriptLine{{ProductID: 9, Quantity: 1}}),
	}
	results := make([]*Result, len(scripts))
	errs := make([]error, len(scripts))

	var wg sync.WaitGroup
	for i := range scripts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.engine.Checkout(context.Background(), scripts[i], nil)
		}(i)
	}
	wg.Wait()

	sold, rejected := 0, 0
	for i := range scripts {
		require.NoError(t, errs[i])
		sold += len(results[i].Bill.Items)
		for _, r := range scripts[i].Rejections {
			assert.ErrorIs(t, r.Err, ErrInsufficientStock)
			rejected++
		}
	}
	assert.Equal(t, 1, sold)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, h.store.quantity(9))
}
