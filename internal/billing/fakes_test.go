package billing

import (
	"context"
	"errors"
	"strings"
	"sync"

	"storepos/internal/model"
	"storepos/internal/money"
	"storepos/internal/repository"
)

// memStore backs every collaborator with maps. Transactions are serialized,
// which stands in for row locks, and rolled back by restoring a snapshot.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products  map[int64]*model.Product
	customers map[string]*model.Customer
	bills     []*model.Bill
	ledger    []model.InventoryTransaction
	audit     []*model.AuditLog

	nextBill     int64
	nextCustomer int64

	failBillCreate error
	failCommit     error
	// raceCustomer is inserted just before the first Create, as if another
	// session won the race for the same phone.
	raceCustomer *model.Customer
}

func newMemStore(products ...model.Product) *memStore {
	s := &memStore{
		products:  make(map[int64]*model.Product),
		customers: make(map[string]*model.Customer),
	}
	for i := range products {
		p := products[i]
		s.products[p.ID] = &p
	}
	return s
}

type snapshot struct {
	quantities map[int64]int
	bills      int
	ledger     int
	audit      int
	nextBill   int64
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{quantities: make(map[int64]int), bills: len(s.bills), ledger: len(s.ledger), audit: len(s.audit), nextBill: s.nextBill}
	for id, p := range s.products {
		snap.quantities[id] = p.Quantity
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, q := range snap.quantities {
		s.products[id].Quantity = q
	}
	s.bills = s.bills[:snap.bills]
	s.ledger = s.ledger[:snap.ledger]
	s.audit = s.audit[:snap.audit]
	s.nextBill = snap.nextBill
}

func (s *memStore) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	if s.failCommit != nil {
		s.restore(snap)
		return s.failCommit
	}
	return nil
}

func (s *memStore) quantity(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *memStore) FindByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) DecrementQuantity(ctx context.Context, id int64, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if p.Quantity < amount {
		return 0, repository.ErrInsufficientStock
	}
	p.Quantity -= amount
	return p.Quantity, nil
}

func (s *memStore) Search(ctx context.Context, pattern string, limit int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(pattern)) {
			out = append(out, *p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[phone]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) Create(ctx context.Context, c *model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceCustomer != nil {
		s.nextCustomer++
		rc := *s.raceCustomer
		rc.ID = s.nextCustomer
		s.customers[rc.Phone] = &rc
		s.raceCustomer = nil
	}
	if _, ok := s.customers[c.Phone]; ok {
		return repository.ErrDuplicate
	}
	s.nextCustomer++
	c.ID = s.nextCustomer
	cp := *c
	s.customers[c.Phone] = &cp
	return nil
}

// billStore adapts memStore to BillStore; Create is taken by the directory.
type billStore struct{ s *memStore }

func (b billStore) Create(ctx context.Context, bill *model.Bill) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.failBillCreate != nil {
		return b.s.failBillCreate
	}
	b.s.nextBill++
	bill.ID = b.s.nextBill
	for i := range bill.Items {
		bill.Items[i].ID = int64(i + 1)
		bill.Items[i].BillID = bill.ID
	}
	b.s.bills = append(b.s.bills, bill)
	return nil
}

func (s *memStore) CreateBatch(ctx context.Context, txs []model.InventoryTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = append(s.ledger, txs...)
	return nil
}

func (s *memStore) Log(ctx context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

type fakeReceipts struct {
	mu       sync.Mutex
	fail     error
	invoices []string
}

func (f *fakeReceipts) Write(bill *model.Bill, invoice string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	f.invoices = append(f.invoices, invoice)
	return "receipts/" + invoice + ".txt", nil
}

type published struct {
	event string
	data  map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(event string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{event, data})
}

func (f *fakePublisher) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.event)
	}
	return out
}

var errNoInput = errors.New("operator has no more input")

// queueOperator feeds prepared answers and records every event.
type queueOperator struct {
	phones    []string
	customers [][2]string
	cmds      []Command
	events    []Event
}

func (q *queueOperator) Phone(ctx context.Context) (string, error) {
	if len(q.phones) == 0 {
		return "", errNoInput
	}
	p := q.phones[0]
	q.phones = q.phones[1:]
	return p, nil
}

func (q *queueOperator) NewCustomer(ctx context.Context, phone string) (string, string, error) {
	if len(q.customers) == 0 {
		return "", "", errNoInput
	}
	c := q.customers[0]
	q.customers = q.customers[1:]
	return c[0], c[1], nil
}

func (q *queueOperator) Next(ctx context.Context) (Command, error) {
	if len(q.cmds) == 0 {
		return Command{}, errNoInput
	}
	c := q.cmds[0]
	q.cmds = q.cmds[1:]
	return c, nil
}

func (q *queueOperator) Notify(ev Event) { q.events = append(q.events, ev) }

func (q *queueOperator) rejections() []error {
	var out []error
	for _, ev := range q.events {
		if ev.Kind == EventRejected {
			out = append(out, ev.Err)
		}
	}
	return out
}

func (q *queueOperator) last() Event { return q.events[len(q.events)-1] }

func product(id int64, name, price string, qty int, rate string) model.Product {
	return model.Product{
		ID:         id,
		Name:       name,
		Price:      money.MustParse(price),
		Quantity:   qty,
		TaxRate:    money.MustParse(rate),
		UnitProfit: money.MustParse("1.00"),
	}
}
