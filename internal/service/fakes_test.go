package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"storepos/internal/model"
	"storepos/internal/notify"
	"storepos/internal/repository"

	"github.com/google/uuid"
)

// memDB holds the rows behind the fake repositories below.
type memDB struct {
	mu        sync.Mutex
	products  map[int64]*model.Product
	customers map[int64]*model.Customer
	users     map[uuid.UUID]*model.User
	reorders  map[uuid.UUID]*model.ReorderRequest
	bills     map[int64]*model.Bill
	ledger    []model.InventoryTransaction
	audit     []*model.AuditLog
	nextID    int64
}

func newMemDB() *memDB {
	return &memDB{
		products:  map[int64]*model.Product{},
		customers: map[int64]*model.Customer{},
		users:     map[uuid.UUID]*model.User{},
		reorders:  map[uuid.UUID]*model.ReorderRequest{},
		bills:     map[int64]*model.Bill{},
	}
}

func (m *memDB) actions() []string {
	var out []string
	for _, a := range m.audit {
		out = append(out, a.Action)
	}
	return out
}

// RunInTx restores product quantities and drops ledger and audit rows on error.
func (m *memDB) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.mu.Lock()
	qty := map[int64]int{}
	for id, p := range m.products {
		qty[id] = p.Quantity
	}
	ledger, audit := len(m.ledger), len(m.audit)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		for id, q := range qty {
			m.products[id].Quantity = q
		}
		m.ledger = m.ledger[:ledger]
		m.audit = m.audit[:audit]
		m.mu.Unlock()
		return err
	}
	return nil
}

type productFake struct{ db *memDB }

func (f productFake) Create(ctx context.Context, p *model.Product) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if p.ID == 0 {
		f.db.nextID++
		p.ID = f.db.nextID + 1000
	}
	if _, ok := f.db.products[p.ID]; ok {
		return repository.ErrDuplicate
	}
	cp := *p
	f.db.products[p.ID] = &cp
	return nil
}

func (f productFake) Update(ctx context.Context, p *model.Product) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cur, ok := f.db.products[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	qty := cur.Quantity
	*cur = *p
	cur.Quantity = qty
	return nil
}

func (f productFake) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f productFake) FindByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return f.FindByID(ctx, id)
}

func (f productFake) DecrementQuantity(ctx context.Context, id int64, amount int) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if p.Quantity < amount {
		return 0, repository.ErrInsufficientStock
	}
	p.Quantity -= amount
	return p.Quantity, nil
}

func (f productFake) IncrementQuantity(ctx context.Context, id int64, amount int) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	p.Quantity += amount
	return p.Quantity, nil
}

func (f productFake) SetQuantity(ctx context.Context, id int64, quantity int) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Quantity = quantity
	return nil
}

func (f productFake) Search(ctx context.Context, pattern string, limit int) ([]model.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Product
	for _, p := range f.db.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(strings.TrimSpace(pattern))) {
			out = append(out, *p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f productFake) List(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Product
	for _, p := range f.db.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f productFake) ListAtOrBelow(ctx context.Context, level int) ([]model.Product, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Product
	for _, p := range f.db.products {
		if p.Quantity <= level {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f productFake) Count(ctx context.Context) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return int64(len(f.db.products)), nil
}

type ledgerFake struct{ db *memDB }

func (f ledgerFake) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.ledger = append(f.db.ledger, *tx)
	return nil
}

func (f ledgerFake) CreateBatch(ctx context.Context, txs []model.InventoryTransaction) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.ledger = append(f.db.ledger, txs...)
	return nil
}

func (f ledgerFake) ListByProduct(ctx context.Context, productID int64, limit int) ([]model.InventoryTransaction, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.InventoryTransaction
	for i := len(f.db.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if f.db.ledger[i].ProductID == productID {
			out = append(out, f.db.ledger[i])
		}
	}
	return out, nil
}

type auditFake struct{ db *memDB }

func (f auditFake) Log(ctx context.Context, entry *model.AuditLog) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	entry.ID = uuid.New()
	f.db.audit = append(f.db.audit, entry)
	return nil
}

func (f auditFake) List(ctx context.Context, page, limit int, action string) ([]model.AuditLog, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.AuditLog
	for _, a := range f.db.audit {
		if action == "" || a.Action == action {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

type customerFake struct{ db *memDB }

func (f customerFake) Create(ctx context.Context, c *model.Customer) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.customers {
		if other.Phone == c.Phone {
			return repository.ErrDuplicate
		}
	}
	f.db.nextID++
	c.ID = f.db.nextID
	cp := *c
	f.db.customers[c.ID] = &cp
	return nil
}

func (f customerFake) Update(ctx context.Context, c *model.Customer) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for id, other := range f.db.customers {
		if id != c.ID && other.Phone == c.Phone {
			return repository.ErrDuplicate
		}
	}
	cp := *c
	f.db.customers[c.ID] = &cp
	return nil
}

func (f customerFake) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f customerFake) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.customers {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f customerFake) List(ctx context.Context, page, limit int, search string) ([]model.Customer, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Customer
	for _, c := range f.db.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

type userFake struct{ db *memDB }

func (f userFake) Create(ctx context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, other := range f.db.users {
		if other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.db.users[u.ID] = &cp
	return nil
}

func (f userFake) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f userFake) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f userFake) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.User
	for _, u := range f.db.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f userFake) Count(ctx context.Context) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return int64(len(f.db.users)), nil
}

func (f userFake) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = active
	return nil
}

type reorderFake struct{ db *memDB }

func (f reorderFake) Create(ctx context.Context, r *model.ReorderRequest) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r.ID = uuid.New()
	cp := *r
	cp.Product = nil
	f.db.reorders[r.ID] = &cp
	return nil
}

func (f reorderFake) Update(ctx context.Context, r *model.ReorderRequest) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *r
	cp.Product = nil
	f.db.reorders[r.ID] = &cp
	return nil
}

func (f reorderFake) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.reorders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f reorderFake) OpenProductIDs(ctx context.Context) (map[int64]bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	open := map[int64]bool{}
	for _, r := range f.db.reorders {
		if r.Status == model.ReorderPending {
			open[r.ProductID] = true
		}
	}
	return open, nil
}

func (f reorderFake) List(ctx context.Context, page, limit int, status string) ([]model.ReorderRequest, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.ReorderRequest
	for _, r := range f.db.reorders {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

type billFake struct{ db *memDB }

func (f billFake) Create(ctx context.Context, b *model.Bill) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.nextID++
	b.ID = f.db.nextID
	f.db.bills[b.ID] = b
	return nil
}

func (f billFake) FindByID(ctx context.Context, id int64) (*model.Bill, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bills[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (f billFake) List(ctx context.Context, page, limit int, customerID int64) ([]model.Bill, int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Bill
	for _, b := range f.db.bills {
		if customerID == 0 || b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	fail    map[int64]error
	notices []notify.Notice
}

func (f *fakeNotifier) Channel() string { return "fake" }

func (f *fakeNotifier) Notify(ctx context.Context, n notify.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[n.ProductID]; err != nil {
		return err
	}
	f.notices = append(f.notices, n)
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	events []string
	data   []map[string]interface{}
}

func (e *eventLog) Publish(event string, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	e.data = append(e.data, data)
}
