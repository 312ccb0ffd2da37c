package terminal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storepos/internal/billing"
	"storepos/internal/model"
	"storepos/internal/money"
	"storepos/internal/service"
)

// MaxLoginAttempts is how many tries the login gate allows.
const MaxLoginAttempts = 3

// ErrLoginFailed means every login attempt was used up.
var ErrLoginFailed = errors.New("login failed")

const listPageSize = 50

// Deps are the services the menus call.
type Deps struct {
	Checkout  service.Checkouter
	Users     service.UserService
	Catalog   service.CatalogService
	Customers service.CustomerService
	Reports   service.ReportService
	Reorders  service.ReorderService
	Audit     service.AuditService
}

// Terminal is one logged-in console session.
type Terminal struct {
	con  *Console
	deps Deps
	user *model.User
}

func New(con *Console, deps Deps) *Terminal {
	return &Terminal{con: con, deps: deps}
}

type menuEntry struct {
	key   string
	label string
	cap   model.Capability
	run   func(ctx context.Context) error
}

func (t *Terminal) entries() []menuEntry {
	return []menuEntry{
		{"1", "Generate Bill", model.CapBillingCheckout, t.generateBill},
		{"2", "Check Stock", model.CapCatalogRead, t.checkStock},
		{"3", "Search Products", model.CapCatalogRead, t.searchProducts},
		{"4", "Check Customer Info", model.CapCustomersRead, t.customerInfo},
		{"5", "Update Customer Info", model.CapCustomersWrite, t.updateCustomer},
		{"6", "Insert New Product", model.CapCatalogWrite, t.insertProduct},
		{"7", "Restock Product", model.CapCatalogWrite, t.restockProduct},
		{"8", "Check Reorder Level", model.CapReordersManage, t.checkReorder},
		{"9", "Check Total Profits", model.CapReportsRead, t.totalProfits},
		{"10", "Manage Users", model.CapUsersManage, t.manageUsers},
		{"11", "Audit Log", model.CapAuditRead, t.auditLog},
	}
}

// Login asks for credentials up to MaxLoginAttempts times.
func (t *Terminal) Login(ctx context.Context) (*model.User, error) {
	t.con.Println("Login Required")
	for i := 0; i < MaxLoginAttempts; i++ {
		username, err := t.con.Prompt(ctx, "Username: ")
		if err != nil {
			return nil, err
		}
		password, err := t.con.Prompt(ctx, "Password: ")
		if err != nil {
			return nil, err
		}

		user, err := t.deps.Users.Authenticate(ctx, username, password)
		switch {
		case err == nil:
			t.user = user
			t.con.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
			return user, nil
		case errors.Is(err, service.ErrInvalidCredentials):
			t.con.Println("Invalid credentials.")
		case errors.Is(err, service.ErrAccountDisabled):
			t.con.Println("Account inactive.")
		default:
			return nil, err
		}
	}
	return nil, ErrLoginFailed
}

// EnsureOwner asks for the first owner account when no user exists yet.
func (t *Terminal) EnsureOwner(ctx context.Context) error {
	_, total, err := t.deps.Users.ListUsers(ctx, 1, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	t.con.Println("No users found. Create the owner account.")
	var username, password string
	for username == "" {
		if username, err = t.con.Prompt(ctx, "Set owner username: "); err != nil {
			return err
		}
	}
	for len(password) < 6 {
		if password, err = t.con.Prompt(ctx, "Set owner password (min 6 chars): "); err != nil {
			return err
		}
	}
	if _, err := t.deps.Users.EnsureOwner(ctx, username, password); err != nil {
		return err
	}
	t.con.Println("Owner account created.")
	return nil
}

// Run logs in and serves the main menu until the operator exits or input ends.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.EnsureOwner(ctx); err != nil {
		return err
	}
	if _, err := t.Login(ctx); err != nil {
		return err
	}

	for {
		allowed := t.allowedEntries()
		t.con.Println("\nMain Menu")
		for _, e := range allowed {
			t.con.Printf("%s. %s\n", e.key, e.label)
		}
		t.con.Println("e. Exit")

		choice, err := t.con.Prompt(ctx, "Enter your choice: ")
		if err != nil {
			return err
		}
		if c := strings.ToLower(choice); c == "e" || c == "exit" {
			t.con.Println("Exiting...")
			return nil
		}

		entry, ok := find(allowed, choice)
		if !ok {
			t.con.Println("Incorrect Command.")
			continue
		}
		if err := entry.run(ctx); err != nil {
			if errors.Is(err, ErrClosed) || ctx.Err() != nil {
				return err
			}
			t.con.Printf("Error: %v\n", err)
		}
	}
}

func (t *Terminal) allowedEntries() []menuEntry {
	var out []menuEntry
	for _, e := range t.entries() {
		if t.user != nil && t.user.Role.Can(e.cap) {
			out = append(out, e)
		}
	}
	return out
}

func find(entries []menuEntry, key string) (menuEntry, bool) {
	for _, e := range entries {
		if e.key == key {
			return e, true
		}
	}
	return menuEntry{}, false
}

func (t *Terminal) generateBill(ctx context.Context) error {
	t.con.Println("Making Bills")
	_, err := t.deps.Checkout.Checkout(ctx, NewOperator(t.con), &t.user.ID)
	if err != nil && (errors.Is(err, ErrClosed) || ctx.Err() != nil) {
		return err
	}
	// the operator has already shown the outcome
	return nil
}

func (t *Terminal) checkStock(ctx context.Context) error {
	t.con.Println("Checking Stocks")
	var all []model.Product
	for page := 1; ; page++ {
		products, total, err := t.deps.Catalog.ListProducts(ctx, page, listPageSize)
		if err != nil {
			return err
		}
		all = append(all, products...)
		if len(products) == 0 || int64(len(all)) >= total {
			break
		}
	}
	if len(all) == 0 {
		t.con.Println("No products in stock.")
		return nil
	}
	productTable(t.con, all)
	return nil
}

func (t *Terminal) searchProducts(ctx context.Context) error {
	term, err := t.con.Prompt(ctx, "Search text: ")
	if err != nil {
		return err
	}
	products, err := t.deps.Catalog.SearchProducts(ctx, term)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		t.con.Println("No products match.")
		return nil
	}
	productTable(t.con, products)
	return nil
}

func customerTable(con *Console, customers []model.Customer) {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Phone, c.Address})
	}
	con.Table([]string{"ID", "Name", "Phone", "Address"}, rows)
}

func (t *Terminal) customerInfo(ctx context.Context) error {
	phone, err := t.con.Prompt(ctx, "Enter phone number (blank for all): ")
	if err != nil {
		return err
	}
	if phone != "" {
		c, err := t.deps.Customers.FindByPhone(ctx, phone)
		if err != nil {
			return err
		}
		customerTable(t.con, []model.Customer{*c})
		return nil
	}
	customers, total, err := t.deps.Customers.ListCustomers(ctx, 1, listPageSize, "")
	if err != nil {
		return err
	}
	customerTable(t.con, customers)
	if total > int64(len(customers)) {
		t.con.Printf("Showing %d of %d customers.\n", len(customers), total)
	}
	return nil
}

func (t *Terminal) lookupCustomer(ctx context.Context, identifier string) (*model.Customer, error) {
	if billing.ValidPhone(identifier) {
		return t.deps.Customers.FindByPhone(ctx, identifier)
	}
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: enter a customer id or a 10-digit phone number", service.ErrInvalidInput)
	}
	return t.deps.Customers.GetCustomer(ctx, id)
}

func (t *Terminal) updateCustomer(ctx context.Context) error {
	choice, err := t.con.Prompt(ctx, "What to update? (1 name, 2 address, 3 phone): ")
	if err != nil {
		return err
	}
	if choice != "1" && choice != "2" && choice != "3" {
		t.con.Println("Invalid choice.")
		return nil
	}
	identifier, err := t.con.Prompt(ctx, "Enter customer ID or phone number: ")
	if err != nil {
		return err
	}
	c, err := t.lookupCustomer(ctx, identifier)
	if err != nil {
		return err
	}

	var req service.UpdateCustomerRequest
	var value string
	switch choice {
	case "1":
		value, err = t.con.Prompt(ctx, "Enter the new name: ")
		req.Name = &value
	case "2":
		value, err = t.con.Prompt(ctx, "Enter new address: ")
		req.Address = &value
	case "3":
		value, err = t.con.Prompt(ctx, "Enter new phone number (10 digits): ")
		req.Phone = &value
	}
	if err != nil {
		return err
	}

	updated, err := t.deps.Customers.UpdateCustomer(ctx, &t.user.ID, c.ID, req)
	if err != nil {
		return err
	}
	t.con.Printf("Customer %d updated.\n", updated.ID)
	return nil
}

// promptMoney asks until the reply is a non-negative amount. Blank returns
// nil when optional.
func (t *Terminal) promptMoney(ctx context.Context, label string, optional bool) (*money.Money, error) {
	for {
		raw, err := t.con.Prompt(ctx, label)
		if err != nil {
			return nil, err
		}
		if raw == "" && optional {
			return nil, nil
		}
		m, err := money.Parse(raw)
		if err == nil && !m.IsNegative() {
			return &m, nil
		}
		t.con.Println("Please enter a non-negative amount, e.g. 49.99.")
	}
}

func (t *Terminal) insertProduct(ctx context.Context) error {
	var req service.CreateProductRequest
	var err error
	if req.Name, err = t.con.Prompt(ctx, "Enter product name: "); err != nil {
		return err
	}
	price, err := t.promptMoney(ctx, "Enter price: ", false)
	if err != nil {
		return err
	}
	req.Price = *price
	if req.Quantity, err = t.con.PromptInt(ctx, "Enter quantity: "); err != nil {
		return err
	}
	if req.Brand, err = t.con.Prompt(ctx, "Enter brand: "); err != nil {
		return err
	}
	if req.Supplier, err = t.con.Prompt(ctx, "Enter supplier: "); err != nil {
		return err
	}
	if req.SupplierPhone, err = t.con.Prompt(ctx, "Enter supplier phone: "); err != nil {
		return err
	}
	profit, err := t.promptMoney(ctx, "Enter profit amount per unit: ", false)
	if err != nil {
		return err
	}
	req.UnitProfit = *profit
	if req.TaxRate, err = t.promptMoney(ctx, "Enter tax rate % (blank for default): ", true); err != nil {
		return err
	}

	p, err := t.deps.Catalog.CreateProduct(ctx, &t.user.ID, req)
	if err != nil {
		return err
	}
	t.con.Printf("Product %d (%s) added.\n", p.ID, p.Name)
	return nil
}

func (t *Terminal) restockProduct(ctx context.Context) error {
	id, err := t.con.PromptInt(ctx, "Enter product ID: ")
	if err != nil {
		return err
	}
	amount, err := t.con.PromptInt(ctx, "Enter quantity received: ")
	if err != nil {
		return err
	}
	p, err := t.deps.Catalog.Restock(ctx, &t.user.ID, int64(id), amount)
	if err != nil {
		return err
	}
	t.con.Printf("%s now has %d in stock.\n", p.Name, p.Quantity)
	return nil
}

// checkReorder opens requests for low stock, then walks the pending ones so
// the operator can record deliveries.
func (t *Terminal) checkReorder(ctx context.Context) error {
	created, err := t.deps.Reorders.ScanReorderLevels(ctx)
	if err != nil {
		return err
	}
	for _, rr := range created {
		if rr.NotifyError != "" {
			t.con.Printf("Reorder for product %d opened, supplier not reached: %s\n", rr.ProductID, rr.NotifyError)
			continue
		}
		t.con.Printf("Reorder for product %d opened, %s notified via %s\n", rr.ProductID, rr.Supplier, rr.NotifiedVia)
	}

	pending, _, err := t.deps.Reorders.List(ctx, 1, listPageSize, model.ReorderPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		t.con.Println("No products need reordering.")
		return nil
	}

	for _, rr := range pending {
		name := strconv.FormatInt(rr.ProductID, 10)
		if rr.Product != nil {
			name = rr.Product.Name
		}
		received, err := t.con.Confirm(ctx, fmt.Sprintf("Have the items for %s been restocked?", name))
		if err != nil {
			return err
		}
		if received {
			qty, err := t.con.PromptInt(ctx, "Enter the quantity restocked: ")
			if err != nil {
				return err
			}
			if _, err := t.deps.Reorders.Confirm(ctx, &t.user.ID, rr.ID, qty); err != nil {
				t.con.Printf("Error: %v\n", err)
				continue
			}
			t.con.Println("Stock updated.")
			continue
		}
		cancel, err := t.con.Confirm(ctx, "Cancel this reorder request?")
		if err != nil {
			return err
		}
		if cancel {
			if _, err := t.deps.Reorders.Cancel(ctx, &t.user.ID, rr.ID); err != nil {
				t.con.Printf("Error: %v\n", err)
				continue
			}
			t.con.Println("Reorder cancelled.")
		}
	}
	return nil
}

func (t *Terminal) totalProfits(ctx context.Context) error {
	report, err := t.deps.Reports.SalesReport(ctx, nil, nil, 5)
	if err != nil {
		return err
	}
	t.con.Printf("Bills: %d\n", report.BillCount)
	t.con.Printf("Total Sales: %s\nTotal Tax: %s\nTotal Collected: %s\nTotal Profit: %s\n",
		report.TotalSales, report.TotalTax, report.TotalGrand, report.TotalProfit)
	if len(report.TopProducts) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(report.TopProducts))
	for _, r := range report.TopProducts {
		rows = append(rows, []string{strconv.FormatInt(r.ProductID, 10), r.ProductName, strconv.Itoa(r.TotalQuantity), r.TotalValue.String()})
	}
	t.con.Println("Top products:")
	t.con.Table([]string{"ID", "Name", "Sold", "Value"}, rows)
	return nil
}

func (t *Terminal) manageUsers(ctx context.Context) error {
	t.con.Println("1. Add user")
	t.con.Println("2. Disable user")
	choice, err := t.con.Prompt(ctx, "Choose: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		var req service.CreateUserRequest
		if req.Username, err = t.con.Prompt(ctx, "Username: "); err != nil {
			return err
		}
		if req.Role, err = t.con.Prompt(ctx, "Role (owner/manager/cashier): "); err != nil {
			return err
		}
		if req.Password, err = t.con.Prompt(ctx, "Password: "); err != nil {
			return err
		}
		u, err := t.deps.Users.CreateUser(ctx, &t.user.ID, req)
		if err != nil {
			return err
		}
		t.con.Printf("User %s created as %s.\n", u.Username, u.Role)
	case "2":
		username, err := t.con.Prompt(ctx, "Username to disable: ")
		if err != nil {
			return err
		}
		users, _, err := t.deps.Users.ListUsers(ctx, 1, 100)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Username == username {
				if err := t.deps.Users.DisableUser(ctx, &t.user.ID, u.ID); err != nil {
					return err
				}
				t.con.Printf("User %s disabled.\n", username)
				return nil
			}
		}
		t.con.Println("User not found.")
	default:
		t.con.Println("Invalid choice.")
	}
	return nil
}

func (t *Terminal) auditLog(ctx context.Context) error {
	logs, _, err := t.deps.Audit.GetAuditLogs(ctx, 1, 20, "")
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []string{l.CreatedAt, l.Username, l.Action, l.EntityName})
	}
	t.con.Table([]string{"When", "User", "Action", "Entity"}, rows)
	return nil
}
