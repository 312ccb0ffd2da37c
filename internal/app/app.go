// Package app wires repositories, the billing engine and services together so
// the API server and the terminal share one composition.
package app

import (
	"context"
	"log"

	"storepos/internal/billing"
	"storepos/internal/config"
	"storepos/internal/database"
	"storepos/internal/notify"
	"storepos/internal/receipt"
	"storepos/internal/repository"
	"storepos/internal/service"

	"gorm.io/gorm"
)

type Repositories struct {
	Tx        repository.TransactionManager
	Products  repository.ProductRepository
	Customers repository.CustomerRepository
	Bills     repository.BillRepository
	Ledger    repository.InventoryTxRepository
	Audit     repository.AuditRepository
	Users     repository.UserRepository
	Reorders  repository.ReorderRepository
	Reports   repository.ReportRepository
}

type Services struct {
	Users     service.UserService
	Catalog   service.CatalogService
	Customers service.CustomerService
	Checkout  service.CheckoutService
	Reports   service.ReportService
	Reorders  service.ReorderService
	Audit     service.AuditService
}

type App struct {
	Config   config.Config
	Repos    Repositories
	Engine   *billing.Engine
	Receipts *receipt.Renderer
	Services Services
}

// New builds the object graph. events may be nil when nobody listens.
func New(cfg config.Config, db *gorm.DB, events billing.Publisher) *App {
	repos := Repositories{
		Tx:        repository.NewTransactionManager(db),
		Products:  repository.NewProductRepository(db),
		Customers: repository.NewCustomerRepository(db),
		Bills:     repository.NewBillRepository(db),
		Ledger:    repository.NewInventoryTxRepository(db),
		Audit:     repository.NewAuditRepository(db),
		Users:     repository.NewUserRepository(db),
		Reorders:  repository.NewReorderRepository(db),
		Reports:   repository.NewReportRepository(db),
	}

	receipts := receipt.NewRenderer(cfg.ReceiptDir, cfg.StoreName)
	deps := billing.Deps{
		Tx:        repos.Tx,
		Catalog:   repos.Products,
		Customers: repos.Customers,
		Bills:     repos.Bills,
		Ledger:    repos.Ledger,
		Audit:     repos.Audit,
		Receipts:  receipts,
		Events:    events,
	}
	engine := billing.NewEngine(deps, billing.Options{
		SearchLimit:  cfg.SearchLimit,
		ReorderLevel: cfg.ReorderLevel,
	})

	notifier := notify.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	log.Printf("Supplier notifications via %s", notifier.Channel())

	svc := Services{
		Users:     service.NewUserService(repos.Users, repos.Audit, cfg.Secret()),
		Catalog:   service.NewCatalogService(repos.Products, repos.Ledger, repos.Audit, repos.Tx, events, cfg.SearchLimit, cfg.DefaultTaxRate),
		Customers: service.NewCustomerService(repos.Customers, repos.Audit, repos.Tx),
		Checkout:  service.NewCheckoutService(engine, repos.Bills, receipts),
		Reports:   service.NewReportService(repos.Reports),
		Reorders: service.NewReorderService(
			repos.Products, repos.Reorders, repos.Ledger, repos.Audit, repos.Tx,
			notifier, events, cfg.ReorderLevel, cfg.StoreName,
		),
		Audit: service.NewAuditService(repos.Audit),
	}

	return &App{Config: cfg, Repos: repos, Engine: engine, Receipts: receipts, Services: svc}
}

// Bootstrap creates the first owner account and the sample catalog when configured.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.Config.OwnerPassword != "" {
		if _, err := a.Services.Users.EnsureOwner(ctx, a.Config.OwnerUsername, a.Config.OwnerPassword); err != nil {
			return err
		}
	}
	if a.Config.SeedSampleData {
		if _, err := database.SeedSampleData(ctx, a.Repos.Tx, a.Repos.Products, a.Repos.Ledger, a.Config.DefaultTaxRate); err != nil {
			return err
		}
	}
	return nil
}
