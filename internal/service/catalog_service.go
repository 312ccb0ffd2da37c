package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"storepos/internal/billing"
	"storepos/internal/model"
	"storepos/internal/money"
	"storepos/internal/repository"

	"github.com/google/uuid"
)

// DTOs
type CreateProductRequest struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name" binding:"required"`
	Price         money.Money  `json:"price"`
	Quantity      int          `json:"quantity"`
	TaxRate       *money.Money `json:"tax_rate"`
	UnitProfit    money.Money  `json:"unit_profit"`
	Brand         string       `json:"brand"`
	Supplier      string       `json:"supplier"`
	SupplierPhone string       `json:"supplier_phone"`
}

type UpdateProductRequest struct {
	Name          *string      `json:"name"`
	Price         *money.Money `json:"price"`
	TaxRate       *money.Money `json:"tax_rate"`
	UnitProfit    *money.Money `json:"unit_profit"`
	Brand         *string      `json:"brand"`
	Supplier      *string      `json:"supplier"`
	SupplierPhone *string      `json:"supplier_phone"`
}

type CatalogService interface {
	ListProducts(ctx context.Context, page, limit int) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	SearchProducts(ctx context.Context, pattern string) ([]model.Product, error)
	CreateProduct(ctx context.Context, actor *uuid.UUID, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor *uuid.UUID, id int64, req UpdateProductRequest) (*model.Product, error)
	SetQuantity(ctx context.Context, actor *uuid.UUID, id int64, quantity int) (*model.Product, error)
	Restock(ctx context.Context, actor *uuid.UUID, id int64, amount int) (*model.Product, error)
	StockHistory(ctx context.Context, id int64, limit int) ([]model.InventoryTransaction, error)
}

type catalogService struct {
	productRepo    repository.ProductRepository
	ledgerRepo     repository.InventoryTxRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	events         billing.Publisher
	searchLimit    int
	defaultTaxRate money.Money
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	ledgerRepo repository.InventoryTxRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events billing.Publisher,
	searchLimit int,
	defaultTaxRate money.Money,
) CatalogService {
	return &catalogService{
		productRepo:    productRepo,
		ledgerRepo:     ledgerRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		events:         events,
		searchLimit:    searchLimit,
		defaultTaxRate: defaultTaxRate,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.List(ctx, page, limit)
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) SearchProducts(ctx context.Context, pattern string) ([]model.Product, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%w: search term is empty", ErrInvalidInput)
	}
	return s.productRepo.Search(ctx, pattern, s.searchLimit)
}

func validateProduct(p *model.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case utf8.RuneCountInString(p.Name) > 100:
		return fmt.Errorf("%w: product name exceeds 100 characters", ErrInvalidInput)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	case p.TaxRate.IsNegative() || p.TaxRate.Cmp(money.FromInt(100)) > 0:
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, actor *uuid.UUID, req CreateProductRequest) (*model.Product, error) {
	if req.ID < 0 {
		return nil, fmt.Errorf("%w: product id must be positive", ErrInvalidInput)
	}
	rate := s.defaultTaxRate
	if req.TaxRate != nil {
		rate = *req.TaxRate
	}
	product := model.Product{
		ID:            req.ID,
		Name:          strings.TrimSpace(req.Name),
		Price:         req.Price,
		Quantity:      req.Quantity,
		TaxRate:       rate,
		UnitProfit:    req.UnitProfit,
		Brand:         strings.TrimSpace(req.Brand),
		Supplier:      strings.TrimSpace(req.Supplier),
		SupplierPhone: strings.TrimSpace(req.SupplierPhone),
	}
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		if product.Quantity > 0 {
			entry := &model.InventoryTransaction{
				ProductID:       product.ID,
				TransactionType: model.TxTypeIn,
				QuantityChanged: product.Quantity,
				StockAfter:      product.Quantity,
			}
			if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
				return fmt.Errorf("failed to record inventory transaction: %w", err)
			}
		}
		audit := newAudit(actor, model.ActionCreateProduct, strconv.FormatInt(product.ID, 10), product.Name, req)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor *uuid.UUID, id int64, req UpdateProductRequest) (*model.Product, error) {
	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.productRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			product.Name = strings.TrimSpace(*req.Name)
		}
		if req.Price != nil {
			product.Price = *req.Price
		}
		if req.TaxRate != nil {
			product.TaxRate = *req.TaxRate
		}
		if req.UnitProfit != nil {
			product.UnitProfit = *req.UnitProfit
		}
		if req.Brand != nil {
			product.Brand = strings.TrimSpace(*req.Brand)
		}
		if req.Supplier != nil {
			product.Supplier = strings.TrimSpace(*req.Supplier)
		}
		if req.SupplierPhone != nil {
			product.SupplierPhone = strings.TrimSpace(*req.SupplierPhone)
		}
		if err := validateProduct(product); err != nil {
			return err
		}
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		audit := newAudit(actor, model.ActionUpdateProduct, strconv.FormatInt(product.ID, 10), product.Name, req)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// SetQuantity overwrites the stock count, recording the difference as an adjustment.
func (s *catalogService) SetQuantity(ctx context.Context, actor *uuid.UUID, id int64, quantity int) (*model.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.productRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		before := product.Quantity
		if err := s.productRepo.SetQuantity(txCtx, id, quantity); err != nil {
			return fmt.Errorf("failed to set quantity: %w", err)
		}
		product.Quantity = quantity

		entry := &model.InventoryTransaction{
			ProductID:       id,
			TransactionType: model.TxTypeAdjust,
			QuantityChanged: quantity - before,
			StockAfter:      quantity,
		}
		if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record inventory transaction: %w", err)
		}
		audit := newAudit(actor, model.ActionAdjustStock, strconv.FormatInt(id, 10), product.Name,
			map[string]int{"before": before, "after": quantity})
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) Restock(ctx context.Context, actor *uuid.UUID, id int64, amount int) (*model.Product, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: restock amount must be positive", ErrInvalidInput)
	}
	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		product, err = s.productRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		after, err := s.productRepo.IncrementQuantity(txCtx, id, amount)
		if err != nil {
			return fmt.Errorf("failed to restock: %w", err)
		}
		product.Quantity = after

		entry := &model.InventoryTransaction{
			ProductID:       id,
			TransactionType: model.TxTypeIn,
			QuantityChanged: amount,
			StockAfter:      after,
		}
		if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record inventory transaction: %w", err)
		}
		audit := newAudit(actor, model.ActionRestockProduct, strconv.FormatInt(id, 10), product.Name,
			map[string]int{"added": amount, "after": after})
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishRestock(s.events, product, amount)
	return product, nil
}

func (s *catalogService) StockHistory(ctx context.Context, id int64, limit int) ([]model.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByProduct(ctx, id, limit)
}

func publishRestock(events billing.Publisher, p *model.Product, added int) {
	if events == nil {
		return
	}
	events.Publish("stock_restocked", map[string]interface{}{
		"product_id": p.ID,
		"name":       p.Name,
		"added":      added,
		"quantity":   p.Quantity,
	})
}
