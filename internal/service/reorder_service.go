package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"storepos/internal/billing"
	"storepos/internal/model"
	"storepos/internal/notify"
	"storepos/internal/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ReorderService turns low stock into supplier notifications that are later
// confirmed with the received quantity or cancelled.
type ReorderService interface {
	ScanReorderLevels(ctx context.Context) ([]model.ReorderRequest, error)
	Confirm(ctx context.Context, actor *uuid.UUID, id uuid.UUID, received int) (*model.ReorderRequest, error)
	Cancel(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*model.ReorderRequest, error)
	List(ctx context.Context, page, limit int, status string) ([]model.ReorderRequest, int64, error)
	StartScheduler(schedule string) (*cron.Cron, error)
}

type reorderService struct {
	productRepo  repository.ProductRepository
	reorderRepo  repository.ReorderRepository
	ledgerRepo   repository.InventoryTxRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     notify.SupplierNotifier
	events       billing.Publisher
	reorderLevel int
	storeName    string
	now          func() time.Time
}

func NewReorderService(
	productRepo repository.ProductRepository,
	reorderRepo repository.ReorderRepository,
	ledgerRepo repository.InventoryTxRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier notify.SupplierNotifier,
	events billing.Publisher,
	reorderLevel int,
	storeName string,
) ReorderService {
	return &reorderService{
		productRepo:  productRepo,
		reorderRepo:  reorderRepo,
		ledgerRepo:   ledgerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
		events:       events,
		reorderLevel: reorderLevel,
		storeName:    storeName,
		now:          time.Now,
	}
}

// ScanReorderLevels opens a request for every product at or below the reorder
// level that has none pending, then notifies each supplier. A failed
// notification is recorded on the request and does not stop the scan.
func (s *reorderService) ScanReorderLevels(ctx context.Context) ([]model.ReorderRequest, error) {
	var created []model.ReorderRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		low, err := s.productRepo.ListAtOrBelow(txCtx, s.reorderLevel)
		if err != nil {
			return fmt.Errorf("failed to list low stock: %w", err)
		}
		open, err := s.reorderRepo.OpenProductIDs(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list open reorders: %w", err)
		}
		for i := range low {
			p := low[i]
			if open[p.ID] {
				continue
			}
			req := model.ReorderRequest{
				ProductID:         p.ID,
				Product:           &p,
				Supplier:          p.Supplier,
				QuantityAtRequest: p.Quantity,
				Status:            model.ReorderPending,
				NotifiedVia:       s.notifier.Channel(),
			}
			if err := s.reorderRepo.Create(txCtx, &req); err != nil {
				return fmt.Errorf("failed to create reorder for product %d: %w", p.ID, err)
			}
			audit := newAudit(nil, model.ActionRequestReorder, req.ID.String(), p.Name,
				map[string]interface{}{"product_id": p.ID, "quantity": p.Quantity, "supplier": p.Supplier})
			if err := s.auditRepo.Log(txCtx, audit); err != nil {
				return fmt.Errorf("failed to write audit log: %w", err)
			}
			created = append(created, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		req := &created[i]
		n := notify.Notice{
			StoreName:     s.storeName,
			ProductID:     req.ProductID,
			ProductName:   req.Product.Name,
			Quantity:      req.QuantityAtRequest,
			Supplier:      req.Supplier,
			SupplierPhone: req.Product.SupplierPhone,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			log.Printf("Reorder %s: supplier notification failed: %v", req.ID, err)
			req.NotifyError = err.Error()
			if err := s.reorderRepo.Update(ctx, req); err != nil {
				log.Printf("Reorder %s: failed to record notification error: %v", req.ID, err)
			}
		}
		if s.events != nil {
			s.events.Publish("reorder_requested", map[string]interface{}{
				"reorder_id": req.ID,
				"product_id": req.ProductID,
				"name":       req.Product.Name,
				"quantity":   req.QuantityAtRequest,
				"notified":   req.NotifyError == "",
			})
		}
	}
	if len(created) > 0 {
		log.Printf("Reorder scan opened %d request(s)", len(created))
	}
	return created, nil
}

// lockPending loads a request under lock and requires it to be pending.
func (s *reorderService) lockPending(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error) {
	req, err := s.reorderRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.ReorderPending {
		return nil, fmt.Errorf("%w: reorder is %s", ErrInvalidState, req.Status)
	}
	return req, nil
}

func (s *reorderService) Confirm(ctx context.Context, actor *uuid.UUID, id uuid.UUID, received int) (*model.ReorderRequest, error) {
	if received <= 0 {
		return nil, fmt.Errorf("%w: received quantity must be positive", ErrInvalidInput)
	}
	var req *model.ReorderRequest
	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if req, err = s.lockPending(txCtx, id); err != nil {
			return err
		}
		if product, err = s.productRepo.FindByIDForUpdate(txCtx, req.ProductID); err != nil {
			return err
		}
		after, err := s.productRepo.IncrementQuantity(txCtx, product.ID, received)
		if err != nil {
			return fmt.Errorf("failed to restock: %w", err)
		}
		product.Quantity = after

		entry := &model.InventoryTransaction{
			ProductID:       product.ID,
			ReorderID:       &req.ID,
			TransactionType: model.TxTypeIn,
			QuantityChanged: received,
			StockAfter:      after,
		}
		if err := s.ledgerRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record inventory transaction: %w", err)
		}

		now := s.now()
		req.Status = model.ReorderReceived
		req.ReceivedQuantity = received
		req.ResolvedBy = actor
		req.ResolvedAt = &now
		if err := s.reorderRepo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update reorder: %w", err)
		}

		audit := newAudit(actor, model.ActionConfirmReorder, req.ID.String(), product.Name,
			map[string]int{"received": received, "after": after})
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Product = product
	publishRestock(s.events, product, received)
	return req, nil
}

func (s *reorderService) Cancel(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*model.ReorderRequest, error) {
	var req *model.ReorderRequest
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if req, err = s.lockPending(txCtx, id); err != nil {
			return err
		}
		now := s.now()
		req.Status = model.ReorderCancelled
		req.ResolvedBy = actor
		req.ResolvedAt = &now
		if err := s.reorderRepo.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update reorder: %w", err)
		}
		audit := newAudit(actor, model.ActionCancelReorder, req.ID.String(), req.Supplier,
			map[string]int64{"product_id": req.ProductID})
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *reorderService) List(ctx context.Context, page, limit int, status string) ([]model.ReorderRequest, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	switch status {
	case "", model.ReorderPending, model.ReorderReceived, model.ReorderCancelled:
	default:
		return nil, 0, fmt.Errorf("%w: unknown reorder status %q", ErrInvalidInput, status)
	}
	return s.reorderRepo.List(ctx, page, limit, status)
}

// StartScheduler runs ScanReorderLevels on the cron schedule. An empty schedule
// disables it and returns nil.
func (s *reorderService) StartScheduler(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.ScanReorderLevels(ctx); err != nil {
			log.Printf("Scheduled reorder scan failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reorder schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Printf("Reorder scheduler started (%s)", schedule)
	return c, nil
}
