package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storepos/internal/billing"
	"storepos/internal/model"
	"storepos/internal/repository"

	"github.com/google/uuid"
)

type UpdateCustomerRequest struct {
	Phone   *string `json:"phone"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type CustomerService interface {
	ListCustomers(ctx context.Context, page, limit int, search string) ([]model.Customer, int64, error)
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, actor *uuid.UUID, id int64, req UpdateCustomerRequest) (*model.Customer, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(customerRepo repository.CustomerRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) CustomerService {
	return &customerService{customerRepo: customerRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *customerService) ListCustomers(ctx context.Context, page, limit int, search string) ([]model.Customer, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.customerRepo.List(ctx, page, limit, strings.TrimSpace(search))
}

func (s *customerService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

func (s *customerService) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	phone = strings.TrimSpace(phone)
	if !billing.ValidPhone(phone) {
		return nil, fmt.Errorf("%w: phone number must be exactly 10 digits", ErrInvalidInput)
	}
	return s.customerRepo.FindByPhone(ctx, phone)
}

// UpdateCustomer changes only the fields present in req. A new phone number is
// re-validated and must still be unique.
func (s *customerService) UpdateCustomer(ctx context.Context, actor *uuid.UUID, id int64, req UpdateCustomerRequest) (*model.Customer, error) {
	var customer *model.Customer
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		customer, err = s.customerRepo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		before := *customer
		if req.Phone != nil {
			customer.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Name != nil {
			customer.Name = strings.TrimSpace(*req.Name)
		}
		if req.Address != nil {
			customer.Address = strings.TrimSpace(*req.Address)
		}
		if err := billing.ValidateCustomer(customer); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.customerRepo.Update(txCtx, customer); err != nil {
			return err
		}
		audit := newAudit(actor, model.ActionUpdateCustomer, strconv.FormatInt(id, 10), customer.Name, map[string]interface{}{
			"before": map[string]string{"phone": before.Phone, "name": before.Name, "address": before.Address},
			"after":  map[string]string{"phone": customer.Phone, "name": customer.Name, "address": customer.Address},
		})
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}
