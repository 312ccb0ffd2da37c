package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"storepos/internal/billing"
	"storepos/internal/model"
	"storepos/internal/repository"

	"github.com/google/uuid"
)

type CheckoutItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	Phone   string                `json:"phone" binding:"required"`
	Name    string                `json:"name"`
	Address string                `json:"address"`
	Items   []CheckoutItemRequest `json:"items"`
}

type RejectedLine struct {
	Index     int    `json:"index"`
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
}

type CheckoutResponse struct {
	Invoice         string         `json:"invoice"`
	Bill            *model.Bill    `json:"bill"`
	CustomerCreated bool           `json:"customer_created"`
	Rejected        []RejectedLine `json:"rejected"`
	ReceiptPath     string         `json:"receipt_path,omitempty"`
	ReceiptError    string         `json:"receipt_error,omitempty"`
}

type BillResponse struct {
	Invoice string      `json:"invoice"`
	Bill    *model.Bill `json:"bill"`
}

// Checkouter runs one checkout session.
type Checkouter interface {
	Checkout(ctx context.Context, op billing.Operator, cashierID *uuid.UUID) (*billing.Result, error)
}

// ReceiptRenderer writes receipt text for a bill.
type ReceiptRenderer interface {
	Render(w io.Writer, bill *model.Bill, invoice string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, cashier *uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error)
	GetBill(ctx context.Context, id int64) (*BillResponse, error)
	ListBills(ctx context.Context, page, limit int, customerID int64) ([]BillResponse, int64, error)
	Receipt(ctx context.Context, id int64) (string, error)
}

type checkoutService struct {
	engine   Checkouter
	billRepo repository.BillRepository
	receipts ReceiptRenderer
}

// NewCheckoutService wires the HTTP checkout to the billing engine.
func NewCheckoutService(engine Checkouter, billRepo repository.BillRepository, receipts ReceiptRenderer) CheckoutService {
	return &checkoutService{engine: engine, billRepo: billRepo, receipts: receipts}
}

// Checkout replays the request through the engine. Lines the engine rejects
// are reported back and the rest of the bill still commits.
func (s *checkoutService) Checkout(ctx context.Context, cashier *uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	lines := make([]billing.ScriptLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, billing.ScriptLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	script := billing.NewScript(req.Phone, req.Name, req.Address, lines)

	res, err := s.engine.Checkout(ctx, script, cashier)
	if err != nil {
		return nil, err
	}

	out := &CheckoutResponse{
		Invoice:         res.Invoice,
		Bill:            res.Bill,
		CustomerCreated: script.Created,
		Rejected:        make([]RejectedLine, 0, len(script.Rejections)),
		ReceiptPath:     res.ReceiptPath,
	}
	for _, r := range script.Rejections {
		out.Rejected = append(out.Rejected, RejectedLine{Index: r.Index, ProductID: r.ProductID, Reason: r.Err.Error()})
	}
	if res.ReceiptErr != nil {
		out.ReceiptError = res.ReceiptErr.Error()
	}
	return out, nil
}

func (s *checkoutService) GetBill(ctx context.Context, id int64) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BillResponse{Invoice: billing.InvoiceNumber(bill.BillDate, bill.ID), Bill: bill}, nil
}

func (s *checkoutService) ListBills(ctx context.Context, page, limit int, customerID int64) ([]BillResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	bills, total, err := s.billRepo.List(ctx, page, limit, customerID)
	if err != nil {
		return nil, 0, err
	}
	res := make([]BillResponse, 0, len(bills))
	for i := range bills {
		res = append(res, BillResponse{Invoice: billing.InvoiceNumber(bills[i].BillDate, bills[i].ID), Bill: &bills[i]})
	}
	return res, total, nil
}

// Receipt renders the receipt text again from the stored bill.
func (s *checkoutService) Receipt(ctx context.Context, id int64) (string, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.receipts.Render(&buf, bill, billing.InvoiceNumber(bill.BillDate, bill.ID)); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}
