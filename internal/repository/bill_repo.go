package repository

import (
	"context"

	"storepos/internal/model"
	"storepos/pkg/pagination"

	"gorm.io/gorm"
)

// BillRepository persists committed bills. Bills are insert-only.
type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	FindByID(ctx context.Context, id int64) (*model.Bill, error)
	List(ctx context.Context, page, limit int, customerID int64) ([]model.Bill, int64, error)
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

// Create inserts the header and its items in one statement batch. Call it
// inside a transaction so header and lines land together.
func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	return translate(GetDB(ctx, r.db).Omit("Customer").Create(bill).Error)
}

func (r *billRepository) FindByID(ctx context.Context, id int64) (*model.Bill, error) {
	var bill model.Bill
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &bill, nil
}

// List pages through bills newest first; customerID 0 means all customers.
func (r *billRepository) List(ctx context.Context, page, limit int, customerID int64) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Bill{})
	if customerID > 0 {
		db = db.Where("customer_id = ?", customerID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Customer").Order("id desc").Scopes(pagination.Paginate(page, limit)).Find(&bills).Error; err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}
