package repository

import (
	"context"

	"storepos/internal/model"

	"gorm.io/gorm"
)

// InventoryTxRepository appends to the stock ledger.
type InventoryTxRepository interface {
	Create(ctx context.Context, tx *model.InventoryTransaction) error
	CreateBatch(ctx context.Context, txs []model.InventoryTransaction) error
	ListByProduct(ctx context.Context, productID int64, limit int) ([]model.InventoryTransaction, error)
}

type inventoryTxRepository struct {
	db *gorm.DB
}

func NewInventoryTxRepository(db *gorm.DB) InventoryTxRepository {
	return &inventoryTxRepository{db: db}
}

func (r *inventoryTxRepository) Create(ctx context.Context, tx *model.InventoryTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *inventoryTxRepository) CreateBatch(ctx context.Context, txs []model.InventoryTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&txs).Error
}

func (r *inventoryTxRepository) ListByProduct(ctx context.Context, productID int64, limit int) ([]model.InventoryTransaction, error) {
	var txs []model.InventoryTransaction
	if err := GetDB(ctx, r.db).Where("product_id = ?", productID).
		Order("created_at desc").Limit(limit).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
