package repository

import (
	"context"

	"storepos/internal/model"
	"storepos/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReorderRepository interface {
	Create(ctx context.Context, req *model.ReorderRequest) error
	Update(ctx context.Context, req *model.ReorderRequest) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error)
	OpenProductIDs(ctx context.Context) (map[int64]bool, error)
	List(ctx context.Context, page, limit int, status string) ([]model.ReorderRequest, int64, error)
}

type reorderRepository struct {
	db *gorm.DB
}

func NewReorderRepository(db *gorm.DB) ReorderRepository {
	return &reorderRepository{db: db}
}

func (r *reorderRepository) Create(ctx context.Context, req *model.ReorderRequest) error {
	return GetDB(ctx, r.db).Omit("Product").Create(req).Error
}

func (r *reorderRepository) Update(ctx context.Context, req *model.ReorderRequest) error {
	return GetDB(ctx, r.db).Omit("Product").Save(req).Error
}

func (r *reorderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ReorderRequest, error) {
	var req model.ReorderRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&req).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// OpenProductIDs returns the products that already have a pending request.
func (r *reorderRepository) OpenProductIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	if err := GetDB(ctx, r.db).Model(&model.ReorderRequest{}).
		Where("status = ?", model.ReorderPending).
		Distinct().Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	open := make(map[int64]bool, len(ids))
	for _, id := range ids {
		open[id] = true
	}
	return open, nil
}

func (r *reorderRepository) List(ctx context.Context, page, limit int, status string) ([]model.ReorderRequest, int64, error) {
	var reqs []model.ReorderRequest
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ReorderRequest{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Product").Order("created_at desc").Scopes(pagination.Paginate(page, limit)).Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}
