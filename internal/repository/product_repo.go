package repository

import (
	"context"
	"strings"

	"storepos/internal/model"
	"storepos/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository is the Catalog Gateway. Lock and quantity methods must run
// inside a TransactionManager transaction for the row lock to mean anything.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*model.Product, error)
	DecrementQuantity(ctx context.Context, id int64, amount int) (int, error)
	IncrementQuantity(ctx context.Context, id int64, amount int) (int, error)
	SetQuantity(ctx context.Context, id int64, quantity int) error
	Search(ctx context.Context, pattern string, limit int) ([]model.Product, error)
	List(ctx context.Context, page, limit int) ([]model.Product, int64, error)
	ListAtOrBelow(ctx context.Context, level int) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create accepts an explicit id. The serial sequence is moved past it so later
// inserts without one do not collide.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	explicit := product.ID > 0
	db := GetDB(ctx, r.db)
	if err := db.Create(product).Error; err != nil {
		return translate(err)
	}
	if explicit {
		return db.Exec("SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT MAX(id) FROM products))").Error
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	res := GetDB(ctx, r.db).Model(product).
		Select("name", "price", "tax_rate", "unit_profit", "brand", "supplier", "supplier_phone").
		Updates(product)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDForUpdate reads the row with SELECT ... FOR UPDATE. The lock is held
// until the enclosing transaction ends.
func (r *productRepository) FindByIDForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// DecrementQuantity subtracts amount only if that much stock is on hand and
// returns the remaining quantity.
func (r *productRepository) DecrementQuantity(ctx context.Context, id int64, amount int) (int, error) {
	var product model.Product
	res := GetDB(ctx, r.db).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ? AND quantity >= ?", id, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return 0, err
		}
		return 0, ErrInsufficientStock
	}
	return product.Quantity, nil
}

func (r *productRepository) IncrementQuantity(ctx context.Context, id int64, amount int) (int, error) {
	var product model.Product
	res := GetDB(ctx, r.db).Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return product.Quantity, nil
}

func (r *productRepository) SetQuantity(ctx context.Context, id int64, quantity int) error {
	res := GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).UpdateColumn("quantity", quantity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches name or brand without locking, best-stocked first.
func (r *productRepository) Search(ctx context.Context, pattern string, limit int) ([]model.Product, error) {
	like := "%" + escapeLike(strings.TrimSpace(pattern)) + "%"
	var products []model.Product
	if err := GetDB(ctx, r.db).
		Where("name ILIKE ? OR brand ILIKE ?", like, like).
		Order("quantity DESC").Order("id").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context, page, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("id").Scopes(pagination.Paginate(page, limit)).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) ListAtOrBelow(ctx context.Context, level int) ([]model.Product, error) {
	var products []model.Product
	if err := GetDB(ctx, r.db).Where("quantity <= ?", level).Order("quantity").Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).Count(&total).Error
	return total, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
