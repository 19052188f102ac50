package repository

import (
	"errors"

	"go-pos-farmstall/internal/model"

	"gorm.io/gorm"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock remaining")
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindByName(name string) (*model.Product, error)
	FindByNameFold(name string) (*model.Product, error)
	FindByBarcode(barcode string) (*model.Product, error)
	FindLowStock(threshold int) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(product *model.Product) error
	DecrementStock(tx *gorm.DB, id uint, qty int, updatedBy string) error
	IncrementStock(tx *gorm.DB, id uint, qty int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindByName(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "name = ?", name).Error
	return &product, err
}

// FindByNameFold matches the name case-insensitively. Used only as the last
// step of scan/search resolution; admin uniqueness checks stay case-sensitive.
func (r *productRepo) FindByNameFold(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "LOWER(name) = LOWER(?)", name).Error
	return &product, err
}

func (r *productRepo) FindByBarcode(barcode string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "barcode = ?", barcode).Error
	return &product, err
}

func (r *productRepo) FindLowStock(threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("stock_qty < ?", threshold).Order("stock_qty ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(product *model.Product) error {
	return r.db.Delete(product).Error
}

// DecrementStock takes *gorm.DB (tx) so it can run inside the checkout
// transaction. The guarded UPDATE is the serialization point for concurrent
// checkouts: the row only changes when enough stock is left, so stock_qty can
// never go negative no matter how requests interleave.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uint, qty int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock_qty >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock_qty":  gorm.Expr("stock_qty - ?", qty),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock adds restocked quantity inside the purchase transaction.
func (r *productRepo) IncrementStock(tx *gorm.DB, id uint, qty int, updatedBy string) error {
	res := tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_qty":  gorm.Expr("stock_qty + ?", qty),
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
