package repository

import (
	"go-pos-farmstall/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(tx *gorm.DB, purchase *model.Purchase) error
	FindAll() ([]model.Purchase, error)
	BasisForProduct(productID uint) (qty int64, cost float64, err error)
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

// Create menerima *gorm.DB (tx) so the purchase row and the stock increment
// commit together.
func (r *purchaseRepo) Create(tx *gorm.DB, purchase *model.Purchase) error {
	return tx.Create(purchase).Error
}

func (r *purchaseRepo) FindAll() ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.db.Preload("Product").Order("date_time DESC").Find(&purchases).Error
	return purchases, err
}

// BasisForProduct returns the cumulative weighted-average-cost basis over the
// product's whole purchase history: total quantity ever purchased and the
// total cost of those purchases. Sales depletion does not shrink the basis.
func (r *purchaseRepo) BasisForProduct(productID uint) (int64, float64, error) {
	type basisRow struct {
		Qty  int64
		Cost float64
	}
	var row basisRow
	err := r.db.Model(&model.Purchase{}).
		Select("COALESCE(SUM(qty_added), 0) as qty, COALESCE(SUM(qty_added * purchase_price), 0) as cost").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Qty, row.Cost, nil
}
