package repository

import (
	"time"

	"go-pos-farmstall/internal/model"

	"gorm.io/gorm"
)

type LedgerRepository interface {
	CreateWithLines(tx *gorm.DB, transaction *model.Transaction) error
	FindAll() ([]model.Transaction, error)
	FindByID(id uint) (*model.Transaction, error)
	CountLinesForProduct(productID uint) (int64, error)
	TotalsBetween(start, end time.Time) (*LedgerTotals, error)
	TopProductsBetween(start, end time.Time, limit int) ([]TopProductRow, error)
	RevenuePerHourBetween(start, end time.Time) ([]HourRevenueRow, error)
}

// LedgerTotals untuk overview stats
type LedgerTotals struct {
	TransactionsCount int64   `json:"transactions_count"`
	TotalSalesValue   float64 `json:"total_sales_value"`
	TotalItemsSold    int64   `json:"total_items_sold"`
}

// TopProductRow untuk top seller ranking
type TopProductRow struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	QtySold   int64  `json:"qty_sold"`
}

// HourRevenueRow untuk chart data per jam
type HourRevenueRow struct {
	Hour    int     `json:"hour"`
	Revenue float64 `json:"revenue"`
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

// CreateWithLines persists the header and its lines in one insert chain.
// Runs inside the checkout transaction; the ledger has no update or delete
// path by design of the financial record.
func (r *ledgerRepo) CreateWithLines(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Create(transaction).Error
}

func (r *ledgerRepo) FindAll() ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.Preload("Lines").Preload("Lines.Product").Preload("CreatedByUser").
		Order("id DESC").Find(&transactions).Error
	return transactions, err
}

func (r *ledgerRepo) FindByID(id uint) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Preload("Lines").Preload("Lines.Product").Preload("CreatedByUser").
		First(&transaction, "id = ?", id).Error
	return &transaction, err
}

func (r *ledgerRepo) CountLinesForProduct(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.TransactionLine{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *ledgerRepo) TotalsBetween(start, end time.Time) (*LedgerTotals, error) {
	var totals LedgerTotals

	err := r.db.Model(&model.Transaction{}).
		Where("date_time >= ? AND date_time < ?", start, end).
		Count(&totals.TransactionsCount).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&model.Transaction{}).
		Where("date_time >= ? AND date_time < ?", start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totals.TotalSalesValue).Error
	if err != nil {
		return nil, err
	}

	err = r.db.Model(&model.TransactionLine{}).
		Joins("JOIN transactions ON transactions.id = transaction_lines.transaction_id").
		Where("transactions.date_time >= ? AND transactions.date_time < ?", start, end).
		Select("COALESCE(SUM(transaction_lines.qty), 0)").
		Scan(&totals.TotalItemsSold).Error
	if err != nil {
		return nil, err
	}

	return &totals, nil
}

func (r *ledgerRepo) TopProductsBetween(start, end time.Time, limit int) ([]TopProductRow, error) {
	var results []TopProductRow

	// Ties break on product id ascending so the ranking is stable.
	rows, err := r.db.Model(&model.TransactionLine{}).
		Select("transaction_lines.product_id, products.name, SUM(transaction_lines.qty) as qty_sold").
		Joins("JOIN transactions ON transactions.id = transaction_lines.transaction_id").
		Joins("JOIN products ON products.id = transaction_lines.product_id").
		Where("transactions.date_time >= ? AND transactions.date_time < ?", start, end).
		Group("transaction_lines.product_id, products.name").
		Order("qty_sold DESC, transaction_lines.product_id ASC").
		Limit(limit).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row TopProductRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.QtySold); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// RevenuePerHourBetween buckets line revenue by the transaction hour. The
// hour extraction is done in Go rather than SQL so the same query works on
// PostgreSQL and the SQLite test database.
func (r *ledgerRepo) RevenuePerHourBetween(start, end time.Time) ([]HourRevenueRow, error) {
	var transactions []model.Transaction
	err := r.db.Where("date_time >= ? AND date_time < ?", start, end).
		Order("date_time ASC").Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	perHour := make(map[int]float64)
	for _, t := range transactions {
		perHour[t.DateTime.Hour()] += t.Total
	}

	results := make([]HourRevenueRow, 0, len(perHour))
	for hour := 0; hour < 24; hour++ {
		if revenue, ok := perHour[hour]; ok {
			results = append(results, HourRevenueRow{Hour: hour, Revenue: revenue})
		}
	}

	return results, nil
}
