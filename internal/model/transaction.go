package model

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is a committed sale. It is a financial record: no updates, no
// deletes. Ids are assigned by the database in commit order.
type Transaction struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DateTime time.Time `gorm:"not null;index" json:"date_time"`
	Total    float64   `gorm:"not null" json:"total"`

	CreatedByUserID *uint `gorm:"index" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`

	Lines []TransactionLine `gorm:"foreignKey:TransactionID" json:"lines"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.DateTime.IsZero() {
		t.DateTime = time.Now()
	}
	return
}

// TransactionLine is one cart line frozen at commit time. UnitPrice is the
// price captured during checkout validation, not a lookup against the current
// catalog, so later price edits never rewrite history.
type TransactionLine struct {
	ID            uint     `gorm:"primaryKey;autoIncrement" json:"-"`
	TransactionID uint     `gorm:"not null;index" json:"transaction_id"`
	ProductID     uint     `gorm:"not null;index" json:"product_id"`
	Product       *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Qty           int      `gorm:"not null" json:"qty"`
	UnitPrice     float64  `gorm:"not null" json:"unit_price"`
}

// Subtotal is qty * unit_price for display and total checks.
func (l TransactionLine) Subtotal() float64 {
	return float64(l.Qty) * l.UnitPrice
}
