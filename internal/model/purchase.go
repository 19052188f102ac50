package model

import (
	"time"

	"gorm.io/gorm"
)

// Purchase records a restock event. Rows are immutable once created: the full
// purchase history is the basis for the weighted-average-cost calculation, so
// it is never rewritten by later sales or stock edits.
type Purchase struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     uint      `gorm:"not null;index" json:"product_id" validate:"required"`
	Product       *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	QtyAdded      int       `gorm:"not null" json:"qty_added" validate:"required,gt=0"`
	PurchasePrice float64   `gorm:"not null" json:"purchase_price" validate:"gte=0"`
	DateTime      time.Time `gorm:"not null" json:"date_time"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.DateTime.IsZero() {
		p.DateTime = time.Now()
	}
	return
}
