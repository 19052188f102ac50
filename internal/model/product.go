package model

type Product struct {
	BaseModel
	Name     string  `gorm:"type:varchar(120);uniqueIndex;not null" json:"name" validate:"required"`
	Price    float64 `gorm:"not null" json:"price" validate:"gte=0"`
	Barcode  string  `gorm:"type:varchar(32);uniqueIndex;not null" json:"barcode"`
	StockQty int     `gorm:"not null;default:0" json:"stock_qty"`
}
