package model

import (
	"time"
)

// BaseModel handles the numeric primary key and standard audit trails.
// IDs are plain auto-increment integers: products are referenced by id inside
// generated barcodes and transaction ids must follow commit order.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit user tracking
	CreatedBy string `json:"created_by,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
}
