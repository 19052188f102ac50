package model

// Setting is a single key/value row. The only key the application writes today
// is markup_percent, used by the suggested-price calculation.
type Setting struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Key   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:varchar(200);not null" json:"value"`
}

const SettingMarkupPercent = "markup_percent"

// DefaultMarkupPercent applies when no markup setting has been stored yet.
const DefaultMarkupPercent = 20.0
