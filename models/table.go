package models

import "time"

// Table is a physical table that reservations are booked against.
// ID is supplied by the caller; reservations reference Number, not ID.
type Table struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id" validate:"gt=0"`
	Number    int64     `gorm:"not null;index:idx_tables_number" json:"number" validate:"gt=0"`
	Places    int       `gorm:"not null" json:"places" validate:"gt=0"`
	IsVip     bool      `gorm:"not null;default:false" json:"isVip"`
	MinOrder  *float64  `json:"minOrder" validate:"omitempty,gte=0"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}

func (Table) TableName() string {
	return "restaurant_tables"
}
