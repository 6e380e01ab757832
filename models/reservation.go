package models

import "time"

// Reservation books a table for [SlotTimeStart, SlotTimeEnd] on Date.
// Times are zero-padded "HH:MM" so string order matches time order.
type Reservation struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TableNumber   int64     `gorm:"not null;index:idx_reservations_table_date,priority:1" json:"tableNumber"`
	ClientName    string    `gorm:"type:varchar(255);not null" json:"clientName"`
	PhoneNumber   string    `gorm:"type:varchar(50)" json:"phoneNumber"`
	Date          string    `gorm:"column:reservation_date;type:varchar(10);not null;index:idx_reservations_table_date,priority:2" json:"date"`
	SlotTimeStart string    `gorm:"type:varchar(5);not null" json:"slotTimeStart"`
	SlotTimeEnd   string    `gorm:"type:varchar(5);not null" json:"slotTimeEnd"`
	CreatedAt     time.Time `gorm:"not null" json:"-"`
}

// Overlaps reports whether r intersects [start, end] on the same table and date.
// Touching endpoints count as overlapping.
func (r Reservation) Overlaps(tableNumber int64, date, start, end string) bool {
	return r.TableNumber == tableNumber &&
		r.Date == date &&
		r.SlotTimeStart <= end &&
		r.SlotTimeEnd >= start
}
