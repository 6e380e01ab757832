package services

import (
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	slotLayout = "15:04"
)

// BookingRequest is the input of ReservationScheduler.Book.
type BookingRequest struct {
	TableNumber   int64  `json:"tableNumber" validate:"gt=0"`
	ClientName    string `json:"clientName" validate:"required"`
	PhoneNumber   string `json:"phoneNumber"`
	Date          string `json:"date" validate:"required"`
	SlotTimeStart string `json:"slotTimeStart" validate:"required"`
	SlotTimeEnd   string `json:"slotTimeEnd" validate:"required"`
}

// normalize checks the request shape and rewrites date and times to their
// canonical forms ("2006-01-02", "15:04"). It does not compare start and end.
func (r BookingRequest) normalize() (BookingRequest, error) {
	r.ClientName = strings.TrimSpace(r.ClientName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Date = strings.TrimSpace(r.Date)

	if err := validateStruct(r); err != nil {
		return r, err
	}

	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return r, validationError("date must be formatted as YYYY-MM-DD")
	}
	r.Date = date.Format(dateLayout)

	if r.SlotTimeStart, err = normalizeSlot(r.SlotTimeStart); err != nil {
		return r, validationError("slotTimeStart must be formatted as HH:MM")
	}
	if r.SlotTimeEnd, err = normalizeSlot(r.SlotTimeEnd); err != nil {
		return r, validationError("slotTimeEnd must be formatted as HH:MM")
	}
	return r, nil
}

func normalizeSlot(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(slotLayout, s)
	if err != nil {
		var errSec error
		if t, errSec = time.Parse("15:04:05", s); errSec != nil {
			return "", err
		}
	}
	return t.Format(slotLayout), nil
}

func (r BookingRequest) lockKey() string {
	return strconv.FormatInt(r.TableNumber, 10) + "|" + r.Date
}
