package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// BlockingStatuses are the statuses that make a listing unavailable.
var BlockingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) Blocking() bool {
	return s == BookingPending || s == BookingConfirmed
}

const MaxNotesLen = 500

type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	ListingID      string        `json:"listing_id"`
	PickupDate     time.Time     `json:"pickup_date"`
	PickupLocation string        `json:"pickup_location"`
	ReturnDate     time.Time     `json:"return_date"`
	ReturnLocation string        `json:"return_location"`
	TotalPrice     float64       `json:"total_price"`
	Status         BookingStatus `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// BookingView is a booking populated with its listing and user for display.
type BookingView struct {
	Booking
	Listing *Listing `json:"listing,omitempty"`
	User    *User    `json:"user,omitempty"`
}

// Overlaps is the inclusive range intersection test.
func (b Booking) Overlaps(from, to time.Time) bool {
	return Overlaps(b.PickupDate, b.ReturnDate, from, to)
}

func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}

func (b *Booking) Validate() error {
	var errs []error
	b.PickupLocation = strings.TrimSpace(b.PickupLocation)
	b.ReturnLocation = strings.TrimSpace(b.ReturnLocation)
	if b.Status == "" {
		b.Status = BookingPending
	}
	if b.PickupDate.IsZero() {
		errs = append(errs, errors.New("pickupDate is required"))
	}
	if b.ReturnDate.IsZero() {
		errs = append(errs, errors.New("returnDate is required"))
	}
	if !b.PickupDate.IsZero() && !b.ReturnDate.IsZero() && b.PickupDate.After(b.ReturnDate) {
		errs = append(errs, errors.New("pickupDate must not be after returnDate"))
	}
	if b.PickupLocation == "" {
		errs = append(errs, errors.New("pickupLocation is required"))
	}
	if b.ReturnLocation == "" {
		errs = append(errs, errors.New("returnLocation is required"))
	}
	if b.TotalPrice < 0 {
		errs = append(errs, errors.New("totalPrice must not be negative"))
	} else if err := checkPrice("totalPrice", b.TotalPrice); err != nil {
		errs = append(errs, err)
	}
	if !b.Status.Valid() {
		errs = append(errs, fmt.Errorf("status %q is not one of pending, confirmed, completed, cancelled", b.Status))
	}
	if n := utf8.RuneCountInString(b.Notes); n > MaxNotesLen {
		errs = append(errs, fmt.Errorf("notes is %d characters, maximum %d allowed", n, MaxNotesLen))
	}
	return errors.Join(errs...)
}
