package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

func (t Transmission) Valid() bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

func (f FuelType) Valid() bool {
	switch f {
	case FuelPetrol, FuelGasoline, FuelDiesel, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

const (
	MaxDescriptionLen = 300
	DefaultSeats      = 4
	DefaultCurrency   = "USD"
)

// Image is a stored listing picture: the public URL plus the storage handle
// needed to delete it again. The handle never leaves the server.
type Image struct {
	URL    string `json:"url"`
	Handle string `json:"-"`
}

type Listing struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Title        string       `json:"title"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Seats        int          `json:"seats"`
	Transmission Transmission `json:"transmission"`
	FuelType     FuelType     `json:"fuel_type"`
	PricePerDay  float64      `json:"price_per_day"`
	Currency     string       `json:"currency"`
	Images       []Image      `json:"images"`
	Features     []string     `json:"features"`
	Location     string       `json:"location"`
	Description  string       `json:"description"`
	Available    bool         `json:"available"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ListingView is a listing with its owner's public profile attached.
type ListingView struct {
	Listing
	Owner *Profile `json:"owner,omitempty"`
}

func (l *Listing) ApplyDefaults() {
	if l.Seats == 0 {
		l.Seats = DefaultSeats
	}
	if l.Transmission == "" {
		l.Transmission = TransmissionAutomatic
	}
	if l.FuelType == "" {
		l.FuelType = FuelPetrol
	}
	if strings.TrimSpace(l.Currency) == "" {
		l.Currency = DefaultCurrency
	}
	if l.Features == nil {
		l.Features = []string{}
	}
}

// Validate checks the scalar invariants. Image count is checked by the
// caller because it only applies on creation.
func (l *Listing) Validate() error {
	var errs []error
	if strings.TrimSpace(l.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if strings.TrimSpace(l.Make) == "" {
		errs = append(errs, errors.New("make is required"))
	}
	if strings.TrimSpace(l.Model) == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if l.Year <= 0 {
		errs = append(errs, errors.New("year must be a positive number"))
	}
	if l.Seats <= 0 {
		errs = append(errs, errors.New("seats must be a positive number"))
	}
	if l.PricePerDay <= 0 {
		errs = append(errs, errors.New("pricePerDay must be a positive number"))
	} else if err := checkPrice("pricePerDay", l.PricePerDay); err != nil {
		errs = append(errs, err)
	}
	if !l.Transmission.Valid() {
		errs = append(errs, fmt.Errorf("transmission %q is not one of manual, automatic", l.Transmission))
	}
	if !l.FuelType.Valid() {
		errs = append(errs, fmt.Errorf("fuelType %q is not one of petrol, gasoline, diesel, electric, hybrid", l.FuelType))
	}
	if n := utf8.RuneCountInString(l.Description); n > MaxDescriptionLen {
		errs = append(errs, fmt.Errorf("description is %d characters, maximum %d allowed", n, MaxDescriptionLen))
	}
	return errors.Join(errs...)
}

// MaxPrice is the first amount that no longer fits a numeric(12,2) column.
const MaxPrice = 1e10

// checkPrice rejects amounts the database would round: more than two
// decimal places, or too large.
func checkPrice(field string, v float64) error {
	if v >= MaxPrice {
		return fmt.Errorf("%s must be less than %.0f", field, MaxPrice)
	}
	cents := v * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return fmt.Errorf("%s must have at most two decimal places", field)
	}
	return nil
}

// ListingPatch carries the scalar fields of an edit; nil means unchanged.
type ListingPatch struct {
	Title        *string
	Make         *string
	Model        *string
	Year         *int
	Seats        *int
	Transmission *Transmission
	FuelType     *FuelType
	PricePerDay  *float64
	Currency     *string
	Features     *[]string
	Location     *string
	Description  *string
	Available    *bool
}

// Apply returns a copy of l with the patch merged in.
func (p ListingPatch) Apply(l Listing) Listing {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Make != nil {
		l.Make = *p.Make
	}
	if p.Model != nil {
		l.Model = *p.Model
	}
	if p.Year != nil {
		l.Year = *p.Year
	}
	if p.Seats != nil {
		l.Seats = *p.Seats
	}
	if p.Transmission != nil {
		l.Transmission = *p.Transmission
	}
	if p.FuelType != nil {
		l.FuelType = *p.FuelType
	}
	if p.PricePerDay != nil {
		l.PricePerDay = *p.PricePerDay
	}
	if p.Currency != nil {
		l.Currency = *p.Currency
	}
	if p.Features != nil {
		l.Features = append([]string{}, (*p.Features)...)
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Available != nil {
		l.Available = *p.Available
	}
	return l
}

// ImageChanges is applied to a listing's image list in one step: entries
// whose URL is in Remove are dropped, then Add is appended in order.
type ImageChanges struct {
	Remove []string
	Add    []Image
}

func (c ImageChanges) Apply(images []Image) []Image {
	drop := make(map[string]struct{}, len(c.Remove))
	for _, u := range c.Remove {
		drop[u] = struct{}{}
	}
	out := make([]Image, 0, len(images)+len(c.Add))
	for _, img := range images {
		if _, ok := drop[img.URL]; ok {
			continue
		}
		out = append(out, img)
	}
	return append(out, c.Add...)
}
