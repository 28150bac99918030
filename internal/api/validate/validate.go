package validate

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends f when it is non-nil so helper results can be chained.
func (e *Errs) Add(f *ErrField) {
	if f != nil {
		*e = append(*e, *f)
	}
}

func (e Errs) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinLen(field, value string, min int) *ErrField {
	if len([]rune(value)) < min {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	return nil
}

func UUID(field, value string) *ErrField {
	if !IsUUID(value) {
		return &ErrField{Field: field, Msg: "must be a valid id"}
	}
	return nil
}

func IsUUID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil && len(v) == 36
}

// Int coerces an optional form value. Empty means absent.
func Int(field, value string) (*int, *ErrField) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, &ErrField{Field: field, Msg: "must be an integer"}
	}
	return &n, nil
}

func Float(field, value string) (*float64, *ErrField) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, &ErrField{Field: field, Msg: "must be a number"}
	}
	return &f, nil
}

func Bool(field, value string) (*bool, *ErrField) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, &ErrField{Field: field, Msg: "must be true or false"}
	}
	return &b, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// Date accepts RFC3339 timestamps or plain calendar dates (UTC midnight).
func Date(field, value string) (time.Time, *ErrField) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &ErrField{Field: field, Msg: "required"}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ErrField{Field: field, Msg: "must be a date (YYYY-MM-DD or RFC3339)"}
}

// Split flattens an errors.Join result into one message per cause.
func Split(err error) []string {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
