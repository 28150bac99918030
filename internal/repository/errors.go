package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrReferenced is returned when a foreign key points at a missing row.
	ErrReferenced = errors.New("referenced record does not exist")
)
