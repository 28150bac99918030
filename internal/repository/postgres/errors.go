package postgres

import (
	"errors"

	"github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return repository.ErrConflict
		case "23503":
			return repository.ErrReferenced
		case "22P02": // invalid uuid text
			return repository.ErrNotFound
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
