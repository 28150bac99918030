package postgres

import (
	"context"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type bookingsRepo struct{ pool *pgxpool.Pool }

const bookingCols = `id, user_id, listing_id, pickup_date, pickup_location, return_date, return_location,
    total_price, status, notes, created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b      models.Booking
		status string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.ListingID, &b.PickupDate, &b.PickupLocation, &b.ReturnDate,
		&b.ReturnLocation, &b.TotalPrice, &status, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Booking{}, mapErr(err)
	}
	b.Status = models.BookingStatus(status)
	return b, nil
}

func (r *bookingsRepo) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return scanBooking(r.pool.QueryRow(ctx, `
        INSERT INTO bookings(id, user_id, listing_id, pickup_date, pickup_location, return_date,
            return_location, total_price, status, notes)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING `+bookingCols,
		b.ID, b.UserID, b.ListingID, b.PickupDate, b.PickupLocation, b.ReturnDate,
		b.ReturnLocation, b.TotalPrice, string(b.Status), b.Notes,
	))
}

func (r *bookingsRepo) GetByID(ctx context.Context, id string) (models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id=$1`, id))
}

func (r *bookingsRepo) List(ctx context.Context, userID string) ([]models.Booking, error) {
	if userID == "" {
		return r.list(ctx, `SELECT `+bookingCols+` FROM bookings ORDER BY created_at DESC`)
	}
	return r.list(ctx, `SELECT `+bookingCols+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *bookingsRepo) FindOverlapping(ctx context.Context, listingID string, from, to time.Time) ([]models.Booking, error) {
	statuses := make([]string, 0, len(models.BlockingStatuses))
	for _, s := range models.BlockingStatuses {
		statuses = append(statuses, string(s))
	}
	return r.list(ctx, `
        SELECT `+bookingCols+` FROM bookings
        WHERE listing_id=$1 AND status = ANY($2::text[])
          AND pickup_date <= $4 AND return_date >= $3
        ORDER BY pickup_date`,
		listingID, statuses, from, to)
}

func (r *bookingsRepo) list(ctx context.Context, q string, args ...any) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, mapErr(rows.Err())
}

func (r *bookingsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
