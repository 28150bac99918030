package postgres

import (
	"context"
	"encoding/json"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type listingsRepo struct{ pool *pgxpool.Pool }

const listingCols = `id, user_id, title, make, model, year, seats, transmission, fuel_type,
    price_per_day, currency, images, features, location, description, available, created_at, updated_at`

func scanListing(row rowScanner) (models.Listing, error) {
	var (
		l            models.Listing
		transmission string
		fuel         string
		images       []byte
	)
	err := row.Scan(&l.ID, &l.UserID, &l.Title, &l.Make, &l.Model, &l.Year, &l.Seats, &transmission, &fuel,
		&l.PricePerDay, &l.Currency, &images, &l.Features, &l.Location, &l.Description, &l.Available,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return models.Listing{}, mapErr(err)
	}
	l.Transmission = models.Transmission(transmission)
	l.FuelType = models.FuelType(fuel)
	l.Images = []models.Image{}
	if len(images) > 0 {
		var rows []imageRow
		if err := json.Unmarshal(images, &rows); err != nil {
			return models.Listing{}, err
		}
		for _, r := range rows {
			l.Images = append(l.Images, models.Image{URL: r.URL, Handle: r.Handle})
		}
	}
	if l.Features == nil {
		l.Features = []string{}
	}
	return l, nil
}

// imageRow is the jsonb shape of one image; unlike the API form it keeps
// the storage handle.
type imageRow struct {
	URL    string `json:"url"`
	Handle string `json:"handle"`
}

func imagesJSON(images []models.Image) (string, error) {
	rows := make([]imageRow, 0, len(images))
	for _, img := range images {
		rows = append(rows, imageRow{URL: img.URL, Handle: img.Handle})
	}
	b, err := json.Marshal(rows)
	return string(b), err
}

func (r *listingsRepo) Create(ctx context.Context, l models.Listing) (models.Listing, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	images, err := imagesJSON(l.Images)
	if err != nil {
		return models.Listing{}, err
	}
	if l.Features == nil {
		l.Features = []string{}
	}
	return scanListing(r.pool.QueryRow(ctx, `
        INSERT INTO listings(id, user_id, title, make, model, year, seats, transmission, fuel_type,
            price_per_day, currency, images, features, location, description, available)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::jsonb,$13,$14,$15,$16)
        RETURNING `+listingCols,
		l.ID, l.UserID, l.Title, l.Make, l.Model, l.Year, l.Seats, string(l.Transmission), string(l.FuelType),
		l.PricePerDay, l.Currency, images, l.Features, l.Location, l.Description, l.Available,
	))
}

func (r *listingsRepo) GetByID(ctx context.Context, id string) (models.Listing, error) {
	return scanListing(r.pool.QueryRow(ctx, `SELECT `+listingCols+` FROM listings WHERE id=$1`, id))
}

func (r *listingsRepo) ListByOwner(ctx context.Context, userID string) ([]models.Listing, error) {
	return r.list(ctx, `SELECT `+listingCols+` FROM listings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *listingsRepo) ListAll(ctx context.Context) ([]models.Listing, error) {
	return r.list(ctx, `SELECT `+listingCols+` FROM listings ORDER BY created_at DESC`)
}

func (r *listingsRepo) list(ctx context.Context, q string, args ...any) ([]models.Listing, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, mapErr(rows.Err())
}

// Update filters removed URLs out of the stored jsonb array and appends the
// new images in the same statement.
func (r *listingsRepo) Update(ctx context.Context, id string, p models.ListingPatch, ch models.ImageChanges) (models.Listing, error) {
	add, err := imagesJSON(ch.Add)
	if err != nil {
		return models.Listing{}, err
	}
	remove := ch.Remove
	if remove == nil {
		remove = []string{}
	}
	var features any
	if p.Features != nil {
		f := *p.Features
		if f == nil {
			f = []string{}
		}
		features = f
	}
	var transmission, fuel *string
	if p.Transmission != nil {
		s := string(*p.Transmission)
		transmission = &s
	}
	if p.FuelType != nil {
		s := string(*p.FuelType)
		fuel = &s
	}

	return scanListing(r.pool.QueryRow(ctx, `
        UPDATE listings SET
            title         = COALESCE($2::text, title),
            make          = COALESCE($3::text, make),
            model         = COALESCE($4::text, model),
            year          = COALESCE($5::integer, year),
            seats         = COALESCE($6::integer, seats),
            transmission  = COALESCE($7::text, transmission),
            fuel_type     = COALESCE($8::text, fuel_type),
            price_per_day = COALESCE($9::numeric, price_per_day),
            currency      = COALESCE($10::text, currency),
            features      = COALESCE($11::text[], features),
            location      = COALESCE($12::text, location),
            description   = COALESCE($13::text, description),
            available     = COALESCE($14::boolean, available),
            images = (
                SELECT COALESCE(jsonb_agg(e ORDER BY o), '[]'::jsonb)
                FROM jsonb_array_elements(listings.images) WITH ORDINALITY AS t(e, o)
                WHERE NOT (e->>'url' = ANY($15::text[]))
            ) || $16::jsonb,
            updated_at = now()
        WHERE id=$1
        RETURNING `+listingCols,
		id, p.Title, p.Make, p.Model, p.Year, p.Seats, transmission, fuel, p.PricePerDay, p.Currency,
		features, p.Location, p.Description, p.Available, remove, add,
	))
}

func (r *listingsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
