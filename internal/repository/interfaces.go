package repository

import (
	"context"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateImage(ctx context.Context, id, image string) (models.User, error)
}

type Listings interface {
	Create(ctx context.Context, l models.Listing) (models.Listing, error)
	GetByID(ctx context.Context, id string) (models.Listing, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Listing, error)
	ListAll(ctx context.Context) ([]models.Listing, error)

	// Update merges the patch and image changes into the stored record in a
	// single write so concurrent edits never drop each other's images.
	Update(ctx context.Context, id string, patch models.ListingPatch, images models.ImageChanges) (models.Listing, error)
	Delete(ctx context.Context, id string) error
}

type Bookings interface {
	Create(ctx context.Context, b models.Booking) (models.Booking, error)
	GetByID(ctx context.Context, id string) (models.Booking, error)
	// List returns all bookings when userID is empty.
	List(ctx context.Context, userID string) ([]models.Booking, error)
	// FindOverlapping returns bookings for the listing in a blocking status
	// whose inclusive range intersects [from, to].
	FindOverlapping(ctx context.Context, listingID string, from, to time.Time) ([]models.Booking, error)
	Delete(ctx context.Context, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

type Repositories struct {
	Users     Users
	Listings  Listings
	Bookings  Bookings
	AuditLogs AuditLogs
}
