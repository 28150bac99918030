package services

import (
	"context"

	"github.com/baharkarakas/rentacar-backend/internal/models"
)

const (
	FolderCars        = "car-website/cars"
	FolderProfilePics = "car-website/profile-pics"
)

// Storage is the blob store for listing and profile images.
type Storage interface {
	Upload(ctx context.Context, localPath, folder string) (models.Image, error)
	Delete(ctx context.Context, handle string) error
}

// ListingCache is a read-through cache for single-listing reads. A miss is
// (nil, nil).
type ListingCache interface {
	Get(ctx context.Context, id string) (*models.ListingView, error)
	Set(ctx context.Context, v models.ListingView) error
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Async runs side effects off the request path.
type Async interface {
	Submit(func())
}

// UploadFile is a spooled local copy of one multipart image part.
type UploadFile struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
	SubjectBookingCreated = "booking.created"
	SubjectBookingDeleted = "booking.deleted"
)

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*models.ListingView, error) {
	return nil, nil
}

func (nopCache) Set(context.Context, models.ListingView) error {
	return nil
}

func (nopCache) Delete(context.Context, string) error {
	return nil
}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, string, any) error { return nil }

type inline struct{}

func (inline) Submit(f func()) { f() }
