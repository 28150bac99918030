package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/api/validate"
	"github.com/baharkarakas/rentacar-backend/internal/metrics"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	repo "github.com/baharkarakas/rentacar-backend/internal/repository"
	"go.opentelemetry.io/otel/attribute"
)

type BookingDeps struct {
	Bookings repo.Bookings
	Listings repo.Listings
	Users    repo.Users
	Audit    repo.AuditLogs
	Events   EventPublisher
	Async    Async
	Log      *slog.Logger
}

type BookingService struct {
	bookings repo.Bookings
	listings repo.Listings
	users    repo.Users
	audit    repo.AuditLogs
	events   EventPublisher
	async    Async
	log      *slog.Logger
}

func NewBookingService(d BookingDeps) *BookingService {
	if d.Events == nil {
		d.Events = nopEvents{}
	}
	if d.Async == nil {
		d.Async = inline{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &BookingService{
		bookings: d.Bookings,
		listings: d.Listings,
		users:    d.Users,
		audit:    d.Audit,
		events:   d.Events,
		async:    d.Async,
		log:      d.Log.With("component", "bookings"),
	}
}

type CreateBookingInput struct {
	ListingID      string
	PickupDate     time.Time
	PickupLocation string
	ReturnDate     time.Time
	ReturnLocation string
	TotalPrice     float64
	Status         models.BookingStatus
	Notes          string
}

// Availability reports whether a range is free and, if not, which
// bookings block it.
type Availability struct {
	Available bool             `json:"available"`
	Conflicts []models.Booking `json:"conflicts"`
}

// Create stores a booking for an existing listing. It does not check
// availability; callers check first.
func (s *BookingService) Create(ctx context.Context, userID string, in CreateBookingInput) (_ models.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.Create", attribute.String("listing_id", in.ListingID))
	defer func() { finish(span, err) }()

	if ef := validate.Required("listingId", in.ListingID); ef != nil {
		return models.Booking{}, validationErr("invalid booking", validate.Errs{*ef})
	}
	b := models.Booking{
		UserID:         userID,
		ListingID:      in.ListingID,
		PickupDate:     in.PickupDate,
		PickupLocation: in.PickupLocation,
		ReturnDate:     in.ReturnDate,
		ReturnLocation: in.ReturnLocation,
		TotalPrice:     in.TotalPrice,
		Status:         in.Status,
		Notes:          in.Notes,
	}
	if err := b.Validate(); err != nil {
		return models.Booking{}, validationErr("invalid booking", validate.Split(err))
	}
	if err := s.requireListing(ctx, in.ListingID); err != nil {
		return models.Booking{}, err
	}

	created, err := s.bookings.Create(ctx, b)
	if errors.Is(err, repo.ErrReferenced) {
		return models.Booking{}, notFoundErr("listing not found")
	}
	if err != nil {
		return models.Booking{}, persistenceErr("could not save booking", err)
	}

	metrics.BookingOps.WithLabelValues("create").Inc()
	s.log.Info("booking created", "booking_id", created.ID, "listing_id", created.ListingID, "user_id", userID)
	s.record(ctx, userID, created.ID, "create", SubjectBookingCreated, created)
	return created, nil
}

// CheckAvailability applies the inclusive overlap test against bookings in
// a blocking status on the same listing.
func (s *BookingService) CheckAvailability(ctx context.Context, listingID string, from, to time.Time) (_ Availability, err error) {
	ctx, span := startSpan(ctx, "BookingService.CheckAvailability", attribute.String("listing_id", listingID))
	defer func() { finish(span, err) }()

	var errs validate.Errs
	errs.Add(validate.Required("listingId", listingID))
	if from.IsZero() {
		errs.Add(&validate.ErrField{Field: "pickupDate", Msg: "required"})
	}
	if to.IsZero() {
		errs.Add(&validate.ErrField{Field: "returnDate", Msg: "required"})
	}
	if len(errs) == 0 && from.After(to) {
		errs.Add(&validate.ErrField{Field: "pickupDate", Msg: "must not be after returnDate"})
	}
	if len(errs) > 0 {
		return Availability{}, validationErr("listingId, pickupDate and returnDate are required", errs)
	}
	if err := s.requireListing(ctx, listingID); err != nil {
		return Availability{}, err
	}

	conflicts, err := s.bookings.FindOverlapping(ctx, listingID, from, to)
	if err != nil {
		return Availability{}, persistenceErr("could not check availability", err)
	}
	res := Availability{Available: len(conflicts) == 0, Conflicts: conflicts}
	if res.Available {
		metrics.AvailabilityChecks.WithLabelValues("available").Inc()
	} else {
		metrics.AvailabilityChecks.WithLabelValues("conflict").Inc()
	}
	return res, nil
}

// List returns bookings, optionally for one user, with listing and user
// attached. References that no longer resolve are left nil.
func (s *BookingService) List(ctx context.Context, userID string) (_ []models.BookingView, err error) {
	ctx, span := startSpan(ctx, "BookingService.List", attribute.String("user_id", userID))
	defer func() { finish(span, err) }()

	if userID != "" && !validate.IsUUID(userID) {
		return nil, validationErr("invalid userId", validate.Errs{{Field: "userId", Msg: "must be a valid id"}})
	}
	bookings, err := s.bookings.List(ctx, userID)
	if err != nil {
		return nil, persistenceErr("could not list bookings", err)
	}

	listings := map[string]*models.Listing{}
	users := map[string]*models.User{}
	out := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		v := models.BookingView{Booking: b}
		l, ok := listings[b.ListingID]
		if !ok {
			got, err := s.listings.GetByID(ctx, b.ListingID)
			switch {
			case err == nil:
				l = &got
			case !errors.Is(err, repo.ErrNotFound):
				return nil, persistenceErr("could not load booking listing", err)
			}
			listings[b.ListingID] = l
		}
		u, ok := users[b.UserID]
		if !ok {
			got, err := s.users.GetByID(ctx, b.UserID)
			switch {
			case err == nil:
				u = &got
			case !errors.Is(err, repo.ErrNotFound):
				return nil, persistenceErr("could not load booking user", err)
			}
			users[b.UserID] = u
		}
		v.Listing, v.User = l, u
		out = append(out, v)
	}
	return out, nil
}

// Delete removes a booking by id. Any authenticated user may delete; the
// actor is logged and audited.
func (s *BookingService) Delete(ctx context.Context, actorID, id string) (err error) {
	ctx, span := startSpan(ctx, "BookingService.Delete", attribute.String("booking_id", id))
	defer func() { finish(span, err) }()

	if !validate.IsUUID(id) {
		return validationErr("invalid booking id", validate.Errs{{Field: "id", Msg: "must be a valid id"}})
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr("booking not found")
		}
		return persistenceErr("could not delete booking", err)
	}

	metrics.BookingOps.WithLabelValues("delete").Inc()
	s.log.Info("booking deleted", "booking_id", id, "actor_id", actorID)
	s.record(ctx, actorID, id, "delete", SubjectBookingDeleted, map[string]string{"id": id, "actor_id": actorID})
	return nil
}

func (s *BookingService) requireListing(ctx context.Context, listingID string) error {
	if !validate.IsUUID(listingID) {
		return notFoundErr("listing not found")
	}
	_, err := s.listings.GetByID(ctx, listingID)
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundErr("listing not found")
	}
	if err != nil {
		return persistenceErr("could not load listing", err)
	}
	return nil
}

func (s *BookingService) record(ctx context.Context, actorID, bookingID, action, subject string, payload any) {
	bg := context.WithoutCancel(ctx)
	s.async.Submit(func() {
		entry := models.AuditLog{
			EntityType: models.EntityBooking,
			EntityID:   &bookingID,
			ActorID:    &actorID,
			Action:     action,
		}
		if err := s.audit.Create(bg, entry); err != nil {
			s.log.Warn("audit write failed", "booking_id", bookingID, "action", action, "err", err)
		}
		if err := s.events.Publish(bg, subject, payload); err != nil {
			s.log.Warn("event publish failed", "subject", subject, "booking_id", bookingID, "err", err)
		}
	})
}
