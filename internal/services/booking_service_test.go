package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingInput(listingID string, from, to time.Time) CreateBookingInput {
	return CreateBookingInput{
		ListingID:      listingID,
		PickupDate:     from,
		PickupLocation: "Airport",
		ReturnDate:     to,
		ReturnLocation: "Downtown",
		TotalPrice:     150,
	}
}

func TestCreateBookingDefaultsToPending(t *testing.T) {
	f := newFixture(t)
	l := f.mustListing(t, 1)

	b, err := f.bookings.Create(context.Background(), f.other.ID, bookingInput(l.ID, day(1), day(5)))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, f.other.ID, b.UserID)
	assert.Equal(t, l.ID, b.ListingID)
	assert.Contains(t, f.events.Subjects(), SubjectBookingCreated)
}

func TestCreateBookingRequiresExistingListing(t *testing.T) {
	f := newFixture(t)

	_, err := f.bookings.Create(context.Background(), f.other.ID, bookingInput(uuid.NewString(), day(1), day(2)))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.bookings.Create(context.Background(), f.other.ID, bookingInput("bogus", day(1), day(2)))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.bookings.Create(context.Background(), f.other.ID, bookingInput("", day(1), day(2)))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	l := f.mustListing(t, 1)

	cases := map[string]func(in *CreateBookingInput){
		"pickup after return": func(in *CreateBookingInput) { in.PickupDate, in.ReturnDate = day(5), day(1) },
		"missing pickup date": func(in *CreateBookingInput) { in.PickupDate = time.Time{} },
		"missing location":    func(in *CreateBookingInput) { in.ReturnLocation = "  " },
		"unknown status":      func(in *CreateBookingInput) { in.Status = "approved" },
		"notes too long":      func(in *CreateBookingInput) { in.Notes = strings.Repeat("n", models.MaxNotesLen+1) },
		"negative price":      func(in *CreateBookingInput) { in.TotalPrice = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := bookingInput(l.ID, day(1), day(5))
			mutate(&in)
			_, err := f.bookings.Create(context.Background(), f.other.ID, in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	// same-day rental is a valid range
	_, err := f.bookings.Create(context.Background(), f.other.ID, bookingInput(l.ID, day(7), day(7)))
	require.NoError(t, err)
}

func TestCheckAvailabilityOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.mustListing(t, 1)

	in := bookingInput(l.ID, day(3), day(5))
	in.Status = models.BookingConfirmed
	a, err := f.bookings.Create(ctx, f.other.ID, in)
	require.NoError(t, err)

	res, err := f.bookings.CheckAvailability(ctx, l.ID, day(4), day(6))
	require.NoError(t, err)
	assert.False(t, res.Available)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, a.ID, res.Conflicts[0].ID)

	res, err = f.bookings.CheckAvailability(ctx, l.ID, day(6), day(8))
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Conflicts)

	res, err = f.bookings.CheckAvailability(ctx, l.ID, day(1), day(2))
	require.NoError(t, err)
	assert.True(t, res.Available)

	// both ends are inclusive
	for _, r := range [][2]time.Time{{day(5), day(7)}, {day(1), day(3)}, {day(2), day(9)}, {day(4), day(4)}} {
		res, err = f.bookings.CheckAvailability(ctx, l.ID, r[0], r[1])
		require.NoError(t, err)
		assert.Falsef(t, res.Available, "%v..%v", r[0], r[1])
	}
}

func TestCheckAvailabilityIgnoresNonBlockingAndOtherListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.mustListing(t, 1)
	other := f.mustListing(t, 1)

	for _, st := range []models.BookingStatus{models.BookingCancelled, models.BookingCompleted} {
		in := bookingInput(l.ID, day(3), day(5))
		in.Status = st
		_, err := f.bookings.Create(ctx, f.other.ID, in)
		require.NoError(t, err)
	}
	_, err := f.bookings.Create(ctx, f.other.ID, bookingInput(other.ID, day(3), day(5)))
	require.NoError(t, err)

	res, err := f.bookings.CheckAvailability(ctx, l.ID, day(3), day(5))
	require.NoError(t, err)
	assert.True(t, res.Available)

	res, err = f.bookings.CheckAvailability(ctx, other.ID, day(3), day(5))
	require.NoError(t, err)
	assert.False(t, res.Available, "pending bookings block")
}

func TestCheckAvailabilityValidation(t *testing.T) {
	f := newFixture(t)
	l := f.mustListing(t, 1)
	ctx := context.Background()

	_, err := f.bookings.CheckAvailability(ctx, "", day(1), day(2))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.bookings.CheckAvailability(ctx, l.ID, time.Time{}, day(2))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.bookings.CheckAvailability(ctx, l.ID, day(1), time.Time{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.bookings.CheckAvailability(ctx, l.ID, day(3), day(1))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.bookings.CheckAvailability(ctx, uuid.NewString(), day(1), day(2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBookingsPopulatesAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.mustListing(t, 1)

	_, err := f.bookings.Create(ctx, f.other.ID, bookingInput(l.ID, day(1), day(2)))
	require.NoError(t, err)
	_, err = f.bookings.Create(ctx, f.owner.ID, bookingInput(l.ID, day(10), day(12)))
	require.NoError(t, err)

	all, err := f.bookings.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, v := range all {
		require.NotNil(t, v.Listing)
		require.NotNil(t, v.User)
		assert.Equal(t, l.Title, v.Listing.Title)
		assert.Equal(t, v.UserID, v.User.ID)
	}

	mine, err := f.bookings.List(ctx, f.other.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Other", mine[0].User.Name)

	_, err = f.bookings.List(ctx, "12345")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.mustListing(t, 1)
	b, err := f.bookings.Create(ctx, f.other.ID, bookingInput(l.ID, day(1), day(2)))
	require.NoError(t, err)

	assert.ErrorIs(t, f.bookings.Delete(ctx, f.owner.ID, "nope"), ErrValidation)
	assert.ErrorIs(t, f.bookings.Delete(ctx, f.owner.ID, uuid.NewString()), ErrNotFound)

	require.NoError(t, f.bookings.Delete(ctx, f.owner.ID, b.ID))
	assert.ErrorIs(t, f.bookings.Delete(ctx, f.owner.ID, b.ID), ErrNotFound)

	var deleted *models.AuditLog
	for _, entry := range f.store.AuditLogs() {
		if entry.EntityType == models.EntityBooking && entry.Action == "delete" {
			e := entry
			deleted = &e
		}
	}
	require.NotNil(t, deleted)
	assert.Equal(t, f.owner.ID, *deleted.ActorID)
}

func TestSignupListBookAndCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.users.Register(ctx, "U", "u@example.com", "password123")
	require.NoError(t, err)

	in := validListing()
	in.Description = strings.Repeat("d", 50)
	l, err := f.listings.Create(ctx, sess.User.ID, in, tempImages(t, 1))
	require.NoError(t, err)
	assert.Equal(t, "Test Car", l.Title)
	assert.True(t, l.Available)

	b, err := f.bookings.Create(ctx, sess.User.ID, bookingInput(l.ID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)

	res, err := f.bookings.CheckAvailability(ctx, l.ID,
		time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, res.Available)
}
