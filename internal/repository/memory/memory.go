// Package memory holds map-backed repositories used for local runs
// (DB_DRIVER=memory) and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/google/uuid"
)

// Store shares one lock across all tables so the foreign-key checks
// between them stay consistent.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	listings map[string]models.Listing
	bookings map[string]models.Booking
	audit    []models.AuditLog
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    map[string]models.User{},
		listings: map[string]models.Listing{},
		bookings: map[string]models.Booking{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func NewRepositories(s *Store) repository.Repositories {
	return repository.Repositories{
		Users:     usersRepo{s},
		Listings:  listingsRepo{s},
		Bookings:  bookingsRepo{s},
		AuditLogs: auditLogsRepo{s},
	}
}

// AuditLogs returns a copy of every recorded audit row.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditLog(nil), s.audit...)
}

func cloneListing(l models.Listing) models.Listing {
	l.Images = append([]models.Image{}, l.Images...)
	l.Features = append([]string{}, l.Features...)
	return l
}

// ---- users ----

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return models.User{}, repository.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return u, nil
}

func (r usersRepo) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r usersRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (r usersRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r usersRepo) UpdateImage(_ context.Context, id, image string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	u.Image = image
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return u, nil
}

// ---- listings ----

type listingsRepo struct{ s *Store }

func (r listingsRepo) Create(_ context.Context, l models.Listing) (models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[l.UserID]; !ok {
		return models.Listing{}, repository.ErrReferenced
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, ok := r.s.listings[l.ID]; ok {
		return models.Listing{}, repository.ErrConflict
	}
	l = cloneListing(l)
	l.CreatedAt = r.s.now()
	l.UpdatedAt = l.CreatedAt
	r.s.listings[l.ID] = l
	return cloneListing(l), nil
}

func (r listingsRepo) GetByID(_ context.Context, id string) (models.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.listings[id]
	if !ok {
		return models.Listing{}, repository.ErrNotFound
	}
	return cloneListing(l), nil
}

func (r listingsRepo) ListByOwner(_ context.Context, userID string) ([]models.Listing, error) {
	return r.filter(func(l models.Listing) bool { return l.UserID == userID }), nil
}

func (r listingsRepo) ListAll(_ context.Context) ([]models.Listing, error) {
	return r.filter(func(models.Listing) bool { return true }), nil
}

func (r listingsRepo) filter(keep func(models.Listing) bool) []models.Listing {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Listing{}
	for _, l := range r.s.listings {
		if keep(l) {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r listingsRepo) Update(_ context.Context, id string, p models.ListingPatch, ch models.ImageChanges) (models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return models.Listing{}, repository.ErrNotFound
	}
	l = p.Apply(cloneListing(l))
	l.Images = ch.Apply(l.Images)
	l.UpdatedAt = r.s.now()
	r.s.listings[id] = l
	return cloneListing(l), nil
}

func (r listingsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.listings, id)
	for bid, b := range r.s.bookings {
		if b.ListingID == id {
			delete(r.s.bookings, bid)
		}
	}
	return nil
}

// ---- bookings ----

type bookingsRepo struct{ s *Store }

func (r bookingsRepo) Create(_ context.Context, b models.Booking) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[b.UserID]; !ok {
		return models.Booking{}, repository.ErrReferenced
	}
	if _, ok := r.s.listings[b.ListingID]; !ok {
		return models.Booking{}, repository.ErrReferenced
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	r.s.bookings[b.ID] = b
	return b, nil
}

func (r bookingsRepo) GetByID(_ context.Context, id string) (models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (r bookingsRepo) List(_ context.Context, userID string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return userID == "" || b.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r bookingsRepo) FindOverlapping(_ context.Context, listingID string, from, to time.Time) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool {
		return b.ListingID == listingID && b.Status.Blocking() && b.Overlaps(from, to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PickupDate.Before(out[j].PickupDate) })
	return out, nil
}

func (r bookingsRepo) filter(keep func(models.Booking) bool) []models.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r bookingsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.bookings, id)
	return nil
}

// ---- audit ----

type auditLogsRepo struct{ s *Store }

func (r auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = r.s.now()
	r.s.audit = append(r.s.audit, l)
	return nil
}
