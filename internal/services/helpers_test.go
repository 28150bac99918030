package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/baharkarakas/rentacar-backend/internal/auth"
	"github.com/baharkarakas/rentacar-backend/internal/logger"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/baharkarakas/rentacar-backend/internal/repository/memory"
	"github.com/baharkarakas/rentacar-backend/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	repos    repository.Repositories
	blobs    *storage.Memory
	cache    *recordingCache
	events   *recordingEvents
	listings *ListingService
	bookings *BookingService
	users    *UserService
	owner    models.User
	other    models.User
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithStorage(t, nil)
}

// newFixtureWithStorage wires the services; a nil store means in-memory blobs.
func newFixtureWithStorage(t *testing.T, store Storage) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		blobs:  storage.NewMemory(""),
		cache:  newRecordingCache(),
		events: &recordingEvents{},
	}
	if store == nil {
		store = f.blobs
	}
	f.repos = memory.NewRepositories(f.store)
	log := logger.Discard()
	f.listings = NewListingService(ListingDeps{
		Listings:      f.repos.Listings,
		Users:         f.repos.Users,
		Audit:         f.repos.AuditLogs,
		Storage:       store,
		Cache:         f.cache,
		Events:        f.events,
		Log:           log,
		UploadTimeout: time.Second,
	})
	f.bookings = NewBookingService(BookingDeps{
		Bookings: f.repos.Bookings,
		Listings: f.repos.Listings,
		Users:    f.repos.Users,
		Audit:    f.repos.AuditLogs,
		Events:   f.events,
		Log:      log,
	})
	f.users = NewUserService(UserDeps{
		Users:   f.repos.Users,
		Audit:   f.repos.AuditLogs,
		Tokens:  auth.NewTokenManager("acc", "ref", time.Minute, time.Hour),
		Storage: store,
		Log:     log,
	})
	f.owner = f.mustUser(t, "Owner", "owner@example.com")
	f.other = f.mustUser(t, "Other", "other@example.com")
	return f
}

func (f *fixture) mustUser(t *testing.T, name, email string) models.User {
	t.Helper()
	u, err := f.repos.Users.Create(context.Background(), models.User{Name: name, Email: email, PasswordHash: "x", Role: models.RoleUser})
	require.NoError(t, err)
	return u
}

func (f *fixture) mustListing(t *testing.T, images int) models.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), f.owner.ID, validListing(), tempImages(t, images))
	require.NoError(t, err)
	return l
}

func validListing() models.Listing {
	return models.Listing{
		Title:       "Test Car",
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        2020,
		PricePerDay: 49.99,
		Location:    "Istanbul",
		Description: "Clean, reliable compact sedan with low mileage ok",
		Features:    []string{"Sunroof", "GPS"},
	}
}

func tempImage(t *testing.T, name, contentType string) UploadFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	data := []byte("fake image " + name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return UploadFile{Path: p, Name: name, ContentType: contentType, Size: int64(len(data))}
}

func tempImages(t *testing.T, n int) []UploadFile {
	out := make([]UploadFile, n)
	for i := range out {
		out[i] = tempImage(t, fmt.Sprintf("car-%d.jpg", i), "image/jpeg")
	}
	return out
}

func requireRemoved(t *testing.T, files []UploadFile) {
	t.Helper()
	for _, f := range files {
		_, err := os.Stat(f.Path)
		require.Truef(t, os.IsNotExist(err), "temp file %s still exists", f.Path)
	}
}

// flakyStorage fails the nth upload (1-based) and optionally every delete.
type flakyStorage struct {
	*storage.Memory
	mu          sync.Mutex
	uploads     int
	failUpload  int
	failDeletes bool
}

func (s *flakyStorage) Upload(ctx context.Context, localPath, folder string) (models.Image, error) {
	s.mu.Lock()
	s.uploads++
	n := s.uploads
	s.mu.Unlock()
	if n == s.failUpload {
		return models.Image{}, errors.New("storage unavailable")
	}
	return s.Memory.Upload(ctx, localPath, folder)
}

func (s *flakyStorage) Delete(ctx context.Context, handle string) error {
	if s.failDeletes {
		return errors.New("storage unavailable")
	}
	return s.Memory.Delete(ctx, handle)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, localPath, folder string) (models.Image, error) {
	args := m.Called(ctx, localPath, folder)
	return args.Get(0).(models.Image), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

type failingListings struct {
	repository.Listings
	createErr error
	updateErr error
}

func (r failingListings) Create(ctx context.Context, l models.Listing) (models.Listing, error) {
	if r.createErr != nil {
		return models.Listing{}, r.createErr
	}
	return r.Listings.Create(ctx, l)
}

func (r failingListings) Update(ctx context.Context, id string, p models.ListingPatch, ch models.ImageChanges) (models.Listing, error) {
	if r.updateErr != nil {
		return models.Listing{}, r.updateErr
	}
	return r.Listings.Update(ctx, id, p, ch)
}

type recordingCache struct {
	mu      sync.Mutex
	items   map[string]models.ListingView
	deletes []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{items: map[string]models.ListingView{}}
}

func (c *recordingCache) Get(_ context.Context, id string) (*models.ListingView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (c *recordingCache) Set(_ context.Context, v models.ListingView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[v.ID] = v
	return nil
}

func (c *recordingCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.deletes = append(c.deletes, id)
	return nil
}

type recordingEvents struct {
	mu       sync.Mutex
	subjects []string
}

func (e *recordingEvents) Publish(_ context.Context, subject string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subjects = append(e.subjects, subject)
	return nil
}

func (e *recordingEvents) Subjects() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.subjects...)
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}
