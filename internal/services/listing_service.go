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
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type ListingDeps struct {
	Listings      repo.Listings
	Users         repo.Users
	Audit         repo.AuditLogs
	Storage       Storage
	Cache         ListingCache
	Events        EventPublisher
	Async         Async
	Log           *slog.Logger
	UploadTimeout time.Duration
}

type ListingService struct {
	listings repo.Listings
	users    repo.Users
	audit    repo.AuditLogs
	cache    ListingCache
	events   EventPublisher
	async    Async
	log      *slog.Logger
	up       uploader
}

func NewListingService(d ListingDeps) *ListingService {
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Events == nil {
		d.Events = nopEvents{}
	}
	if d.Async == nil {
		d.Async = inline{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.UploadTimeout <= 0 {
		d.UploadTimeout = 30 * time.Second
	}
	log := d.Log.With("component", "listings")
	return &ListingService{
		listings: d.Listings,
		users:    d.Users,
		audit:    d.Audit,
		cache:    d.Cache,
		events:   d.Events,
		async:    d.Async,
		log:      log,
		up:       uploader{store: d.Storage, timeout: d.UploadTimeout, log: log},
	}
}

// EditListingInput is an owner's edit: scalar changes, image URLs to drop
// and new images to append. FieldErrors carries input that could not be
// decoded; it is reported only once the actor is known to be the owner.
type EditListingInput struct {
	Patch          models.ListingPatch
	ImagesToDelete []string
	NewImages      []UploadFile
	FieldErrors    validate.Errs
}

// Create uploads the images in order and persists the listing. Temp files
// are always removed; uploaded blobs are deleted again if anything fails.
func (s *ListingService) Create(ctx context.Context, ownerID string, in models.Listing, files []UploadFile) (_ models.Listing, err error) {
	ctx, span := startSpan(ctx, "ListingService.Create", attribute.String("owner_id", ownerID), attribute.Int("images", len(files)))
	defer func() { finish(span, err) }()
	defer removeTemp(s.log, files)

	in.ID = ""
	in.UserID = ownerID
	in.Images = nil
	in.Available = true
	in.ApplyDefaults()

	if err := s.up.check(files, 1, MaxImages); err != nil {
		return models.Listing{}, err
	}
	if err := in.Validate(); err != nil {
		return models.Listing{}, validationErr("invalid listing", validate.Split(err))
	}

	images, err := s.up.uploadAll(ctx, files, FolderCars)
	if err != nil {
		return models.Listing{}, err
	}
	in.Images = images

	created, err := s.listings.Create(ctx, in)
	if err != nil {
		s.up.discard(ctx, images)
		return models.Listing{}, persistenceErr("could not save listing", err)
	}

	metrics.ListingOps.WithLabelValues("create").Inc()
	s.log.Info("listing created", "listing_id", created.ID, "owner_id", ownerID, "images", len(images))
	s.record(ctx, ownerID, created.ID, "create", SubjectListingCreated, created, map[string]any{"images": len(images)})
	return created, nil
}

func (s *ListingService) Edit(ctx context.Context, id, actorID string, in EditListingInput) (_ models.Listing, err error) {
	ctx, span := startSpan(ctx, "ListingService.Edit", attribute.String("listing_id", id))
	defer func() { finish(span, err) }()
	defer removeTemp(s.log, in.NewImages)

	cur, err := s.load(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if cur.UserID != actorID {
		return models.Listing{}, forbiddenErr("only the owner may edit this listing")
	}
	if len(in.FieldErrors) > 0 {
		return models.Listing{}, validationErr("invalid listing", in.FieldErrors)
	}

	merged := in.Patch.Apply(cur)
	if err := merged.Validate(); err != nil {
		return models.Listing{}, validationErr("invalid listing", validate.Split(err))
	}
	if err := s.up.check(in.NewImages, 0, MaxImages); err != nil {
		return models.Listing{}, err
	}

	// Only URLs that belong to this listing resolve to a storage handle.
	byURL := make(map[string]models.Image, len(cur.Images))
	for _, img := range cur.Images {
		byURL[img.URL] = img
	}
	remove := []string{}
	var removed []models.Image
	for _, u := range in.ImagesToDelete {
		img, ok := byURL[u]
		if !ok {
			s.log.Debug("ignoring unknown image url", "listing_id", id, "url", u)
			continue
		}
		delete(byURL, u)
		remove = append(remove, u)
		removed = append(removed, img)
	}

	added, err := s.up.uploadAll(ctx, in.NewImages, FolderCars)
	if err != nil {
		return models.Listing{}, err
	}

	updated, err := s.listings.Update(ctx, id, in.Patch, models.ImageChanges{Remove: remove, Add: added})
	if err != nil {
		s.up.discard(ctx, added)
		if errors.Is(err, repo.ErrNotFound) {
			return models.Listing{}, notFoundErr("listing not found")
		}
		return models.Listing{}, persistenceErr("could not update listing", err)
	}

	// The record no longer references these; a failed delete only leaks a blob.
	s.up.discard(ctx, removed)
	s.invalidate(ctx, id)

	metrics.ListingOps.WithLabelValues("edit").Inc()
	s.log.Info("listing updated", "listing_id", id, "added", len(added), "removed", len(removed))
	s.record(ctx, actorID, id, "update", SubjectListingUpdated, updated, map[string]any{"added": len(added), "removed": len(removed)})
	return updated, nil
}

func (s *ListingService) Delete(ctx context.Context, id, actorID string) (err error) {
	ctx, span := startSpan(ctx, "ListingService.Delete", attribute.String("listing_id", id))
	defer func() { finish(span, err) }()

	cur, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if cur.UserID != actorID {
		return forbiddenErr("only the owner may delete this listing")
	}

	s.up.discard(ctx, cur.Images)

	if err := s.listings.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr("listing not found")
		}
		return persistenceErr("could not delete listing", err)
	}
	s.invalidate(ctx, id)

	metrics.ListingOps.WithLabelValues("delete").Inc()
	s.log.Info("listing deleted", "listing_id", id, "images", len(cur.Images))
	s.record(ctx, actorID, id, "delete", SubjectListingDeleted, map[string]string{"id": id}, nil)
	return nil
}

// Get is public and attaches the owner's name and email.
func (s *ListingService) Get(ctx context.Context, id string) (_ models.ListingView, err error) {
	ctx, span := startSpan(ctx, "ListingService.Get", attribute.String("listing_id", id))
	defer func() { finish(span, err) }()

	if _, perr := uuid.Parse(id); perr != nil {
		return models.ListingView{}, notFoundErr("listing not found")
	}
	if v, cerr := s.cache.Get(ctx, id); cerr != nil {
		s.log.Warn("listing cache read failed", "listing_id", id, "err", cerr)
	} else if v != nil {
		return *v, nil
	}

	l, err := s.load(ctx, id)
	if err != nil {
		return models.ListingView{}, err
	}
	v := models.ListingView{Listing: l}
	if owner, uerr := s.users.GetByID(ctx, l.UserID); uerr == nil {
		p := owner.Profile()
		v.Owner = &p
	} else if !errors.Is(uerr, repo.ErrNotFound) {
		return models.ListingView{}, persistenceErr("could not load listing owner", uerr)
	}

	if err := s.cache.Set(ctx, v); err != nil {
		s.log.Warn("listing cache write failed", "listing_id", id, "err", err)
	}
	return v, nil
}

func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	out, err := s.listings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, persistenceErr("could not list listings", err)
	}
	return out, nil
}

func (s *ListingService) ListAll(ctx context.Context) ([]models.Listing, error) {
	out, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, persistenceErr("could not list listings", err)
	}
	return out, nil
}

func (s *ListingService) load(ctx context.Context, id string) (models.Listing, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Listing{}, notFoundErr("listing not found")
	}
	l, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Listing{}, notFoundErr("listing not found")
	}
	if err != nil {
		return models.Listing{}, persistenceErr("could not load listing", err)
	}
	return l, nil
}

func (s *ListingService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(context.WithoutCancel(ctx), id); err != nil {
		s.log.Warn("listing cache invalidation failed", "listing_id", id, "err", err)
	}
}

// record writes the audit row and publishes the event off the request path.
func (s *ListingService) record(ctx context.Context, actorID, listingID, action, subject string, payload any, details map[string]any) {
	bg := context.WithoutCancel(ctx)
	s.async.Submit(func() {
		entry := models.AuditLog{
			EntityType: models.EntityListing,
			EntityID:   &listingID,
			ActorID:    &actorID,
			Action:     action,
			Details:    details,
		}
		if err := s.audit.Create(bg, entry); err != nil {
			s.log.Warn("audit write failed", "listing_id", listingID, "action", action, "err", err)
		}
		if err := s.events.Publish(bg, subject, payload); err != nil {
			s.log.Warn("event publish failed", "subject", subject, "listing_id", listingID, "err", err)
		}
	})
}
