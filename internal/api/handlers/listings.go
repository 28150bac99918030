package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/baharkarakas/rentacar-backend/internal/api/httpx"
	"github.com/baharkarakas/rentacar-backend/internal/api/validate"
	"github.com/baharkarakas/rentacar-backend/internal/middleware"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type ListingHandler struct {
	Svc       *services.ListingService
	Log       *slog.Logger
	UploadDir string
}

func (h *ListingHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteServiceError(w, r, h.Log, err)
}

// Create: multipart with listing fields and up to four "images" parts.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r, h.UploadDir)
	if err != nil {
		h.fail(w, r, badForm(err))
		return
	}
	defer f.cleanup(h.Log)

	patch, errs := listingPatch(f.Values, false)
	if len(errs) > 0 {
		h.fail(w, r, &services.Error{Kind: services.KindValidation, Message: "invalid listing", Details: errs})
		return
	}
	in := patch.Apply(models.Listing{})
	in.Features = services.ParseFeatures(f.Values["features"])

	l, err := h.Svc.Create(r.Context(), middleware.FromCtx(r.Context()).UserID, in, f.files("images"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, httpx.M{"message": "car listed", "listing": l})
}

// Edit: multipart or urlencoded. Only present fields change; "newImages"
// parts are appended and "imagesToDelete" is a JSON array of image URLs.
func (h *ListingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r, h.UploadDir)
	if err != nil {
		h.fail(w, r, badForm(err))
		return
	}
	defer f.cleanup(h.Log)

	// Decode errors go to the service so a non-owner still gets 403.
	patch, errs := listingPatch(f.Values, true)
	var toDelete []string
	if raw := strings.TrimSpace(f.Values.Get("imagesToDelete")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &toDelete); err != nil {
			errs = append(errs, validate.ErrField{Field: "imagesToDelete", Msg: "must be a JSON array of image URLs"})
		}
	}
	if _, ok := f.Values["features"]; ok {
		feats, err := services.SplitFeatures(f.Values.Get("features"))
		if err != nil {
			errs = append(errs, validate.ErrField{Field: "features", Msg: "must be a JSON array of strings or a comma-separated list"})
		} else {
			patch.Features = &feats
		}
	}

	l, err := h.Svc.Edit(r.Context(), chi.URLParam(r, "id"), middleware.FromCtx(r.Context()).UserID, services.EditListingInput{
		Patch:          patch,
		ImagesToDelete: toDelete,
		NewImages:      f.files("newImages"),
		FieldErrors:    errs,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"message": "car updated", "listing": l})
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.FromCtx(r.Context()).UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"message": "car deleted"})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"listing": v})
}

func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListByOwner(r.Context(), middleware.FromCtx(r.Context()).UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"listings": out})
}

func (h *ListingHandler) All(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"listings": out})
}

// listingPatch coerces form values into typed fields. With partial set,
// absent fields stay nil; otherwise absent text fields become "".
func listingPatch(v url.Values, partial bool) (models.ListingPatch, validate.Errs) {
	var (
		p    models.ListingPatch
		errs validate.Errs
	)
	text := func(key string) *string {
		if _, ok := v[key]; !ok && partial {
			return nil
		}
		s := strings.TrimSpace(v.Get(key))
		return &s
	}
	p.Title = text("title")
	p.Make = text("make")
	p.Model = text("model")
	p.Location = text("location")
	p.Description = text("description")

	if s := text("currency"); s != nil && *s != "" {
		up := strings.ToUpper(*s)
		p.Currency = &up
	}
	if s := text("transmission"); s != nil && *s != "" {
		t := models.Transmission(strings.ToLower(*s))
		p.Transmission = &t
	}
	if s := text("fuelType"); s != nil && *s != "" {
		ft := models.FuelType(strings.ToLower(*s))
		p.FuelType = &ft
	}

	var ef *validate.ErrField
	if p.Year, ef = validate.Int("year", v.Get("year")); ef != nil {
		errs = append(errs, *ef)
	}
	if p.Seats, ef = validate.Int("seats", v.Get("seats")); ef != nil {
		errs = append(errs, *ef)
	}
	if p.PricePerDay, ef = validate.Float("pricePerDay", v.Get("pricePerDay")); ef != nil {
		errs = append(errs, *ef)
	}
	if partial {
		if p.Available, ef = validate.Bool("available", v.Get("available")); ef != nil {
			errs = append(errs, *ef)
		}
	}
	return p, errs
}
