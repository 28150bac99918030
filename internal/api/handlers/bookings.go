package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/baharkarakas/rentacar-backend/internal/api/httpx"
	"github.com/baharkarakas/rentacar-backend/internal/api/validate"
	"github.com/baharkarakas/rentacar-backend/internal/middleware"
	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/baharkarakas/rentacar-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type BookingHandler struct {
	Svc *services.BookingService
	Log *slog.Logger
}

type createBookingReq struct {
	ListingID      string  `json:"listingId"`
	PickupDate     string  `json:"pickupDate"`
	PickupLocation string  `json:"pickupLocation"`
	ReturnDate     string  `json:"returnDate"`
	ReturnLocation string  `json:"returnLocation"`
	TotalPrice     float64 `json:"totalPrice"`
	Status         string  `json:"status,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// Create books a listing for the authenticated user.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingReq
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	var errs validate.Errs
	from, ef := validate.Date("pickupDate", req.PickupDate)
	errs.Add(ef)
	to, ef := validate.Date("returnDate", req.ReturnDate)
	errs.Add(ef)
	if len(errs) > 0 {
		httpx.WriteServiceError(w, r, h.Log, &services.Error{Kind: services.KindValidation, Message: "invalid booking", Details: errs})
		return
	}

	b, err := h.Svc.Create(r.Context(), middleware.FromCtx(r.Context()).UserID, services.CreateBookingInput{
		ListingID:      strings.TrimSpace(req.ListingID),
		PickupDate:     from,
		PickupLocation: req.PickupLocation,
		ReturnDate:     to,
		ReturnLocation: req.ReturnLocation,
		TotalPrice:     req.TotalPrice,
		Status:         models.BookingStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Notes:          req.Notes,
	})
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusCreated, httpx.M{"booking": b})
}

// List accepts an optional ?userId= filter.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("userId")))
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"bookings": out})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.FromCtx(r.Context()).UserID
	if err := h.Svc.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"message": "booking deleted"})
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID  string `json:"listingId"`
		PickupDate string `json:"pickupDate"`
		ReturnDate string `json:"returnDate"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}

	var errs validate.Errs
	errs.Add(validate.Required("listingId", req.ListingID))
	from, ef := validate.Date("pickupDate", req.PickupDate)
	errs.Add(ef)
	to, ef := validate.Date("returnDate", req.ReturnDate)
	errs.Add(ef)
	if len(errs) > 0 {
		httpx.WriteServiceError(w, r, h.Log, &services.Error{Kind: services.KindValidation, Message: "missing required fields", Details: errs})
		return
	}

	res, err := h.Svc.CheckAvailability(r.Context(), strings.TrimSpace(req.ListingID), from, to)
	if err != nil {
		httpx.WriteServiceError(w, r, h.Log, err)
		return
	}
	httpx.OK(w, http.StatusOK, httpx.M{"available": res.Available, "conflicts": res.Conflicts})
}
