package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"turfbook/internal/bookings/service"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	cfg     *config.Config
}

func NewBookingHandler(service service.BookingService, cfg *config.Config) *BookingHandler {
	return &BookingHandler{service: service, cfg: cfg}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	// The listing is principal-scoped, so it lives on the collection path
	// itself; a static sibling of /bookings/:id would conflict in the router.
	router.POST("/api/v1/bookings", middleware.Authenticated(h.cfg.JWTSecret, h.Create))
	router.GET("/api/v1/bookings", middleware.Authenticated(h.cfg.JWTSecret, h.ListMine))
	router.GET("/api/v1/bookings/:id", middleware.Authenticated(h.cfg.JWTSecret, h.GetByID))
	router.GET("/api/v1/slots", h.BookedSlots)
}

// bookingResponse pairs the committed booking with the payment redirect URL,
// which is empty when no order was requested or the gateway was unavailable.
type bookingResponse struct {
	Booking    *model.Booking `json:"booking"`
	PaymentURL string         `json:"payment_url,omitempty"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}
	req.UserID = principal.ID

	booking, paymentURL, err := h.service.Reserve(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, bookingResponse{Booking: booking, PaymentURL: paymentURL})
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Bookings are visible to their creator and to owners.
	if booking.UserID != principal.ID && principal.Role != model.RoleOwner {
		httputil.WriteError(w, apperrors.Forbidden("You do not have access to this booking"))
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	bookings, err := h.service.ListByUser(r.Context(), principal.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, bookings)
}

// BookedSlots returns the occupied time points for a turf on a date, the
// shape the booking form renders disabled slots from.
func (h *BookingHandler) BookedSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	turfID := query.Get("turf_id")
	date := query.Get("date")

	granularity := 0
	if raw := query.Get("granularity"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, apperrors.InvalidInput("granularity must be a positive integer of minutes"))
			return
		}
		granularity = parsed
	}

	points, err := h.service.BookedTimePoints(r.Context(), turfID, date, granularity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"turf_id":      turfID,
		"date":         date,
		"booked_slots": points,
	})
}
