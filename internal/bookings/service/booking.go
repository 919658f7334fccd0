package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountserrors "turfbook/internal/accounts/errors"
	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/internal/bookings/repository"
	"turfbook/internal/bookings/validator"
	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/model"
)

// sideEffectTimeout bounds the payment and notification hooks so they never
// hold up the booking response.
const sideEffectTimeout = 5 * time.Second

// TurfDirectory resolves a turf ID; turfserrors.ErrNotFound when absent.
type TurfDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Turf, error)
}

// AccountDirectory resolves a requester; accountserrors.ErrNotFound when
// absent.
type AccountDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

// PaymentGateway creates a payment order tied to a booking and returns a
// redirect URL the client completes the payment on. The booking ID rides on
// the order so the provider's webhook can find its way back.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, bookingID string, amount int64, currency string) (string, error)
}

// OwnerNotifier delivers a best-effort booking alert to the turf's owner.
type OwnerNotifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking, ownerID string) error
}

type BookingService interface {
	// Reserve turns a booking request into a committed reservation or a
	// caller-correctable rejection, with no partial state visible to other
	// callers. The returned string is the payment redirect URL when an order
	// was requested and could be created, "" otherwise.
	Reserve(ctx context.Context, req *model.BookingRequest) (*model.Booking, string, error)

	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	BookedTimePoints(ctx context.Context, turfID, date string, granularityMin int) ([]string, error)
	ConfirmPayment(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	turfs     TurfDirectory
	accounts  AccountDirectory
	payments  PaymentGateway
	notifier  OwnerNotifier
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	turfs TurfDirectory,
	accounts AccountDirectory,
	payments PaymentGateway,
	notifier OwnerNotifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		turfs:     turfs,
		accounts:  accounts,
		payments:  payments,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Reserve(ctx context.Context, req *model.BookingRequest) (*model.Booking, string, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, "", err
	}

	turf, err := s.resolveTurf(ctx, req.TurfID)
	if err != nil {
		return nil, "", err
	}
	user, err := s.resolveUser(ctx, req.UserID)
	if err != nil {
		return nil, "", err
	}

	if req.StartTime < turf.OpenTime || req.EndTime > turf.CloseTime {
		return nil, "", apperrors.Validation("requested interval is outside the turf's operating hours", map[string]any{
			"open_time":  turf.OpenTime,
			"close_time": turf.CloseTime,
		})
	}

	// Optimistic pre-check. The commit below re-checks under the slot lock,
	// so a clean result here is a fast path, not the authority.
	conflicts, err := s.repo.FindConflicts(ctx, req.TurfID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		s.cfg.Log.Error("Failed to check for conflicting bookings", "turf_id", req.TurfID, "date", req.Date, "error", err)
		return nil, "", apperrors.StoreUnavailable("Failed to check slot availability", err)
	}
	if len(conflicts) > 0 {
		return nil, "", slotTaken(conflicts[0])
	}

	booking := s.buildBooking(req, turf, user)

	if err := s.repo.Commit(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrTimeConflict) {
			// Lost the race: another request committed an overlapping
			// interval between our pre-check and the locked re-check. Same
			// outcome as a pre-check hit, never a server error.
			return nil, "", apperrors.SlotTaken("Slot was booked by another request")
		}
		s.cfg.Log.Error("Failed to commit booking", "turf_id", req.TurfID, "date", req.Date, "error", err)
		return nil, "", apperrors.StoreUnavailable("Failed to commit booking", err)
	}

	s.cfg.Log.Info("Booking committed",
		"id", booking.ID,
		"turf_id", booking.TurfID,
		"user_id", booking.UserID,
		"date", booking.Date,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)

	s.notifyOwnerAsync(ctx, booking, turf.OwnerID)

	paymentURL := ""
	if req.CreatePaymentOrder {
		paymentURL = s.createPaymentOrder(ctx, booking)
	}

	return booking, paymentURL, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.StoreUnavailable("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings for user", "user_id", userID, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) BookedTimePoints(ctx context.Context, turfID, date string, granularityMin int) ([]string, error) {
	if turfID == "" || date == "" {
		return nil, apperrors.InvalidInput("Turf ID and date are required")
	}
	if granularityMin <= 0 {
		granularityMin = s.cfg.SlotGranularityMin
	}

	points, err := s.repo.BookedTimePoints(ctx, turfID, date, granularityMin)
	if err != nil {
		s.cfg.Log.Error("Failed to derive booked time points", "turf_id", turfID, "date", date, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to retrieve booked slots", err)
	}
	return points, nil
}

// ConfirmPayment flips is_paid for a booking. Keyed by the payment
// provider's callback, it is idempotent: confirming twice is a no-op.
func (s *bookingService) ConfirmPayment(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	err := s.repo.MarkPaid(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.StoreUnavailable("Failed to confirm payment", err)
	}

	s.cfg.Log.Info("Booking marked paid", "id", bookingID)
	return nil
}

// --- Helpers ---

func (s *bookingService) checkRequest(req *model.BookingRequest) error {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"turf_id":    req.TurfID,
		"user_id":    req.UserID,
		"date":       req.Date,
		"start_time": req.StartTime,
		"end_time":   req.EndTime,
	} {
		if value == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return apperrors.InvalidInput("Missing required booking fields").WithDetails(missing)
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	if req.StartTime >= req.EndTime {
		return apperrors.InvalidInterval(req.StartTime, req.EndTime)
	}

	return nil
}

func (s *bookingService) resolveTurf(ctx context.Context, id string) (*model.Turf, error) {
	turf, err := s.turfs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, turfserrors.ErrNotFound) || errors.Is(err, turfserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Turf", id)
		}
		return nil, apperrors.StoreUnavailable("Failed to resolve turf", err)
	}
	return turf, nil
}

func (s *bookingService) resolveUser(ctx context.Context, id string) (*model.Account, error) {
	user, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, accountserrors.ErrNotFound) || errors.Is(err, accountserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.StoreUnavailable("Failed to resolve user", err)
	}
	return user, nil
}

func (s *bookingService) buildBooking(req *model.BookingRequest, turf *model.Turf, user *model.Account) *model.Booking {
	price := req.Price
	if price <= 0 {
		price = turf.Price
	}

	return &model.Booking{
		TurfID:    req.TurfID,
		UserID:    req.UserID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Price:     price,
		IsPaid:    false,
		TurfDetails: model.TurfSnapshot{
			Name:     turf.Name,
			Location: turf.Location,
			Price:    turf.Price,
		},
		UserDetails: model.UserSnapshot{
			Name:  user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
	}
}

// notifyOwnerAsync fires the owner alert without blocking the response. A
// delivery failure is logged and never affects the committed booking.
func (s *bookingService) notifyOwnerAsync(ctx context.Context, booking *model.Booking, ownerID string) {
	if s.notifier == nil {
		return
	}

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.BookingCreated(hookCtx, booking, ownerID); err != nil {
			s.cfg.Log.Warn("Owner notification failed",
				"booking_id", booking.ID,
				"owner_id", ownerID,
				"error", err,
			)
		}
	}()
}

// createPaymentOrder asks the gateway for a redirect URL. The booking stands
// regardless; on failure the caller simply gets no payment link and can
// request one again later.
func (s *bookingService) createPaymentOrder(ctx context.Context, booking *model.Booking) string {
	if s.payments == nil {
		return ""
	}

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	url, err := s.payments.CreateOrder(hookCtx, booking.ID, booking.Price, s.cfg.PaymentCurrency)
	if err != nil {
		s.cfg.Log.Warn("Payment order creation failed",
			"booking_id", booking.ID,
			"user_id", booking.UserID,
			"amount", booking.Price,
			"error", err,
		)
		return ""
	}
	return url
}

func slotTaken(conflict *model.Booking) error {
	return apperrors.SlotTaken(fmt.Sprintf(
		"Slot overlaps an existing booking (%s - %s)",
		conflict.StartTime, conflict.EndTime,
	))
}
