package service

import (
	"context"
	"errors"

	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/internal/turfs/repository"
	"turfbook/internal/turfs/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/model"
	"turfbook/pkg/sanitizer"
	"turfbook/pkg/timeslot"
)

// BookedTurfFinder reports which turfs are busy at a time point, used to
// filter availability search results.
type BookedTurfFinder interface {
	DistinctBookedTurfs(ctx context.Context, date, timePoint string) ([]string, error)
}

// SearchQuery narrows an availability search. Location matches as a
// substring; Date and TimePoint together exclude turfs already booked at
// that moment.
type SearchQuery struct {
	Location  string
	MaxPrice  int64
	Date      string
	TimePoint string
}

type TurfService interface {
	Create(ctx context.Context, turf *model.Turf) (string, error)
	GetByID(ctx context.Context, id string) (*model.Turf, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.Turf, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error)
	Search(ctx context.Context, query SearchQuery) ([]*model.Turf, error)
	Locations(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id, ownerID string, update *model.TurfUpdate) error
	Delete(ctx context.Context, id, ownerID string) error
}

type turfService struct {
	repo      repository.TurfRepository
	bookings  BookedTurfFinder
	validator *validator.TurfValidator
	cfg       *config.Config
}

func NewTurfService(repo repository.TurfRepository, bookings BookedTurfFinder, validator *validator.TurfValidator, cfg *config.Config) TurfService {
	return &turfService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *turfService) Create(ctx context.Context, turf *model.Turf) (string, error) {
	if turf == nil {
		return "", apperrors.InvalidInput("Turf cannot be empty")
	}

	turf.Name = sanitizer.NormalizeName(turf.Name)
	turf.Location = sanitizer.NormalizeLocation(turf.Location)
	turf.Price = sanitizer.NormalizePrice(turf.Price)

	if err := s.validator.Validate(turf); err != nil {
		s.cfg.Log.Warn("Turf validation failed", "error", err)
		return "", apperrors.Validation("Invalid turf", map[string]any{"error": err.Error()})
	}

	id, err := s.repo.Create(ctx, turf)
	if err != nil {
		s.cfg.Log.Error("Failed to create turf", "name", turf.Name, "error", err)
		return "", apperrors.StoreUnavailable("Failed to create turf", err)
	}

	s.cfg.Log.Info("Turf created", "id", id, "name", turf.Name, "owner_id", turf.OwnerID)
	return id, nil
}

func (s *turfService) GetByID(ctx context.Context, id string) (*model.Turf, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Turf ID cannot be empty")
	}

	turf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return turf, nil
}

func (s *turfService) List(ctx context.Context, limit int, offset int64) ([]*model.Turf, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	turfs, total, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list turfs", "error", err)
		return nil, 0, apperrors.StoreUnavailable("Failed to retrieve turfs", err)
	}
	return turfs, total, nil
}

func (s *turfService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	turfs, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list turfs by owner", "owner_id", ownerID, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to retrieve turfs", err)
	}
	return turfs, nil
}

// Search filters by location and price, then drops turfs already holding a
// booking that covers the requested time point.
func (s *turfService) Search(ctx context.Context, query SearchQuery) ([]*model.Turf, error) {
	query.Location = sanitizer.NormalizeLocation(query.Location)

	if query.TimePoint != "" && !timeslot.ValidTime(query.TimePoint) {
		return nil, apperrors.InvalidInput("time must be a zero-padded HH:MM time of day")
	}
	if query.TimePoint != "" && !timeslot.ValidDate(query.Date) {
		return nil, apperrors.InvalidInput("date must be a YYYY-MM-DD calendar date")
	}

	turfs, err := s.repo.FindByLocation(ctx, query.Location, query.MaxPrice)
	if err != nil {
		s.cfg.Log.Error("Failed to search turfs", "location", query.Location, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to search turfs", err)
	}

	if query.TimePoint == "" {
		return turfs, nil
	}

	busyIDs, err := s.bookings.DistinctBookedTurfs(ctx, query.Date, query.TimePoint)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve busy turfs", "date", query.Date, "time", query.TimePoint, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to check turf availability", err)
	}

	busy := make(map[string]struct{}, len(busyIDs))
	for _, id := range busyIDs {
		busy[id] = struct{}{}
	}

	available := make([]*model.Turf, 0, len(turfs))
	for _, turf := range turfs {
		if _, taken := busy[turf.ID]; !taken {
			available = append(available, turf)
		}
	}
	return available, nil
}

func (s *turfService) Locations(ctx context.Context) ([]string, error) {
	locations, err := s.repo.DistinctLocations(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list turf locations", "error", err)
		return nil, apperrors.StoreUnavailable("Failed to retrieve locations", err)
	}
	return locations, nil
}

func (s *turfService) Update(ctx context.Context, id, ownerID string, update *model.TurfUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Turf ID cannot be empty")
	}
	if update == nil {
		return apperrors.InvalidInput("Update cannot be empty")
	}

	update.Name = sanitizer.NormalizeName(update.Name)
	update.Location = sanitizer.NormalizeLocation(update.Location)
	if update.Price != nil {
		normalized := sanitizer.NormalizePrice(*update.Price)
		update.Price = &normalized
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Turf update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid turf update", map[string]any{"error": err.Error()})
	}

	if err := s.authorizeOwner(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Turf updated", "id", id, "owner_id", ownerID)
	return nil
}

func (s *turfService) Delete(ctx context.Context, id, ownerID string) error {
	if id == "" {
		return apperrors.InvalidInput("Turf ID cannot be empty")
	}

	if err := s.authorizeOwner(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Turf deleted", "id", id, "owner_id", ownerID)
	return nil
}

// authorizeOwner confirms the turf exists and belongs to ownerID. Bookings
// against a deleted turf are kept as historical records; only future
// reservations stop resolving.
func (s *turfService) authorizeOwner(ctx context.Context, id, ownerID string) error {
	turf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}
	if turf.OwnerID != ownerID {
		return apperrors.Forbidden("Turf belongs to another owner")
	}
	return nil
}

func (s *turfService) mapLookupError(err error, id string) error {
	if errors.Is(err, turfserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Turf", id)
	}
	if errors.Is(err, turfserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid turf ID format")
	}
	return apperrors.StoreUnavailable("Turf store unavailable", err)
}
