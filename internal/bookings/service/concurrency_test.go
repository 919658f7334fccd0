package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/internal/bookings/validator"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/model"
	"turfbook/pkg/timeslot"
)

// memoryBookingStore reproduces the store's commit semantics in memory: one
// mutex per (turf, date) key serializes the check-then-insert, exactly the
// role the slot lock plays against Mongo. FindConflicts reads without the
// lock, like the engine's optimistic pre-check.
type memoryBookingStore struct {
	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
	bookings map[string][]*model.Booking
	nextID   int
}

func newMemoryBookingStore() *memoryBookingStore {
	return &memoryBookingStore{
		keyLocks: make(map[string]*sync.Mutex),
		bookings: make(map[string][]*model.Booking),
	}
}

func (s *memoryBookingStore) key(turfID, date string) string {
	return turfID + "|" + date
}

func (s *memoryBookingStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keyLocks[key]; !ok {
		s.keyLocks[key] = &sync.Mutex{}
	}
	return s.keyLocks[key]
}

func (s *memoryBookingStore) snapshot(key string) []*model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Booking, len(s.bookings[key]))
	copy(out, s.bookings[key])
	return out
}

func (s *memoryBookingStore) FindConflicts(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error) {
	var conflicts []*model.Booking
	for _, b := range s.snapshot(s.key(turfID, date)) {
		if timeslot.Overlaps(b.StartTime, b.EndTime, start, end) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

func (s *memoryBookingStore) Commit(ctx context.Context, booking *model.Booking) error {
	key := s.key(booking.TurfID, booking.Date)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	for _, b := range s.snapshot(key) {
		if timeslot.Overlaps(b.StartTime, b.EndTime, booking.StartTime, booking.EndTime) {
			return fmt.Errorf("%w: %s-%s", bookingserrors.ErrTimeConflict, b.StartTime, b.EndTime)
		}
	}

	s.mu.Lock()
	s.nextID++
	booking.ID = fmt.Sprintf("%024d", s.nextID)
	s.bookings[key] = append(s.bookings[key], booking)
	s.mu.Unlock()
	return nil
}

func (s *memoryBookingStore) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (s *memoryBookingStore) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return nil, nil
}

func (s *memoryBookingStore) BookedTimePoints(ctx context.Context, turfID, date string, granularityMin int) ([]string, error) {
	return nil, nil
}

func (s *memoryBookingStore) DistinctBookedTurfs(ctx context.Context, date, timePoint string) ([]string, error) {
	return nil, nil
}

func (s *memoryBookingStore) MarkPaid(ctx context.Context, id string) error {
	return nil
}

func (s *memoryBookingStore) all() []*model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Booking
	for _, list := range s.bookings {
		out = append(out, list...)
	}
	return out
}

func newConcurrencyService(store *memoryBookingStore) BookingService {
	cfg := testConfig()
	return NewBookingService(store, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil, validator.NewBookingValidator(cfg.Log), cfg)
}

func reserveInterval(svc BookingService, start, end string) error {
	req := testRequest()
	req.StartTime = start
	req.EndTime = end
	_, _, err := svc.Reserve(context.Background(), req)
	return err
}

func TestReserve_ConcurrentIdenticalIntervals(t *testing.T) {
	store := newMemoryBookingStore()
	svc := newConcurrencyService(store)

	const workers = 16
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = reserveInterval(svc, "10:00", "11:00")
		}(i)
	}
	wg.Wait()

	successes := 0
	for i, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, apperrors.CodeSlotTaken):
		default:
			t.Errorf("worker %d: unexpected error %v", i, err)
		}
	}

	if successes != 1 {
		t.Errorf("identical intervals: %d successes, want exactly 1", successes)
	}
	if got := len(store.all()); got != 1 {
		t.Errorf("store holds %d bookings, want 1", got)
	}
}

func TestReserve_ConcurrentOverlappingIntervals(t *testing.T) {
	store := newMemoryBookingStore()
	svc := newConcurrencyService(store)

	// Every pair overlaps, so at most one can land.
	intervals := [][2]string{
		{"10:00", "12:00"},
		{"11:00", "13:00"},
		{"10:30", "11:30"},
		{"09:00", "14:00"},
	}

	errs := make([]error, len(intervals))
	var wg sync.WaitGroup
	for i, iv := range intervals {
		wg.Add(1)
		go func(i int, start, end string) {
			defer wg.Done()
			errs[i] = reserveInterval(svc, start, end)
		}(i, iv[0], iv[1])
	}
	wg.Wait()

	successes := 0
	for i, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.IsCode(err, apperrors.CodeSlotTaken):
		default:
			t.Errorf("worker %d: unexpected error %v", i, err)
		}
	}

	if successes != 1 {
		t.Errorf("overlapping intervals: %d successes, want exactly 1", successes)
	}
}

func TestReserve_ConcurrentDisjointIntervals(t *testing.T) {
	store := newMemoryBookingStore()
	svc := newConcurrencyService(store)

	// Back-to-back half-open intervals share an endpoint but never overlap.
	intervals := [][2]string{
		{"09:00", "10:00"},
		{"10:00", "11:00"},
		{"11:00", "12:00"},
		{"12:00", "13:00"},
	}

	errs := make([]error, len(intervals))
	var wg sync.WaitGroup
	for i, iv := range intervals {
		wg.Add(1)
		go func(i int, start, end string) {
			defer wg.Done()
			errs[i] = reserveInterval(svc, start, end)
		}(i, iv[0], iv[1])
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("disjoint interval %d: error %v, want success", i, err)
		}
	}
	if got := len(store.all()); got != len(intervals) {
		t.Errorf("store holds %d bookings, want %d", got, len(intervals))
	}
}

// TestReserve_RandomIntervalsNeverOverlap hammers the engine with random
// intervals and then checks the committed set pairwise: whatever the
// interleaving, no two committed bookings may overlap.
func TestReserve_RandomIntervalsNeverOverlap(t *testing.T) {
	store := newMemoryBookingStore()
	svc := newConcurrencyService(store)

	rng := rand.New(rand.NewSource(1))
	type interval struct{ start, end string }

	var requests []interval
	for i := 0; i < 64; i++ {
		startMin := 6*60 + 30*rng.Intn(30)
		endMin := startMin + 30*(1+rng.Intn(4))
		if endMin > 23*60 {
			endMin = 23 * 60
		}
		requests = append(requests, interval{timeslot.Format(startMin), timeslot.Format(endMin)})
	}

	var wg sync.WaitGroup
	for _, req := range requests {
		wg.Add(1)
		go func(start, end string) {
			defer wg.Done()
			err := reserveInterval(svc, start, end)
			if err != nil && !apperrors.IsCode(err, apperrors.CodeSlotTaken) {
				t.Errorf("interval %s-%s: unexpected error %v", start, end, err)
			}
		}(req.start, req.end)
	}
	wg.Wait()

	committed := store.all()
	for i := 0; i < len(committed); i++ {
		for j := i + 1; j < len(committed); j++ {
			a, b := committed[i], committed[j]
			if timeslot.Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				t.Errorf("committed bookings overlap: %s-%s and %s-%s",
					a.StartTime, a.EndTime, b.StartTime, b.EndTime)
			}
		}
	}
}
