package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	accountserrors "turfbook/internal/accounts/errors"
	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/internal/bookings/validator"
	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/logger"
	"turfbook/pkg/model"
)

const (
	testTurfID = "507f1f77bcf86cd799439011"
	testUserID = "507f1f77bcf86cd799439012"
)

type mockBookingRepository struct {
	findConflictsFunc func(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error)
	commitFunc        func(ctx context.Context, booking *model.Booking) error
	markPaidFunc      func(ctx context.Context, id string) error
	committed         *model.Booking
	lastGranularity   int
}

func (m *mockBookingRepository) FindConflicts(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error) {
	if m.findConflictsFunc != nil {
		return m.findConflictsFunc(ctx, turfID, date, start, end)
	}
	return nil, nil
}

func (m *mockBookingRepository) Commit(ctx context.Context, booking *model.Booking) error {
	if m.commitFunc != nil {
		return m.commitFunc(ctx, booking)
	}
	booking.ID = "507f1f77bcf86cd799439099"
	m.committed = booking
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) BookedTimePoints(ctx context.Context, turfID, date string, granularityMin int) ([]string, error) {
	m.lastGranularity = granularityMin
	return nil, nil
}

func (m *mockBookingRepository) DistinctBookedTurfs(ctx context.Context, date, timePoint string) ([]string, error) {
	return nil, nil
}

func (m *mockBookingRepository) MarkPaid(ctx context.Context, id string) error {
	if m.markPaidFunc != nil {
		return m.markPaidFunc(ctx, id)
	}
	return nil
}

type mockTurfDirectory struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Turf, error)
}

func (m *mockTurfDirectory) FindByID(ctx context.Context, id string) (*model.Turf, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return testTurf(), nil
}

type mockAccountDirectory struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Account, error)
}

func (m *mockAccountDirectory) FindByID(ctx context.Context, id string) (*model.Account, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return testAccount(), nil
}

type mockPaymentGateway struct {
	createOrderFunc func(ctx context.Context, bookingID string, amount int64, currency string) (string, error)
}

func (m *mockPaymentGateway) CreateOrder(ctx context.Context, bookingID string, amount int64, currency string) (string, error) {
	if m.createOrderFunc != nil {
		return m.createOrderFunc(ctx, bookingID, amount, currency)
	}
	return "https://pay.example/" + bookingID, nil
}

type mockOwnerNotifier struct {
	notified chan *model.Booking
	err      error
}

func (m *mockOwnerNotifier) BookingCreated(ctx context.Context, booking *model.Booking, ownerID string) error {
	if m.notified != nil {
		m.notified <- booking
	}
	return m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.Text,
			Service: "test",
		}),
		SlotGranularityMin: 30,
		PaymentCurrency:    "thb",
	}
}

func testTurf() *model.Turf {
	return &model.Turf{
		ID:        testTurfID,
		Name:      "Green Field",
		Location:  "bangkok",
		Price:     1200,
		OpenTime:  "06:00",
		CloseTime: "23:00",
		OwnerID:   "507f1f77bcf86cd799439013",
	}
}

func testAccount() *model.Account {
	return &model.Account{
		ID:    testUserID,
		Name:  "Alex Player",
		Email: "alex@example.com",
		Phone: "+66812345678",
		Role:  model.RolePlayer,
	}
}

func testRequest() *model.BookingRequest {
	return &model.BookingRequest{
		TurfID:    testTurfID,
		UserID:    testUserID,
		Date:      "2026-09-15",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func newTestService(repo *mockBookingRepository, turfs *mockTurfDirectory, accounts *mockAccountDirectory, payments PaymentGateway, notifier OwnerNotifier) BookingService {
	cfg := testConfig()
	return NewBookingService(repo, turfs, accounts, payments, notifier, validator.NewBookingValidator(cfg.Log), cfg)
}

func TestReserve_Success(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

	booking, paymentURL, err := svc.Reserve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Reserve() error = %v, want nil", err)
	}
	if booking.ID == "" {
		t.Error("Reserve() returned booking without an ID")
	}
	if paymentURL != "" {
		t.Errorf("Reserve() paymentURL = %q, want empty when no order requested", paymentURL)
	}
	if booking.IsPaid {
		t.Error("Reserve() new booking must not be marked paid")
	}
	if booking.Price != 1200 {
		t.Errorf("Reserve() price = %d, want turf price 1200", booking.Price)
	}
	if booking.TurfDetails.Name != "Green Field" || booking.UserDetails.Email != "alex@example.com" {
		t.Errorf("Reserve() snapshots not populated: %+v / %+v", booking.TurfDetails, booking.UserDetails)
	}
	if repo.committed == nil {
		t.Fatal("Reserve() never committed the booking")
	}
}

func TestReserve_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(req *model.BookingRequest)
		wantCode string
	}{
		{
			name:     "missing turf ID",
			mutate:   func(req *model.BookingRequest) { req.TurfID = "" },
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "missing date",
			mutate:   func(req *model.BookingRequest) { req.Date = "" },
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "malformed time",
			mutate:   func(req *model.BookingRequest) { req.StartTime = "9:00" },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "malformed date",
			mutate:   func(req *model.BookingRequest) { req.Date = "15-09-2026" },
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "start equals end",
			mutate: func(req *model.BookingRequest) {
				req.StartTime = "10:00"
				req.EndTime = "10:00"
			},
			wantCode: apperrors.CodeInvalidInterval,
		},
		{
			name: "start after end",
			mutate: func(req *model.BookingRequest) {
				req.StartTime = "12:00"
				req.EndTime = "10:00"
			},
			wantCode: apperrors.CodeInvalidInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepository{}
			svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

			req := testRequest()
			tt.mutate(req)

			_, _, err := svc.Reserve(context.Background(), req)
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("Reserve() error = %v, want code %s", err, tt.wantCode)
			}
			if repo.committed != nil {
				t.Error("Reserve() committed a booking despite a rejected request")
			}
		})
	}
}

func TestReserve_OutsideOperatingHours(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

	req := testRequest()
	req.StartTime = "05:00"
	req.EndTime = "06:00"

	_, _, err := svc.Reserve(context.Background(), req)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("Reserve() error = %v, want code %s", err, apperrors.CodeValidation)
	}
}

func TestReserve_UnknownTurf(t *testing.T) {
	turfs := &mockTurfDirectory{
		findByIDFunc: func(ctx context.Context, id string) (*model.Turf, error) {
			return nil, turfserrors.ErrNotFound
		},
	}
	svc := newTestService(&mockBookingRepository{}, turfs, &mockAccountDirectory{}, nil, nil)

	_, _, err := svc.Reserve(context.Background(), testRequest())
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("Reserve() error = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestReserve_UnknownUser(t *testing.T) {
	accounts := &mockAccountDirectory{
		findByIDFunc: func(ctx context.Context, id string) (*model.Account, error) {
			return nil, accountserrors.ErrNotFound
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockTurfDirectory{}, accounts, nil, nil)

	_, _, err := svc.Reserve(context.Background(), testRequest())
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("Reserve() error = %v, want code %s", err, apperrors.CodeNotFound)
	}
}

func TestReserve_PreCheckConflict(t *testing.T) {
	repo := &mockBookingRepository{
		findConflictsFunc: func(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error) {
			return []*model.Booking{{StartTime: "10:30", EndTime: "11:30"}}, nil
		},
	}
	svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

	_, _, err := svc.Reserve(context.Background(), testRequest())
	if !apperrors.IsCode(err, apperrors.CodeSlotTaken) {
		t.Errorf("Reserve() error = %v, want code %s", err, apperrors.CodeSlotTaken)
	}
}

func TestReserve_CommitRaceLoser(t *testing.T) {
	repo := &mockBookingRepository{
		commitFunc: func(ctx context.Context, booking *model.Booking) error {
			return fmt.Errorf("%w: 10:00-11:00", bookingserrors.ErrTimeConflict)
		},
	}
	svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

	_, _, err := svc.Reserve(context.Background(), testRequest())
	if !apperrors.IsCode(err, apperrors.CodeSlotTaken) {
		t.Errorf("Reserve() error = %v, want code %s (race loser is a conflict, not a server error)", err, apperrors.CodeSlotTaken)
	}
}

func TestReserve_StoreFailures(t *testing.T) {
	tests := []struct {
		name string
		repo *mockBookingRepository
	}{
		{
			name: "conflict check fails",
			repo: &mockBookingRepository{
				findConflictsFunc: func(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error) {
					return nil, errors.New("connection reset")
				},
			},
		},
		{
			name: "commit fails",
			repo: &mockBookingRepository{
				commitFunc: func(ctx context.Context, booking *model.Booking) error {
					return errors.New("write concern timeout")
				},
			},
		},
		{
			name: "lock unavailable",
			repo: &mockBookingRepository{
				commitFunc: func(ctx context.Context, booking *model.Booking) error {
					return bookingserrors.ErrLockUnavailable
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

			_, _, err := svc.Reserve(context.Background(), testRequest())
			if !apperrors.IsCode(err, apperrors.CodeStoreUnavailable) {
				t.Errorf("Reserve() error = %v, want code %s", err, apperrors.CodeStoreUnavailable)
			}
		})
	}
}

func TestReserve_PaymentOrderRequested(t *testing.T) {
	var gotBookingID string
	var gotAmount int64
	payments := &mockPaymentGateway{
		createOrderFunc: func(ctx context.Context, bookingID string, amount int64, currency string) (string, error) {
			gotBookingID = bookingID
			gotAmount = amount
			return "https://pay.example/order-1", nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockTurfDirectory{}, &mockAccountDirectory{}, payments, nil)

	req := testRequest()
	req.CreatePaymentOrder = true

	booking, paymentURL, err := svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("Reserve() error = %v, want nil", err)
	}
	if paymentURL != "https://pay.example/order-1" {
		t.Errorf("Reserve() paymentURL = %q, want the gateway redirect", paymentURL)
	}
	if gotBookingID != booking.ID {
		t.Errorf("CreateOrder bookingID = %q, want %q", gotBookingID, booking.ID)
	}
	if gotAmount != booking.Price {
		t.Errorf("CreateOrder amount = %d, want booking price %d", gotAmount, booking.Price)
	}
}

func TestReserve_PaymentFailureDoesNotFailBooking(t *testing.T) {
	payments := &mockPaymentGateway{
		createOrderFunc: func(ctx context.Context, bookingID string, amount int64, currency string) (string, error) {
			return "", errors.New("gateway down")
		},
	}
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, payments, nil)

	req := testRequest()
	req.CreatePaymentOrder = true

	booking, paymentURL, err := svc.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("Reserve() error = %v, want nil despite payment failure", err)
	}
	if booking == nil || repo.committed == nil {
		t.Fatal("Reserve() must keep the committed booking when payment order creation fails")
	}
	if paymentURL != "" {
		t.Errorf("Reserve() paymentURL = %q, want empty on gateway failure", paymentURL)
	}
}

func TestReserve_NotifiesOwner(t *testing.T) {
	notifier := &mockOwnerNotifier{notified: make(chan *model.Booking, 1)}
	svc := newTestService(&mockBookingRepository{}, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, notifier)

	booking, _, err := svc.Reserve(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Reserve() error = %v, want nil", err)
	}

	select {
	case notified := <-notifier.notified:
		if notified.ID != booking.ID {
			t.Errorf("notified booking ID = %q, want %q", notified.ID, booking.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("owner notification never fired")
	}
}

func TestReserve_NotificationFailureDoesNotFailBooking(t *testing.T) {
	notifier := &mockOwnerNotifier{err: errors.New("broker unreachable")}
	svc := newTestService(&mockBookingRepository{}, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, notifier)

	if _, _, err := svc.Reserve(context.Background(), testRequest()); err != nil {
		t.Fatalf("Reserve() error = %v, want nil despite notification failure", err)
	}
}

func TestConfirmPayment(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{
			name: "success",
			id:   "507f1f77bcf86cd799439099",
		},
		{
			name:     "empty ID",
			id:       "",
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "unknown booking",
			id:       "507f1f77bcf86cd799439099",
			repoErr:  bookingserrors.ErrNotFound,
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "malformed ID",
			id:       "not-an-object-id",
			repoErr:  bookingserrors.ErrInvalidID,
			wantCode: apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockBookingRepository{
				markPaidFunc: func(ctx context.Context, id string) error {
					return tt.repoErr
				},
			}
			svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

			err := svc.ConfirmPayment(context.Background(), tt.id)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ConfirmPayment() error = %v, want nil", err)
				}
				return
			}
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Errorf("ConfirmPayment() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestBookedTimePoints(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockTurfDirectory{}, &mockAccountDirectory{}, nil, nil)

	if _, err := svc.BookedTimePoints(context.Background(), testTurfID, "2026-09-15", 0); err != nil {
		t.Errorf("BookedTimePoints() error = %v, want nil", err)
	}
	if repo.lastGranularity != 30 {
		t.Errorf("BookedTimePoints() granularity = %d, want config default 30", repo.lastGranularity)
	}

	if _, err := svc.BookedTimePoints(context.Background(), testTurfID, "2026-09-15", 60); err != nil {
		t.Errorf("BookedTimePoints() error = %v, want nil", err)
	}
	if repo.lastGranularity != 60 {
		t.Errorf("BookedTimePoints() granularity = %d, want explicit 60", repo.lastGranularity)
	}

	if _, err := svc.BookedTimePoints(context.Background(), "", "2026-09-15", 0); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("BookedTimePoints() without turf ID error = %v, want code %s", err, apperrors.CodeInvalidInput)
	}
}
