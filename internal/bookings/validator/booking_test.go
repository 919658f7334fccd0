package validator

import (
	"testing"

	"turfbook/pkg/logger"
	"turfbook/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.Text,
		Service: "test",
	})
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		TurfID:    "507f1f77bcf86cd799439011",
		UserID:    "507f1f77bcf86cd799439012",
		Date:      "2026-09-15",
		StartTime: "10:00",
		EndTime:   "11:00",
	}
}

func TestValidateRequest(t *testing.T) {
	v := NewBookingValidator(testLogger())

	tests := []struct {
		name    string
		mutate  func(req *model.BookingRequest)
		wantErr bool
	}{
		{
			name:    "valid request",
			mutate:  func(req *model.BookingRequest) {},
			wantErr: false,
		},
		{
			name:    "midnight boundary times",
			mutate:  func(req *model.BookingRequest) { req.StartTime = "00:00"; req.EndTime = "23:59" },
			wantErr: false,
		},
		{
			name:    "turf ID not an object ID",
			mutate:  func(req *model.BookingRequest) { req.TurfID = "turf-1" },
			wantErr: true,
		},
		{
			name:    "unpadded hour",
			mutate:  func(req *model.BookingRequest) { req.StartTime = "9:00" },
			wantErr: true,
		},
		{
			name:    "hour out of range",
			mutate:  func(req *model.BookingRequest) { req.EndTime = "24:00" },
			wantErr: true,
		},
		{
			name:    "minute out of range",
			mutate:  func(req *model.BookingRequest) { req.StartTime = "10:60" },
			wantErr: true,
		},
		{
			name:    "date in wrong order",
			mutate:  func(req *model.BookingRequest) { req.Date = "15-09-2026" },
			wantErr: true,
		},
		{
			name:    "impossible calendar date",
			mutate:  func(req *model.BookingRequest) { req.Date = "2026-02-30" },
			wantErr: true,
		},
		{
			name: "reversed interval passes format checks",
			mutate: func(req *model.BookingRequest) {
				req.StartTime = "12:00"
				req.EndTime = "10:00"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RejectsReversedInterval(t *testing.T) {
	v := NewBookingValidator(testLogger())

	booking := &model.Booking{
		TurfID:    "507f1f77bcf86cd799439011",
		UserID:    "507f1f77bcf86cd799439012",
		Date:      "2026-09-15",
		StartTime: "12:00",
		EndTime:   "10:00",
		Price:     1200,
	}

	if err := v.Validate(booking); err == nil {
		t.Error("Validate() accepted a booking whose end precedes its start")
	}
}
