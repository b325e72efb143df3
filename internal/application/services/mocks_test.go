package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/slotscout/slotscout/internal/domain/entities"
	"github.com/slotscout/slotscout/internal/domain/providers"
)

type MockSchedulerProvider struct {
	mock.Mock
}

func (m *MockSchedulerProvider) ListCities(ctx context.Context) ([]entities.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.City), args.Error(1)
}

func (m *MockSchedulerProvider) FindNearestLocations(ctx context.Context, city string, serviceTypeID int) ([]entities.Location, error) {
	args := m.Called(ctx, city, serviceTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Location), args.Error(1)
}

func (m *MockSchedulerProvider) NextAppointment(ctx context.Context, locationID, serviceTypeID int) (*entities.SlotDetail, error) {
	args := m.Called(ctx, locationID, serviceTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SlotDetail), args.Error(1)
}

func (m *MockSchedulerProvider) HoldSlot(ctx context.Context, slotID int, applicant entities.Applicant) error {
	args := m.Called(ctx, slotID, applicant)
	return args.Error(0)
}

func (m *MockSchedulerProvider) ExistingBookings(ctx context.Context, applicant entities.Applicant) ([]entities.ExistingBooking, error) {
	args := m.Called(ctx, applicant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ExistingBooking), args.Error(1)
}

func (m *MockSchedulerProvider) SubmitBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingResult), args.Error(1)
}

func (m *MockSchedulerProvider) RescheduleBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BookingResult), args.Error(1)
}

func (m *MockSchedulerProvider) CancelBooking(ctx context.Context, bookingID int) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockGeolocationProvider struct {
	mock.Mock
}

func (m *MockGeolocationProvider) ResolveZip(ctx context.Context, zip string) (*providers.Coordinates, error) {
	args := m.Called(ctx, zip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.Coordinates), args.Error(1)
}

func (m *MockGeolocationProvider) Distance(from, to providers.Coordinates, unit providers.DistanceUnit) float64 {
	args := m.Called(from, to, unit)
	return args.Get(0).(float64)
}

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Write(ctx context.Context, locations []entities.Location) error {
	args := m.Called(ctx, locations)
	return args.Error(0)
}

func (m *MockSnapshotStore) Read(ctx context.Context) ([]entities.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Location), args.Error(1)
}

// recordingSender captures every message delivered to a channel.
type recordingSender struct {
	bodies   []string
	targets  []string
	subjects []string
	err      error
}

func (r *recordingSender) Send(ctx context.Context, body, phone string) error {
	r.bodies = append(r.bodies, body)
	r.targets = append(r.targets, phone)
	return r.err
}

type recordingEmailSender struct {
	recordingSender
}

func (r *recordingEmailSender) Send(ctx context.Context, body, address, subject string) error {
	r.bodies = append(r.bodies, body)
	r.targets = append(r.targets, address)
	r.subjects = append(r.subjects, subject)
	return r.err
}
