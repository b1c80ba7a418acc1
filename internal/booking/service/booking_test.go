package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingerrors "termin/internal/booking/errors"
	"termin/internal/booking/validator"
	"termin/pkg/config"
	apperrors "termin/pkg/errors"
	"termin/pkg/logger"
	"termin/pkg/model"
)

// Mock repository emulating the storage-level unique index on start_time:
// the first insert for a start instant wins, every later one gets
// ErrSlotTaken. This is the same create-if-absent contract Mongo enforces.
type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[int64]model.Booking

	createErr     error
	findTakenErr  error
	findTakenFunc func(from, to *time.Time) ([]time.Time, error)
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: map[int64]model.Booking{}}
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := booking.StartTime.Unix()
	if _, exists := m.bookings[key]; exists {
		return bookingerrors.ErrSlotTaken
	}
	booking.CreatedAt = time.Now()
	m.bookings[key] = *booking
	return nil
}

func (m *mockBookingRepository) FindByStart(ctx context.Context, start time.Time) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.bookings[start.Unix()]; ok {
		return &b, nil
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) FindTakenStarts(ctx context.Context, from, to *time.Time) ([]time.Time, error) {
	if m.findTakenFunc != nil {
		return m.findTakenFunc(from, to)
	}
	if m.findTakenErr != nil {
		return nil, m.findTakenErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var starts []time.Time
	for key := range m.bookings {
		starts = append(starts, time.Unix(key, 0))
	}
	return starts, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.bookings)), nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []model.Booking
	err    error
}

func (p *mockPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *booking)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

// --- Helpers ---

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{
		Log:             log,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		SlotDayCount:    1,
		SlotStartHour:   8,
		SlotEndHour:     9,
		SlotStepMinutes: 30,
	}
}

func newTestService(repo *mockBookingRepository, pub *mockPublisher) (*bookingService, time.Time) {
	cfg := testConfig()
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.Local)
	return &bookingService{
		repo:      repo,
		publisher: pub,
		validator: validator.NewBookingValidator(cfg.Log),
		cfg:       cfg,
		now:       func() time.Time { return now },
	}, now
}

func validDetails() *model.Booking {
	return &model.Booking{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		BirthDate: "1990-12-10",
	}
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

// --- Tests ---

func TestClaim_SuccessThenConflict(t *testing.T) {
	repo := newMockBookingRepository()
	svc, now := newTestService(repo, &mockPublisher{})

	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.Local)

	first, err := svc.Claim(context.Background(), start, validDetails())
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if !first.EndTime.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("end time not derived from step: %v", first.EndTime)
	}

	second := validDetails()
	second.FirstName = "Grace"
	second.Email = "grace@example.com"

	_, err = svc.Claim(context.Background(), start, second)
	if err == nil {
		t.Fatal("second claim should conflict")
	}
	if code := appCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected %s, got %s", apperrors.CodeConflict, code)
	}

	// The stored booking keeps the first requester's fields.
	stored, err := repo.FindByStart(context.Background(), start)
	if err != nil {
		t.Fatalf("stored booking missing: %v", err)
	}
	if stored.FirstName != "Ada" || stored.Email != "ada@example.com" {
		t.Errorf("stored booking was overwritten by the losing claim: %+v", stored)
	}
}

func TestClaim_ConcurrentClaimsExactlyOneWinner(t *testing.T) {
	repo := newMockBookingRepository()
	svc, now := newTestService(repo, &mockPublisher{})

	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 30, 0, 0, time.Local)

	const n = 32
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Claim(context.Background(), start, validDetails())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case appCode(t, err) == apperrors.CodeConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 successful claim, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}

	count, _ := repo.Count(context.Background())
	if count != 1 {
		t.Errorf("expected exactly 1 persisted booking, got %d", count)
	}
}

func TestClaim_OffGridStartRejectedWithoutWrite(t *testing.T) {
	repo := newMockBookingRepository()
	svc, now := newTestService(repo, &mockPublisher{})

	offGrid := time.Date(now.Year(), now.Month(), now.Day(), 8, 7, 0, 0, time.Local)

	_, err := svc.Claim(context.Background(), offGrid, validDetails())
	if err == nil {
		t.Fatal("off-grid start must be rejected")
	}
	if code := appCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, code)
	}

	count, _ := repo.Count(context.Background())
	if count != 0 {
		t.Errorf("off-grid claim must not write, found %d bookings", count)
	}
}

func TestClaim_MissingDetailsRejectedBeforeStore(t *testing.T) {
	repo := newMockBookingRepository()
	repo.createErr = errors.New("store must not be called")
	svc, now := newTestService(repo, &mockPublisher{})

	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.Local)

	details := validDetails()
	details.Email = ""

	_, err := svc.Claim(context.Background(), start, details)
	if err == nil {
		t.Fatal("missing email must be rejected")
	}
	if code := appCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, code)
	}
}

func TestClaim_EndedSlotRejected(t *testing.T) {
	repo := newMockBookingRepository()
	cfg := testConfig()
	// 10:00: both slots of the 8-9 horizon already ended.
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	svc := &bookingService{
		repo:      repo,
		publisher: &mockPublisher{},
		validator: validator.NewBookingValidator(cfg.Log),
		cfg:       cfg,
		now:       func() time.Time { return now },
	}

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	_, err := svc.Claim(context.Background(), start, validDetails())
	if err == nil {
		t.Fatal("ended slot must not be claimable")
	}
	if code := appCode(t, err); code != apperrors.CodeInvalidInput {
		t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, code)
	}
}

func TestClaim_StoreErrorFoldedToUnavailable(t *testing.T) {
	repo := newMockBookingRepository()
	repo.createErr = errors.New("server selection timeout")
	svc, now := newTestService(repo, &mockPublisher{})

	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.Local)

	_, err := svc.Claim(context.Background(), start, validDetails())
	if err == nil {
		t.Fatal("expected error")
	}
	if code := appCode(t, err); code != apperrors.CodeUnavailable {
		t.Errorf("expected %s, got %s", apperrors.CodeUnavailable, code)
	}
}

func TestClaim_NotificationFailureDoesNotFailBooking(t *testing.T) {
	repo := newMockBookingRepository()
	pub := &mockPublisher{err: errors.New("broker down")}
	svc, now := newTestService(repo, pub)

	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.Local)

	booking, err := svc.Claim(context.Background(), start, validDetails())
	if err != nil {
		t.Fatalf("booking must survive a failed notification: %v", err)
	}
	if booking == nil {
		t.Fatal("expected booking")
	}

	count, _ := repo.Count(context.Background())
	if count != 1 {
		t.Errorf("expected 1 persisted booking, got %d", count)
	}
}

func TestAvailability_MergesTakenAndPast(t *testing.T) {
	repo := newMockBookingRepository()
	svc, _ := newTestService(repo, &mockPublisher{})

	// Shift "now" to 08:45 so the first slot is past.
	now := time.Date(2026, 3, 2, 8, 45, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	second := time.Date(2026, 3, 2, 8, 30, 0, 0, time.Local)
	repo.bookings[second.Unix()] = model.Booking{StartTime: second, Email: "ada@example.com"}

	view, err := svc.Availability(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if len(view) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(view))
	}

	if !view[0].Past || view[0].Taken {
		t.Errorf("slot 0: want past,free; got past=%v taken=%v", view[0].Past, view[0].Taken)
	}
	if view[1].Past || !view[1].Taken {
		t.Errorf("slot 1: want upcoming,taken; got past=%v taken=%v", view[1].Past, view[1].Taken)
	}
}

func TestAvailability_TakenAfterClaim(t *testing.T) {
	repo := newMockBookingRepository()
	svc, now := newTestService(repo, &mockPublisher{})

	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, time.Local)
	if _, err := svc.Claim(context.Background(), start, validDetails()); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	view, err := svc.Availability(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}

	var found bool
	for _, s := range view {
		if s.Start.Equal(start) {
			found = true
			if !s.Taken {
				t.Error("claimed slot not reported taken")
			}
		}
	}
	if !found {
		t.Error("claimed slot missing from availability view")
	}
}

func TestAvailability_RangeFilter(t *testing.T) {
	repo := newMockBookingRepository()
	svc, now := newTestService(repo, &mockPublisher{})

	from := time.Date(now.Year(), now.Month(), now.Day(), 8, 30, 0, 0, time.Local)
	to := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.Local)

	view, err := svc.Availability(context.Background(), &from, &to)
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	if len(view) != 1 {
		t.Fatalf("expected 1 slot in [08:30,09:00), got %d", len(view))
	}
	if !view[0].Start.Equal(from) {
		t.Errorf("unexpected slot %v", view[0].Start)
	}
}

func TestAvailability_StoreDownFailsTheRead(t *testing.T) {
	repo := newMockBookingRepository()
	repo.findTakenErr = errors.New("connection refused")
	svc, _ := newTestService(repo, &mockPublisher{})

	view, err := svc.Availability(context.Background(), nil, nil)
	if err == nil {
		t.Fatalf("store-down read must fail, got %d slots", len(view))
	}
	if code := appCode(t, err); code != apperrors.CodeUnavailable {
		t.Errorf("expected %s, got %s", apperrors.CodeUnavailable, code)
	}
}
