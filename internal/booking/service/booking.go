package service

import (
	"context"
	"errors"
	"time"

	bookingerrors "termin/internal/booking/errors"
	"termin/internal/booking/repository"
	"termin/internal/booking/validator"
	"termin/internal/notify"
	"termin/internal/slots"
	"termin/pkg/config"
	apperrors "termin/pkg/errors"
	"termin/pkg/model"
)

type BookingService interface {
	Availability(ctx context.Context, from, to *time.Time) ([]model.SlotView, error)
	Claim(ctx context.Context, start time.Time, details *model.Booking) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	publisher notify.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	publisher notify.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Availability merges the canonical slot set with the stored claims. A
// failing store fails the read: an availability view must never report a
// slot free when the truth is unknown.
func (s *bookingService) Availability(ctx context.Context, from, to *time.Time) ([]model.SlotView, error) {
	now := s.now()
	canonical := slots.Generate(s.cfg.Slots(), now)

	takenStarts, err := s.repo.FindTakenStarts(ctx, from, to)
	if err != nil {
		return nil, s.storeUnavailable("list taken slots", err)
	}

	taken := make(map[int64]struct{}, len(takenStarts))
	for _, t := range takenStarts {
		taken[t.Unix()] = struct{}{}
	}

	view := make([]model.SlotView, 0, len(canonical))
	for _, slot := range canonical {
		if from != nil && slot.Start.Before(*from) {
			continue
		}
		if to != nil && !slot.Start.Before(*to) {
			continue
		}
		_, isTaken := taken[slot.Start.Unix()]
		view = append(view, model.SlotView{
			Start: slot.Start,
			End:   slot.End,
			Taken: isTaken,
			Past:  slot.Past,
		})
	}

	return view, nil
}

// Claim books the slot at start for the given requester. The end instant
// is always derived from the configured step; a caller-supplied end is
// ignored. The insert itself resolves races: whoever commits first wins,
// everyone else gets a conflict from the unique index.
func (s *bookingService) Claim(ctx context.Context, start time.Time, details *model.Booking) (*model.Booking, error) {
	if err := s.validator.Validate(details); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	now := s.now()
	horizon := s.cfg.Slots()
	if !slots.Aligned(horizon, now, start) {
		return nil, apperrors.InvalidInput("start is not a bookable slot of the current horizon")
	}

	booking := *details
	booking.StartTime = start
	booking.EndTime = start.Add(time.Duration(horizon.StepMinutes) * time.Minute)

	if !booking.EndTime.After(now) {
		return nil, apperrors.InvalidInput("slot has already ended")
	}

	if err := s.repo.Create(ctx, &booking); err != nil {
		if errors.Is(err, bookingerrors.ErrSlotTaken) {
			return nil, apperrors.Conflict("slot is already booked")
		}
		return nil, s.storeUnavailable("create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)

	// Best effort: a lost notification never reverses a committed booking.
	if err := s.publisher.BookingCreated(ctx, &booking); err != nil {
		s.cfg.Log.Error("Failed to publish booking notification",
			"id", booking.ID,
			"start_time", booking.StartTime,
			"error", err,
		)
	}

	return &booking, nil
}

// storeUnavailable folds backend failures into a single 503 so backend
// detail never leaks to callers.
func (s *bookingService) storeUnavailable(operation string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error("Booking store unreachable", "operation", operation, "error", err)
	return apperrors.Unavailable("booking store", err)
}
