package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitify/internal/class"
	"fitify/internal/event"
	"fitify/internal/logger"
	"fitify/internal/metrics"
	"fitify/internal/rules"
)

var (
	ErrClassNotFound            = errors.New("class not found")
	ErrClassNotBookable         = errors.New("class is not bookable")
	ErrAlreadyBooked            = errors.New("user already booked or waitlisted for this class")
	ErrScheduleConflict         = errors.New("user has an overlapping booking")
	ErrDailyLimitExceeded       = errors.New("daily booking limit exceeded")
	ErrWaitlistFull             = errors.New("waitlist is full")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
	ErrWaitlistEntryNotFound    = errors.New("waitlist entry not found")
)

type Service interface {
	BookClass(ctx context.Context, classID, userID int) (*BookResult, error)
	CancelBooking(ctx context.Context, classID, userID int) (*CancelResult, error)
	RemoveFromWaitlist(ctx context.Context, classID, userID int) error
	GetUserBookings(ctx context.Context, userID int) ([]BookingWithClass, error)
	GetClassBookings(ctx context.Context, classID int) ([]Booking, error)
	GetWaitlist(ctx context.Context, classID int) ([]WaitlistEntry, error)
}

type service struct {
	repo      Repository
	classRepo class.Repository
	rules     *rules.Store
}

func NewService(repo Repository, classRepo class.Repository, rulesStore *rules.Store) Service {
	return &service{
		repo:      repo,
		classRepo: classRepo,
		rules:     rulesStore,
	}
}

// BookClass admits the user to the class or its waitlist. The write is
// guarded by the class version read below: two attempts racing for the last
// seat cannot both commit, one of them observes a stale version and gets
// db.ErrVersionConflict for the caller to retry.
func (s *service) BookClass(ctx context.Context, classID, userID int) (*BookResult, error) {
	cls, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, ErrClassNotFound
	}

	if cls.Status != class.StatusActive {
		return nil, ErrClassNotBookable
	}

	if !cls.StartTime.After(time.Now()) {
		return nil, ErrClassNotBookable
	}

	hasBooking, err := s.repo.HasConfirmed(ctx, classID, userID)
	if err != nil {
		return nil, err
	}
	if hasBooking {
		return nil, ErrAlreadyBooked
	}

	overlapping, err := s.repo.FindOverlapping(ctx, userID, cls.StartTime, cls.EndTime)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrScheduleConflict
	}

	snapshot := s.rules.Current()

	dayCount, err := s.repo.CountConfirmedOnDay(ctx, userID, cls.StartTime.UTC())
	if err != nil {
		return nil, err
	}
	if dayCount >= snapshot.MaxBookingsPerDay {
		return nil, ErrDailyLimitExceeded
	}

	confirmed, err := s.repo.CountConfirmed(ctx, classID)
	if err != nil {
		return nil, err
	}

	if confirmed < cls.Capacity {
		return s.confirmSeat(ctx, cls, userID)
	}

	return s.joinWaitlist(ctx, cls, userID, snapshot.MaxWaitlistSize)
}

func (s *service) confirmSeat(ctx context.Context, cls *class.Class, userID int) (*BookResult, error) {
	rec := event.Record{
		Type: event.TypeClassBooked,
		Payload: event.ClassBooked{
			UserID:    userID,
			ClassID:   cls.ID,
			ClassName: cls.Name,
			StartTime: cls.StartTime,
		},
	}

	booking, err := s.repo.CreateConfirmed(ctx, cls.ID, userID, cls.Version, []event.Record{rec})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(OutcomeBooked)
	logger.Infof("User %d booked class %d", userID, cls.ID)

	return &BookResult{Outcome: OutcomeBooked, Booking: booking}, nil
}

func (s *service) joinWaitlist(ctx context.Context, cls *class.Class, userID, maxWaitlistSize int) (*BookResult, error) {
	size, err := s.repo.CountWaitlist(ctx, cls.ID)
	if err != nil {
		return nil, err
	}
	if size >= maxWaitlistSize {
		return nil, ErrWaitlistFull
	}

	_, err = s.repo.GetWaitlistEntry(ctx, cls.ID, userID)
	if err == nil {
		return nil, ErrAlreadyBooked
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rec := event.Record{
		Type: event.TypeClassFull,
		Payload: event.ClassFull{
			ClassID:      cls.ID,
			ClassName:    cls.Name,
			WaitlistSize: size + 1,
		},
	}

	entry, err := s.repo.AppendWaitlist(ctx, cls.ID, userID, size+1, cls.Version, []event.Record{rec})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(OutcomeWaitlisted)
	metrics.RecordWaitlistJoin()
	logger.Infof("User %d waitlisted for class %d at position %d", userID, cls.ID, entry.Position)

	return &BookResult{Outcome: OutcomeWaitlisted, WaitlistEntry: entry}, nil
}

// CancelBooking frees the user's seat and runs the promotion cascade: the
// first waitlisted user without an overlapping booking elsewhere takes the
// seat. At most one promotion per cancellation.
func (s *service) CancelBooking(ctx context.Context, classID, userID int) (*CancelResult, error) {
	cls, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, ErrClassNotFound
	}

	booking, err := s.repo.GetConfirmed(ctx, classID, userID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	snapshot := s.rules.Current()
	if time.Until(cls.StartTime).Hours() < float64(snapshot.CancellationWindowHours) {
		return nil, ErrCancellationWindowClosed
	}

	promotion, err := s.findPromotion(ctx, cls)
	if err != nil {
		return nil, err
	}

	cancelledAt := time.Now().UTC()

	events := []event.Record{{
		Type: event.TypeBookingCancelled,
		Payload: event.BookingCancelled{
			UserID:      userID,
			ClassID:     classID,
			CancelledAt: cancelledAt,
		},
	}}
	if promotion != nil {
		events = append(events, event.Record{
			Type: event.TypeWaitlistPromoted,
			Payload: event.WaitlistPromoted{
				UserID:    promotion.UserID,
				ClassID:   cls.ID,
				ClassName: cls.Name,
				StartTime: cls.StartTime,
			},
		})
	}

	err = s.repo.CancelWithPromotion(ctx, CancelParams{
		BookingID:       booking.ID,
		ClassID:         classID,
		ExpectedVersion: cls.Version,
		CancelledAt:     cancelledAt,
		Promotion:       promotion,
	}, events)
	if err != nil {
		if errors.Is(err, ErrBookingNotFoundOrAlreadyCancelled) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	metrics.RecordBookingCancellation()
	logger.Infof("User %d cancelled booking for class %d", userID, classID)

	result := &CancelResult{CancelledAt: cancelledAt}
	if promotion != nil {
		promotedID := promotion.UserID
		result.PromotedUserID = &promotedID
		metrics.RecordWaitlistPromotion()
		logger.Infof("User %d promoted from waitlist for class %d", promotion.UserID, classID)
	}

	return result, nil
}

// findPromotion walks the waitlist in position order and picks the first user
// without a schedule conflict. Conflicting entries stay on the waitlist
// untouched.
func (s *service) findPromotion(ctx context.Context, cls *class.Class) (*Promotion, error) {
	entries, err := s.repo.ListWaitlist(ctx, cls.ID)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		overlapping, err := s.repo.FindOverlapping(ctx, entry.UserID, cls.StartTime, cls.EndTime)
		if err != nil {
			return nil, err
		}
		if len(overlapping) > 0 {
			continue
		}

		return &Promotion{
			EntryID:  entry.ID,
			UserID:   entry.UserID,
			Position: entry.Position,
		}, nil
	}

	return nil, nil
}

func (s *service) RemoveFromWaitlist(ctx context.Context, classID, userID int) error {
	cls, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		return ErrClassNotFound
	}

	entry, err := s.repo.GetWaitlistEntry(ctx, classID, userID)
	if err != nil {
		return ErrWaitlistEntryNotFound
	}

	err = s.repo.RemoveWaitlistEntry(ctx, entry.ID, classID, entry.Position, cls.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWaitlistEntryNotFound
		}
		return err
	}

	logger.Infof("User %d left waitlist for class %d", userID, classID)
	return nil
}

func (s *service) GetUserBookings(ctx context.Context, userID int) ([]BookingWithClass, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetClassBookings(ctx context.Context, classID int) ([]Booking, error) {
	return s.repo.ListByClass(ctx, classID)
}

func (s *service) GetWaitlist(ctx context.Context, classID int) ([]WaitlistEntry, error) {
	return s.repo.ListWaitlist(ctx, classID)
}
