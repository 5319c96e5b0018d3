package class

import (
	"context"
	"errors"
	"time"

	"fitify/internal/event"
	"fitify/internal/logger"
	"fitify/internal/metrics"
	"fitify/internal/studio"
)

var (
	ErrClassNotFound          = errors.New("class not found")
	ErrInvalidSchedule        = errors.New("invalid class schedule")
	ErrCoachNotActive         = errors.New("coach is not active")
	ErrCoachTimeConflict      = errors.New("coach already has a class in this time range")
	ErrCapacityBelowConfirmed = errors.New("capacity cannot drop below confirmed bookings")
)

type Service interface {
	CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error)
	UpdateClass(ctx context.Context, classID int, req UpdateClassRequest) (*Class, error)
	CancelClass(ctx context.Context, classID int) (*CancelClassResult, error)
	GetClass(ctx context.Context, classID int) (*Class, error)
	ListUpcoming(ctx context.Context, locationID int) ([]ClassWithAvailability, error)
	ListByCoach(ctx context.Context, coachID int, from, to time.Time) ([]Class, error)
	Utilization(ctx context.Context, from, to time.Time) ([]UtilizationStat, error)
	CancellationCount(ctx context.Context, from, to time.Time, locationID *int) (int, error)
}

type service struct {
	repo       Repository
	studioRepo studio.Repository
}

func NewService(repo Repository, studioRepo studio.Repository) Service {
	return &service{
		repo:       repo,
		studioRepo: studioRepo,
	}
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*Class, error) {
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidSchedule
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrInvalidSchedule
	}

	if !endTime.After(startTime) || req.Capacity <= 0 {
		return nil, ErrInvalidSchedule
	}

	if _, err := s.studioRepo.GetLocationByID(ctx, req.LocationID); err != nil {
		return nil, studio.ErrLocationNotFound
	}

	coach, err := s.studioRepo.GetCoachByID(ctx, req.CoachID)
	if err != nil {
		return nil, studio.ErrCoachNotFound
	}
	if !coach.Active {
		return nil, ErrCoachNotActive
	}

	conflicts, err := s.repo.FindCoachConflicts(ctx, req.CoachID, startTime, endTime, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, ErrCoachTimeConflict
	}

	return s.repo.Create(ctx, CreateParams{
		LocationID:  req.LocationID,
		CoachID:     req.CoachID,
		Name:        req.Name,
		Description: req.Description,
		ClassType:   req.ClassType,
		Room:        req.Room,
		StartTime:   startTime,
		EndTime:     endTime,
		Capacity:    req.Capacity,
	})
}

func (s *service) UpdateClass(ctx context.Context, classID int, req UpdateClassRequest) (*Class, error) {
	cls, err := s.repo.GetByID(ctx, classID)
	if err != nil {
		return nil, ErrClassNotFound
	}

	var updatedFields []string
	notify := false

	if req.Name != nil && *req.Name != cls.Name {
		cls.Name = *req.Name
		updatedFields = append(updatedFields, "name")
	}
	if req.Description != nil && *req.Description != cls.Description {
		cls.Description = *req.Description
		updatedFields = append(updatedFields, "description")
	}
	if req.ClassType != nil && *req.ClassType != cls.ClassType {
		cls.ClassType = *req.ClassType
		updatedFields = append(updatedFields, "class_type")
	}
	if req.Room != nil && *req.Room != cls.Room {
		cls.Room = *req.Room
		updatedFields = append(updatedFields, "room")
	}

	timesChanged := false
	if req.StartTime != nil {
		startTime, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return nil, ErrInvalidSchedule
		}
		if !startTime.Equal(cls.StartTime) {
			cls.StartTime = startTime
			updatedFields = append(updatedFields, "start_time")
			timesChanged = true
			notify = true
		}
	}
	if req.EndTime != nil {
		endTime, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return nil, ErrInvalidSchedule
		}
		if !endTime.Equal(cls.EndTime) {
			cls.EndTime = endTime
			updatedFields = append(updatedFields, "end_time")
			timesChanged = true
			notify = true
		}
	}
	if !cls.EndTime.After(cls.StartTime) {
		return nil, ErrInvalidSchedule
	}

	if req.Capacity != nil && *req.Capacity != cls.Capacity {
		if *req.Capacity <= 0 {
			return nil, ErrInvalidSchedule
		}
		confirmed, err := s.repo.ConfirmedUserIDs(ctx, classID)
		if err != nil {
			return nil, err
		}
		if *req.Capacity < len(confirmed) {
			return nil, ErrCapacityBelowConfirmed
		}
		cls.Capacity = *req.Capacity
		updatedFields = append(updatedFields, "capacity")
		notify = true
	}

	if len(updatedFields) == 0 {
		return cls, nil
	}

	if timesChanged {
		conflicts, err := s.repo.FindCoachConflicts(ctx, cls.CoachID, cls.StartTime, cls.EndTime, cls.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, ErrCoachTimeConflict
		}
	}

	var events []event.Record
	if notify {
		affected, err := s.repo.ConfirmedUserIDs(ctx, classID)
		if err != nil {
			return nil, err
		}
		events = append(events, event.Record{
			Type: event.TypeClassUpdated,
			Payload: event.ClassUpdated{
				ClassID:         cls.ID,
				ClassName:       cls.Name,
				LocationID:      cls.LocationID,
				UpdatedFields:   updatedFields,
				AffectedUserIDs: affected,
			},
		})
	}

	if err := s.repo.Update(ctx, cls, events); err != nil {
		return nil, err
	}

	cls.Version++
	return cls, nil
}

// CancelClass is idempotent: cancelling an already-cancelled class is a no-op
// and does not re-emit the cancellation event or touch bookings again.
func (s *service) CancelClass(ctx context.Context, classID int) (*CancelClassResult, error) {
	cls, err := s.repo.GetByID(ctx, classID)
	if err != nil {
		return nil, ErrClassNotFound
	}

	if cls.Status == StatusCancelled {
		return &CancelClassResult{Class: cls, AlreadyDone: true}, nil
	}

	affected, err := s.repo.ConfirmedUserIDs(ctx, classID)
	if err != nil {
		return nil, err
	}

	waitlisted, err := s.repo.WaitlistUserIDs(ctx, classID)
	if err != nil {
		return nil, err
	}

	cancelledAt := time.Now().UTC()
	rec := event.Record{
		Type: event.TypeClassCancelled,
		Payload: event.ClassCancelled{
			ClassID:           cls.ID,
			ClassName:         cls.Name,
			LocationID:        cls.LocationID,
			OriginalStartTime: cls.StartTime,
			AffectedUserIDs:   affected,
			WaitlistUserIDs:   waitlisted,
			CancelledAt:       cancelledAt,
		},
	}

	if err := s.repo.CancelCascade(ctx, cls.ID, cls.Version, cancelledAt, []event.Record{rec}); err != nil {
		return nil, err
	}

	metrics.RecordClassCancellation()
	logger.Infof("Class %d cancelled: %d booked, %d waitlisted users affected",
		cls.ID, len(affected), len(waitlisted))

	cls.Status = StatusCancelled
	cls.Version++
	return &CancelClassResult{
		Class:           cls,
		AffectedUserIDs: affected,
		WaitlistUserIDs: waitlisted,
	}, nil
}

func (s *service) GetClass(ctx context.Context, classID int) (*Class, error) {
	cls, err := s.repo.GetByID(ctx, classID)
	if err != nil {
		return nil, ErrClassNotFound
	}
	return cls, nil
}

func (s *service) ListUpcoming(ctx context.Context, locationID int) ([]ClassWithAvailability, error) {
	if _, err := s.studioRepo.GetLocationByID(ctx, locationID); err != nil {
		return nil, studio.ErrLocationNotFound
	}
	return s.repo.ListUpcomingByLocation(ctx, locationID)
}

func (s *service) ListByCoach(ctx context.Context, coachID int, from, to time.Time) ([]Class, error) {
	return s.repo.ListByCoachRange(ctx, coachID, from, to)
}

func (s *service) Utilization(ctx context.Context, from, to time.Time) ([]UtilizationStat, error) {
	return s.repo.UtilizationStats(ctx, from, to)
}

func (s *service) CancellationCount(ctx context.Context, from, to time.Time, locationID *int) (int, error) {
	return s.repo.CountCancellations(ctx, from, to, locationID)
}
