package rules

import "sync/atomic"

// Rules holds the runtime-tunable business rules read by the booking engine.
// A snapshot is immutable once published; operations read one snapshot at the
// start of their unit of work so a mid-flight update cannot tear a decision.
type Rules struct {
	CancellationWindowHours int `json:"cancellation_window_hours"`
	MaxWaitlistSize         int `json:"max_waitlist_size"`
	MaxBookingsPerDay       int `json:"max_bookings_per_day"`
}

const (
	DefaultCancellationWindowHours = 24
	DefaultMaxWaitlistSize         = 20
	DefaultMaxBookingsPerDay       = 3
)

func Defaults() Rules {
	return Rules{
		CancellationWindowHours: DefaultCancellationWindowHours,
		MaxWaitlistSize:         DefaultMaxWaitlistSize,
		MaxBookingsPerDay:       DefaultMaxBookingsPerDay,
	}
}

// Store is an atomically swappable rules snapshot.
type Store struct {
	current atomic.Pointer[Rules]
}

func NewStore(initial Rules) *Store {
	s := &Store{}
	s.current.Store(&initial)
	return s
}

func (s *Store) Current() Rules {
	return *s.current.Load()
}

func (s *Store) Replace(r Rules) {
	s.current.Store(&r)
}

// Update applies a partial update on top of the current snapshot and swaps
// the result in. Nil fields keep their current value.
type Update struct {
	CancellationWindowHours *int `json:"cancellation_window_hours,omitempty"`
	MaxWaitlistSize         *int `json:"max_waitlist_size,omitempty"`
	MaxBookingsPerDay       *int `json:"max_bookings_per_day,omitempty"`
}

func (s *Store) Apply(u Update) Rules {
	next := s.Current()
	if u.CancellationWindowHours != nil && *u.CancellationWindowHours > 0 {
		next.CancellationWindowHours = *u.CancellationWindowHours
	}
	if u.MaxWaitlistSize != nil && *u.MaxWaitlistSize >= 0 {
		next.MaxWaitlistSize = *u.MaxWaitlistSize
	}
	if u.MaxBookingsPerDay != nil && *u.MaxBookingsPerDay > 0 {
		next.MaxBookingsPerDay = *u.MaxBookingsPerDay
	}
	s.Replace(next)
	return next
}
