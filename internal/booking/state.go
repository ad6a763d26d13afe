package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

// ErrUnsupportedState is the sentinel behind every ParseState failure.
var ErrUnsupportedState = apperror.NewKind(apperror.KindUnsupportedState, http.StatusBadRequest, "Unknown state: UNSUPPORTED_STATUS")

// State is the symbolic filter selecting which bookings a listing returns.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// Window is an interval test relative to the query instant.
type Window int

const (
	WindowAny     Window = iota
	WindowCurrent        // start <= now <= end
	WindowPast           // end < now
	WindowFuture         // start > now
)

// SortField is the timestamp a listing is ordered by, most recent first.
type SortField string

const (
	SortByStart SortField = "start"
	SortByEnd   SortField = "end"
)

// Spec is the declarative predicate and ordering behind a State.
type Spec struct {
	Window Window
	Status Status // empty matches any status
	SortBy SortField
}

// specs is the closed set of listing specifications.
// REJECTED orders by end while every other state orders by start.
var specs = map[State]Spec{
	StateAll:      {Window: WindowAny, SortBy: SortByStart},
	StateCurrent:  {Window: WindowCurrent, SortBy: SortByStart},
	StatePast:     {Window: WindowPast, SortBy: SortByStart},
	StateFuture:   {Window: WindowFuture, SortBy: SortByStart},
	StateWaiting:  {Window: WindowAny, Status: StatusWaiting, SortBy: SortByStart},
	StateRejected: {Window: WindowAny, Status: StatusRejected, SortBy: SortByEnd},
}

// ParseState matches s exactly (case-sensitive) against the known states.
func ParseState(s string) (State, error) {
	st := State(s)
	if _, ok := specs[st]; !ok {
		return "", &apperror.AppError{
			Code:    http.StatusBadRequest,
			Kind:    apperror.KindUnsupportedState,
			Message: "Unknown state: " + s,
			Err:     ErrUnsupportedState,
		}
	}
	return st, nil
}

// Spec returns the listing specification of st.
func (st State) Spec() Spec {
	return specs[st]
}

// Role selects whose bookings a listing is scoped to.
type Role int

const (
	RoleBooker Role = iota // bookings made by the subject
	RoleOwner              // bookings on items owned by the subject
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "booker"
}

// Query is a fully resolved listing request handed to the Repository.
type Query struct {
	Role      Role
	SubjectID int64
	Spec      Spec
	Now       time.Time
	Limit     int // 0 means no limit
	Offset    int
}

// Matches reports whether b satisfies the query's subject, window and status tests.
func (q Query) Matches(b *Booking) bool {
	switch q.Role {
	case RoleOwner:
		if b.OwnerID != q.SubjectID {
			return false
		}
	default:
		if b.BookerID != q.SubjectID {
			return false
		}
	}

	if q.Spec.Status != "" && b.Status != q.Spec.Status {
		return false
	}

	switch q.Spec.Window {
	case WindowCurrent:
		return b.Contains(q.Now)
	case WindowPast:
		return b.End.Before(q.Now)
	case WindowFuture:
		return b.Start.After(q.Now)
	}
	return true
}

// Before reports whether a sorts ahead of b: sort key descending, then id descending.
func (s Spec) Before(a, b *Booking) bool {
	ka, kb := a.Start, b.Start
	if s.SortBy == SortByEnd {
		ka, kb = a.End, b.End
	}
	if !ka.Equal(kb) {
		return ka.After(kb)
	}
	return a.ID > b.ID
}
