package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "booking not found")
	ErrUserNotFound     = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "user not found")
	ErrItemNotFound     = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "item not found")
	ErrItemNotAvailable = apperror.NewKind(apperror.KindItemNotAvailable, http.StatusBadRequest, "item is not available for booking")
	ErrAlreadyDecided   = apperror.NewKind(apperror.KindItemNotAvailable, http.StatusBadRequest, "booking has already been decided")
	ErrBookOwnItem      = apperror.NewKind(apperror.KindBookOwnItem, http.StatusNotFound, "owner cannot book own item")
	ErrInvalidDateRange = apperror.NewKind(apperror.KindInvalidDateRange, http.StatusBadRequest, "invalid booking dates")
	ErrNotParticipant   = apperror.NewKind(apperror.KindIllegalAccess, http.StatusNotFound, "only the booker or the item owner can view a booking")
	ErrNotItemOwner     = apperror.NewKind(apperror.KindIllegalAccess, http.StatusNotFound, "only the item owner can approve a booking")
)

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// transitions lists the statuses reachable from each status.
var transitions = map[Status][]Status{
	StatusWaiting:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// IsValid reports whether s is a known booking status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// decision maps an owner's answer to the resulting status.
func decision(approved bool) Status {
	if approved {
		return StatusApproved
	}
	return StatusRejected
}

// Booking is a time-bounded rental of an item by a booker.
// ItemName, OwnerID and BookerName are read-only values joined from items and users.
type Booking struct {
	ID         int64
	Start      time.Time
	End        time.Time
	ItemID     int64
	ItemName   string
	OwnerID    int64
	BookerID   int64
	BookerName string
	Status     Status
}

// Contains reports whether t lies within [Start, End].
func (b *Booking) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}
