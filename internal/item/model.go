package item

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "item not found")
	ErrNotOwner        = apperror.NewKind(apperror.KindForbidden, http.StatusForbidden, "only the owner can update an item")
	ErrRequestNotFound = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "item request not found")
	ErrNotBooker       = apperror.NewKind(apperror.KindNotBooker, http.StatusBadRequest, "user has not finished a booking of this item")
)

// Item is something a user lists for others to book.
type Item struct {
	ID          int64
	Name        string
	Description string
	Available   bool
	OwnerID     int64
	RequestID   *int64 // request this item answers, if any
}

// Comment is feedback left by a past booker.
type Comment struct {
	ID         int64
	Text       string
	ItemID     int64
	AuthorID   int64
	AuthorName string
	Created    time.Time
}

// Details is an item with its comments and, for the owner, the neighbouring approved bookings.
type Details struct {
	Item        *Item
	LastBooking *booking.Booking
	NextBooking *booking.Booking
	Comments    []*Comment
}

type CreateRequest struct {
	Name        string
	Description string
	Available   bool
	RequestID   *int64
}

// UpdateRequest is a partial update; nil or blank text fields are left unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
	Available   *bool
}
