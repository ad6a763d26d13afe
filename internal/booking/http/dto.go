package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/shareit-backend/internal/user/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
// Unknown states are rejected by the service so the message names the token.
type ListBookingsRequest struct {
	request.ListParams
	State string `form:"state,default=ALL"`
}

// CreateBookingRequest accepts RFC 3339 or zone-less timestamps.
type CreateBookingRequest struct {
	ItemID int64              `json:"itemId" binding:"required"`
	Start  *request.Timestamp `json:"start" binding:"required"`
	End    *request.Timestamp `json:"end" binding:"required"`
}

type DecideBookingRequest struct {
	Approved *bool `form:"approved" binding:"required"`
}

type BookingResponse struct {
	ID     int64            `json:"id"`
	Start  time.Time        `json:"start"`
	End    time.Time        `json:"end"`
	Status string           `json:"status"`
	Item   itemHttp.ItemTag `json:"item"`
	Booker userHttp.UserTag `json:"booker"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status.String(),
		Item:   itemHttp.ItemTag{ID: b.ItemID, Name: b.ItemName},
		Booker: userHttp.UserTag{ID: b.BookerID, Name: b.BookerName},
	}
}
