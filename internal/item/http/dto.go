package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
)

type CreateItemRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"required,notblank,max=1024"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"requestId"`
}

// UpdateItemRequest uses pointers to distinguish between "field not sent" and "field sent as false/empty".
type UpdateItemRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1024"`
	Available   *bool   `json:"available"`
}

type SearchItemsRequest struct {
	request.ListParams
	Text string `form:"text"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,notblank,max=1000"`
}

// BookingShort is the booking summary embedded in an owner's item view.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type ItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId"`
}

type ItemDetailsResponse struct {
	ItemResponse
	LastBooking *BookingShort     `json:"lastBooking"`
	NextBooking *BookingShort     `json:"nextBooking"`
	Comments    []CommentResponse `json:"comments"`
}

// ItemTag is a brief representation of an item.
type ItemTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewItemResponse(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		OwnerID:     it.OwnerID,
		RequestID:   it.RequestID,
	}
}

func NewCommentResponse(c *item.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    c.Created,
	}
}

func newBookingShort(b *booking.Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

func NewItemDetailsResponse(d *item.Details) ItemDetailsResponse {
	comments := make([]CommentResponse, len(d.Comments))
	for i, c := range d.Comments {
		comments[i] = NewCommentResponse(c)
	}
	return ItemDetailsResponse{
		ItemResponse: NewItemResponse(d.Item),
		LastBooking:  newBookingShort(d.LastBooking),
		NextBooking:  newBookingShort(d.NextBooking),
		Comments:     comments,
	}
}
