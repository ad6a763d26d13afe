package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := booking.CreateRequest{
		BookerID: auth.GetUserID(c),
		ItemID:   body.ItemID,
		Start:    body.Start.Time,
		End:      body.End.Time,
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Decide approves or rejects a WAITING booking on behalf of the item owner.
func (h *Handler) Decide(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var query DecideBookingRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	b, err := h.service.Decide(c.Request.Context(), uri.ID, *query.Approved, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) ListByBooker(c *gin.Context) {
	h.list(c, h.service.ListByBooker)
}

func (h *Handler) ListByOwner(c *gin.Context) {
	h.list(c, h.service.ListByOwner)
}

type listFunc = func(ctx context.Context, req booking.ListRequest) ([]*booking.Booking, error)

func (h *Handler) list(c *gin.Context, fetch listFunc) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bookings, err := fetch(c.Request.Context(), booking.ListRequest{
		UserID: auth.GetUserID(c),
		State:  req.State,
		Limit:  req.Size,
		Offset: req.Offset(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, items)
}
