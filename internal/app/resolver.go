package app

import (
	"context"
	"errors"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// bookingResolver answers the booking core's user and item lookups.
type bookingResolver struct {
	users user.Service
	items item.Repository
}

// NewBookingResolver adapts the user service and item store to booking.Resolver.
func NewBookingResolver(users user.Service, items item.Repository) booking.Resolver {
	return &bookingResolver{users: users, items: items}
}

func (r *bookingResolver) ResolveUser(ctx context.Context, id int64) (*booking.Party, error) {
	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, booking.ErrUserNotFound
		}
		return nil, err
	}
	return &booking.Party{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}

func (r *bookingResolver) ResolveItem(ctx context.Context, id int64) (*booking.ItemRef, error) {
	it, err := r.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			return nil, booking.ErrItemNotFound
		}
		return nil, err
	}
	return &booking.ItemRef{ID: it.ID, Name: it.Name, Available: it.Available, OwnerID: it.OwnerID}, nil
}
