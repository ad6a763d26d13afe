package booking

import "context"

// Party is the view of a user the booking core needs.
type Party struct {
	ID    int64
	Name  string
	Email string
}

// ItemRef is the view of an item the booking core needs.
type ItemRef struct {
	ID        int64
	Name      string
	Available bool
	OwnerID   int64
}

// Resolver looks up the users and items bookings refer to.
// Implementations return ErrUserNotFound / ErrItemNotFound for unknown ids.
type Resolver interface {
	ResolveUser(ctx context.Context, id int64) (*Party, error)
	ResolveItem(ctx context.Context, id int64) (*ItemRef, error)
}
