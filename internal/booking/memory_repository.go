package booking

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// memoryRepository keeps bookings in a map. Ids come from a per-instance sequence.
type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[int64]*Booking
	lastID   int64
}

// NewMemoryRepository creates an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		bookings: make(map[int64]*Booking),
	}
}

func (r *memoryRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	b.ID = r.lastID
	stored := *b
	r.bookings[b.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id int64) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := *b
	return &found, nil
}

func (r *memoryRepository) Decide(_ context.Context, id int64, status Status) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != StatusWaiting {
		return nil, ErrAlreadyDecided
	}
	b.Status = status
	decided := *b
	return &decided, nil
}

func (r *memoryRepository) List(_ context.Context, q Query) ([]*Booking, error) {
	matched := r.filter(func(b *Booking) bool { return q.Matches(b) })
	sort.SliceStable(matched, func(i, j int) bool {
		return q.Spec.Before(matched[i], matched[j])
	})

	if q.Limit > 0 {
		if q.Offset >= len(matched) {
			return []*Booking{}, nil
		}
		end := min(q.Offset+q.Limit, len(matched))
		matched = matched[q.Offset:end]
	}
	return matched, nil
}

func (r *memoryRepository) ListStarted(_ context.Context, itemIDs []int64, asOf time.Time) ([]*Booking, error) {
	matched := r.filter(func(b *Booking) bool {
		return b.Status == StatusApproved && slices.Contains(itemIDs, b.ItemID) && !b.Start.After(asOf)
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].End.Equal(matched[j].End) {
			return matched[i].End.After(matched[j].End)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (r *memoryRepository) ListUpcoming(_ context.Context, itemIDs []int64, asOf time.Time) ([]*Booking, error) {
	matched := r.filter(func(b *Booking) bool {
		return b.Status == StatusApproved && slices.Contains(itemIDs, b.ItemID) && b.Start.After(asOf)
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].End.Equal(matched[j].End) {
			return matched[i].End.Before(matched[j].End)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (r *memoryRepository) ExistsFinished(_ context.Context, bookerID, itemID int64, asOf time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.End.Before(asOf) {
			return true, nil
		}
	}
	return false, nil
}

// filter returns copies of the stored bookings accepted by keep.
func (r *memoryRepository) filter(keep func(*Booking) bool) []*Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			c := *b
			out = append(out, &c)
		}
	}
	return out
}
