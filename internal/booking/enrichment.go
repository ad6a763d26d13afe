package booking

import (
	"context"
	"time"
)

// Neighbours holds, per item id, the last and next approved booking around an instant.
// Items without such a booking have no entry.
type Neighbours struct {
	Last map[int64]*Booking
	Next map[int64]*Booking
}

func (s *service) LastApproved(ctx context.Context, itemID int64, asOf time.Time) (*Booking, error) {
	started, err := s.repo.ListStarted(ctx, []int64{itemID}, asOf)
	if err != nil {
		return nil, err
	}
	return firstPerItem(started)[itemID], nil
}

func (s *service) NextApproved(ctx context.Context, itemID int64, asOf time.Time) (*Booking, error) {
	upcoming, err := s.repo.ListUpcoming(ctx, []int64{itemID}, asOf)
	if err != nil {
		return nil, err
	}
	return firstPerItem(upcoming)[itemID], nil
}

// ApprovedNeighbours computes last/next for many items with one lookup per direction.
func (s *service) ApprovedNeighbours(ctx context.Context, itemIDs []int64, asOf time.Time) (Neighbours, error) {
	if len(itemIDs) == 0 {
		return Neighbours{Last: map[int64]*Booking{}, Next: map[int64]*Booking{}}, nil
	}

	started, err := s.repo.ListStarted(ctx, itemIDs, asOf)
	if err != nil {
		return Neighbours{}, err
	}
	upcoming, err := s.repo.ListUpcoming(ctx, itemIDs, asOf)
	if err != nil {
		return Neighbours{}, err
	}

	return Neighbours{
		Last: firstPerItem(started),
		Next: firstPerItem(upcoming),
	}, nil
}

// firstPerItem keeps the first booking seen for every item of an ordered slice.
// Bookings sharing the extremal end time resolve to whichever the store ordered first.
func firstPerItem(ordered []*Booking) map[int64]*Booking {
	byItem := make(map[int64]*Booking, len(ordered))
	for _, b := range ordered {
		if _, seen := byItem[b.ItemID]; !seen {
			byItem[b.ItemID] = b
		}
	}
	return byItem
}
