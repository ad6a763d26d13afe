package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	ownerID  int64 = 1
	bookerID int64 = 2
	otherID  int64 = 3
	itemID   int64 = 10
	closedID int64 = 11
)

type fakeResolver struct {
	users map[int64]*Party
	items map[int64]*ItemRef
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		users: map[int64]*Party{
			ownerID:  {ID: ownerID, Name: "Owner", Email: "owner@example.com"},
			bookerID: {ID: bookerID, Name: "Booker", Email: "booker@example.com"},
			otherID:  {ID: otherID, Name: "Other", Email: "other@example.com"},
		},
		items: map[int64]*ItemRef{
			itemID:   {ID: itemID, Name: "Drill", Available: true, OwnerID: ownerID},
			closedID: {ID: closedID, Name: "Saw", Available: false, OwnerID: ownerID},
		},
	}
}

func (f *fakeResolver) ResolveUser(_ context.Context, id int64) (*Party, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeResolver) ResolveItem(_ context.Context, id int64) (*ItemRef, error) {
	if it, ok := f.items[id]; ok {
		return it, nil
	}
	return nil, ErrItemNotFound
}

var baseNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc  Service
	repo Repository
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: NewMemoryRepository(), now: baseNow}
	f.svc = NewService(f.repo, newFakeResolver(), zap.NewNop(), WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) create(t *testing.T, start, end time.Duration) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateRequest{
		BookerID: bookerID,
		ItemID:   itemID,
		Start:    f.now.Add(start),
		End:      f.now.Add(end),
	})
	require.NoError(t, err)
	return b
}

// seed inserts a booking directly, bypassing the creation date checks.
func (f *fixture) seed(t *testing.T, start, end time.Duration, status Status) *Booking {
	t.Helper()
	b := &Booking{
		Start: f.now.Add(start), End: f.now.Add(end),
		ItemID: itemID, ItemName: "Drill", OwnerID: ownerID,
		BookerID: bookerID, BookerName: "Booker", Status: status,
	}
	require.NoError(t, f.repo.Create(context.Background(), b))
	return b
}

const day = 24 * time.Hour

func TestCreate(t *testing.T) {
	f := newFixture(t)

	b := f.create(t, day, 2*day)

	assert.NotZero(t, b.ID)
	assert.Equal(t, StatusWaiting, b.Status)
	assert.Equal(t, itemID, b.ItemID)
	assert.Equal(t, ownerID, b.OwnerID)
	assert.Equal(t, bookerID, b.BookerID)
	assert.Equal(t, "Drill", b.ItemName)
	assert.Equal(t, "Booker", b.BookerName)

	stored, err := f.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, stored)
}

func TestCreateStartAtNowAccepted(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, 0, time.Hour)
	assert.Equal(t, StatusWaiting, b.Status)
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     func(now time.Time) CreateRequest
		wantErr error
		kind    apperror.Kind
	}{
		{
			name: "unknown booker",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: 99, ItemID: itemID, Start: now.Add(day), End: now.Add(2 * day)}
			},
			wantErr: ErrUserNotFound,
			kind:    apperror.KindEntityNotFound,
		},
		{
			name: "unknown item",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: 99, Start: now.Add(day), End: now.Add(2 * day)}
			},
			wantErr: ErrItemNotFound,
			kind:    apperror.KindEntityNotFound,
		},
		{
			name: "item unavailable",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: closedID, Start: now.Add(day), End: now.Add(2 * day)}
			},
			wantErr: ErrItemNotAvailable,
			kind:    apperror.KindItemNotAvailable,
		},
		{
			name: "owner books own item",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: ownerID, ItemID: itemID, Start: now.Add(day), End: now.Add(2 * day)}
			},
			wantErr: ErrBookOwnItem,
			kind:    apperror.KindBookOwnItem,
		},
		{
			name: "end before start",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: itemID, Start: now.Add(2 * day), End: now.Add(day)}
			},
			wantErr: ErrInvalidDateRange,
			kind:    apperror.KindInvalidDateRange,
		},
		{
			name: "end equals start",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: itemID, Start: now.Add(day), End: now.Add(day)}
			},
			wantErr: ErrInvalidDateRange,
			kind:    apperror.KindInvalidDateRange,
		},
		{
			name: "start in the past",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: itemID, Start: now.Add(-time.Second), End: now.Add(day)}
			},
			wantErr: ErrInvalidDateRange,
			kind:    apperror.KindInvalidDateRange,
		},
		{
			name: "missing start",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: itemID, End: now.Add(day)}
			},
			wantErr: ErrInvalidDateRange,
			kind:    apperror.KindInvalidDateRange,
		},
		{
			name: "missing end",
			req: func(now time.Time) CreateRequest {
				return CreateRequest{BookerID: bookerID, ItemID: itemID, Start: now.Add(day)}
			},
			wantErr: ErrInvalidDateRange,
			kind:    apperror.KindInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.req(f.now))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.kind, apperror.KindOf(err))

			all, err := f.repo.List(context.Background(), Query{Role: RoleBooker, SubjectID: bookerID, Spec: StateAll.Spec(), Now: f.now})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestDecide(t *testing.T) {
	for _, approved := range []bool{true, false} {
		f := newFixture(t)
		b := f.create(t, day, 2*day)

		decided, err := f.svc.Decide(context.Background(), b.ID, approved, ownerID)
		require.NoError(t, err)
		assert.Equal(t, decision(approved), decided.Status)

		// Terminal: any further decision fails, whatever its value.
		for _, again := range []bool{true, false} {
			_, err = f.svc.Decide(context.Background(), b.ID, again, ownerID)
			assert.ErrorIs(t, err, ErrAlreadyDecided)
			assert.Equal(t, apperror.KindItemNotAvailable, apperror.KindOf(err))
		}

		stored, err := f.repo.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, decision(approved), stored.Status)
	}
}

func TestDecideErrors(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, day, 2*day)

	_, err := f.svc.Decide(context.Background(), b.ID, true, bookerID)
	assert.ErrorIs(t, err, ErrNotItemOwner)
	assert.Equal(t, apperror.KindIllegalAccess, apperror.KindOf(err))

	_, err = f.svc.Decide(context.Background(), -1, true, ownerID)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, stored.Status)
}

func TestDecideConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, day, 2*day)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(approved bool) {
			defer wg.Done()
			_, err := f.svc.Decide(context.Background(), b.ID, approved, ownerID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrAlreadyDecided)
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	b := f.create(t, day, 2*day)

	for _, actor := range []int64{bookerID, ownerID} {
		got, err := f.svc.GetByID(context.Background(), b.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}

	_, err := f.svc.GetByID(context.Background(), b.ID, otherID)
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Equal(t, apperror.KindIllegalAccess, apperror.KindOf(err))

	for _, id := range []int64{-1, 0, 999} {
		_, err = f.svc.GetByID(context.Background(), id, bookerID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, apperror.KindEntityNotFound, apperror.KindOf(err))
	}
}

// seedTimeline creates one booking per temporal category relative to f.now.
func seedTimeline(t *testing.T, f *fixture) map[string]*Booking {
	t.Helper()
	return map[string]*Booking{
		"past":     f.seed(t, -3*day, -2*day, StatusApproved),
		"current":  f.seed(t, -day, day, StatusApproved),
		"future":   f.seed(t, 2*day, 3*day, StatusWaiting),
		"rejected": f.seed(t, 4*day, 5*day, StatusRejected),
		"waiting":  f.seed(t, -5*day, -4*day, StatusWaiting),
	}
}

func ids(bs []*Booking) []int64 {
	out := make([]int64, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}

func TestListByState(t *testing.T) {
	f := newFixture(t)
	tl := seedTimeline(t, f)

	tests := []struct {
		state string
		want  []*Booking
	}{
		{"ALL", []*Booking{tl["rejected"], tl["future"], tl["current"], tl["past"], tl["waiting"]}},
		{"CURRENT", []*Booking{tl["current"]}},
		{"PAST", []*Booking{tl["past"], tl["waiting"]}},
		{"FUTURE", []*Booking{tl["rejected"], tl["future"]}},
		{"WAITING", []*Booking{tl["future"], tl["waiting"]}},
		{"REJECTED", []*Booking{tl["rejected"]}},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			byBooker, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: tt.state})
			require.NoError(t, err)
			assert.Equal(t, ids(tt.want), ids(byBooker))

			byOwner, err := f.svc.ListByOwner(context.Background(), ListRequest{UserID: ownerID, State: tt.state})
			require.NoError(t, err)
			assert.Equal(t, ids(tt.want), ids(byOwner))
		})
	}
}

func TestListRejectedOrdersByEnd(t *testing.T) {
	f := newFixture(t)
	// Later start but earlier end.
	a := f.seed(t, 3*day, 4*day, StatusRejected)
	b := f.seed(t, day, 6*day, StatusRejected)

	got, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "REJECTED"})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, ids(got))

	got, err = f.svc.ListByOwner(context.Background(), ListRequest{UserID: ownerID, State: "REJECTED"})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, ids(got))

	got, err = f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "ALL"})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, ids(got))
}

func TestListAllIsSupersetAndStable(t *testing.T) {
	f := newFixture(t)
	seedTimeline(t, f)
	f.seed(t, 2*day, 3*day, StatusApproved) // same start as "future", tie broken by id

	all, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "ALL"})
	require.NoError(t, err)
	allIDs := ids(all)

	for _, state := range []string{"CURRENT", "PAST", "FUTURE", "WAITING", "REJECTED"} {
		got, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: state})
		require.NoError(t, err)
		assert.Subset(t, allIDs, ids(got), state)
	}

	again, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "ALL"})
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestListScopedToRole(t *testing.T) {
	f := newFixture(t)
	seedTimeline(t, f)

	got, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: ownerID, State: "ALL"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	got, err = f.svc.ListByOwner(context.Background(), ListRequest{UserID: bookerID, State: "ALL"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	seedTimeline(t, f)

	all, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "ALL"})
	require.NoError(t, err)

	page, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "ALL", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, ids(all[2:4]), ids(page))

	page, err = f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "ALL", Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestListErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListByBooker(context.Background(), ListRequest{UserID: bookerID, State: "INVALID_TOKEN"})
	assert.ErrorIs(t, err, ErrUnsupportedState)
	assert.Equal(t, apperror.KindUnsupportedState, apperror.KindOf(err))
	assert.Equal(t, "Unknown state: INVALID_TOKEN", err.Error())

	_, err = f.svc.ListByOwner(context.Background(), ListRequest{UserID: ownerID, State: "all"})
	assert.ErrorIs(t, err, ErrUnsupportedState)

	_, err = f.svc.ListByOwner(context.Background(), ListRequest{UserID: 99, State: "ALL"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApprovedNeighbours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older := f.seed(t, -4*day, -3*day, StatusApproved)
	last := f.seed(t, -2*day, -day, StatusApproved)
	f.seed(t, -day, 5*day, StatusRejected) // ignored: not approved
	next := f.seed(t, day, 2*day, StatusApproved)
	f.seed(t, 2*day, 4*day, StatusApproved)
	f.seed(t, 3*day, 4*day, StatusWaiting)

	gotLast, err := f.svc.LastApproved(ctx, itemID, f.now)
	require.NoError(t, err)
	require.NotNil(t, gotLast)
	assert.Equal(t, last.ID, gotLast.ID)
	assert.NotEqual(t, older.ID, gotLast.ID)

	gotNext, err := f.svc.NextApproved(ctx, itemID, f.now)
	require.NoError(t, err)
	require.NotNil(t, gotNext)
	assert.Equal(t, next.ID, gotNext.ID)

	nb, err := f.svc.ApprovedNeighbours(ctx, []int64{itemID, closedID}, f.now)
	require.NoError(t, err)
	assert.Equal(t, last.ID, nb.Last[itemID].ID)
	assert.Equal(t, next.ID, nb.Next[itemID].ID)
	assert.NotContains(t, nb.Last, closedID)
	assert.NotContains(t, nb.Next, closedID)
}

func TestApprovedNeighboursEmpty(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.LastApproved(context.Background(), itemID, f.now)
	require.NoError(t, err)
	assert.Nil(t, b)

	nb, err := f.svc.ApprovedNeighbours(context.Background(), nil, f.now)
	require.NoError(t, err)
	assert.Empty(t, nb.Last)
	assert.Empty(t, nb.Next)
}

func TestHasFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.svc.HasFinished(ctx, bookerID, itemID, f.now)
	require.NoError(t, err)
	assert.False(t, ok)

	f.seed(t, -2*day, -day, StatusRejected)

	ok, err = f.svc.HasFinished(ctx, bookerID, itemID, f.now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasFinished(ctx, otherID, itemID, f.now)
	require.NoError(t, err)
	assert.False(t, ok)
}

type failingRepository struct {
	Repository
}

var errStore = errors.New("connection refused")

func (failingRepository) Create(context.Context, *Booking) error { return errStore }

func TestCreateStoreFailure(t *testing.T) {
	svc := NewService(failingRepository{NewMemoryRepository()}, newFakeResolver(), zap.NewNop(),
		WithClock(func() time.Time { return baseNow }))

	_, err := svc.Create(context.Background(), CreateRequest{
		BookerID: bookerID, ItemID: itemID, Start: baseNow.Add(day), End: baseNow.Add(2 * day),
	})
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, apperror.KindUnknown, apperror.KindOf(err))
}
