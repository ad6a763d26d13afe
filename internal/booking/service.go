package booking

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type CreateRequest struct {
	BookerID int64
	ItemID   int64
	Start    time.Time
	End      time.Time
}

type ListRequest struct {
	UserID int64
	State  string
	Limit  int
	Offset int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Decide(ctx context.Context, bookingID int64, approved bool, userID int64) (*Booking, error)
	GetByID(ctx context.Context, bookingID int64, userID int64) (*Booking, error)
	ListByBooker(ctx context.Context, req ListRequest) ([]*Booking, error)
	ListByOwner(ctx context.Context, req ListRequest) ([]*Booking, error)

	LastApproved(ctx context.Context, itemID int64, asOf time.Time) (*Booking, error)
	NextApproved(ctx context.Context, itemID int64, asOf time.Time) (*Booking, error)
	ApprovedNeighbours(ctx context.Context, itemIDs []int64, asOf time.Time) (Neighbours, error)
	HasFinished(ctx context.Context, bookerID, itemID int64, asOf time.Time) (bool, error)
}

// Option customizes a service.
type Option func(*service)

// WithClock replaces the wall clock used for date checks and temporal listings.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo     Repository
	resolver Resolver
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, resolver Resolver, log *zap.Logger, opts ...Option) Service {
	s := &service{
		repo:     repo,
		resolver: resolver,
		log:      log.Named("booking"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	// 1. Resolve Booker and Item
	booker, err := s.resolver.ResolveUser(ctx, req.BookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.resolver.ResolveItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	// 2. Item rules
	if !item.Available {
		return nil, ErrItemNotAvailable
	}
	if booker.ID == item.OwnerID {
		return nil, ErrBookOwnItem
	}

	// 3. Validate Time Range
	if err := validateDates(req.Start, req.End, s.now()); err != nil {
		return nil, err
	}

	b := &Booking{
		Start:      req.Start,
		End:        req.End,
		ItemID:     item.ID,
		ItemName:   item.Name,
		OwnerID:    item.OwnerID,
		BookerID:   booker.ID,
		BookerName: booker.Name,
		Status:     StatusWaiting,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.log.Error("create booking", zap.Int64("item_id", item.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("item_id", b.ItemID),
		zap.Int64("booker_id", b.BookerID),
	)
	return b, nil
}

// validateDates requires both timestamps, end strictly after start, and start not before now.
func validateDates(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidDateRange
	}
	if !end.After(start) || start.Before(now) {
		return ErrInvalidDateRange
	}
	return nil
}

func (s *service) Decide(ctx context.Context, bookingID int64, approved bool, userID int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.resolver.ResolveItem(ctx, b.ItemID)
	if err != nil {
		return nil, err
	}

	next := decision(approved)
	if !b.Status.CanTransitionTo(next) {
		return nil, ErrAlreadyDecided
	}
	if item.OwnerID != userID {
		return nil, ErrNotItemOwner
	}

	decided, err := s.repo.Decide(ctx, b.ID, next)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking decided",
		zap.Int64("booking_id", decided.ID),
		zap.String("status", decided.Status.String()),
		zap.Int64("owner_id", userID),
	)
	return decided, nil
}

func (s *service) GetByID(ctx context.Context, bookingID int64, userID int64) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	booker, err := s.resolver.ResolveUser(ctx, b.BookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.resolver.ResolveItem(ctx, b.ItemID)
	if err != nil {
		return nil, err
	}
	owner, err := s.resolver.ResolveUser(ctx, item.OwnerID)
	if err != nil {
		return nil, err
	}

	if booker.ID != userID && owner.ID != userID {
		return nil, ErrNotParticipant
	}
	return b, nil
}

func (s *service) ListByBooker(ctx context.Context, req ListRequest) ([]*Booking, error) {
	return s.list(ctx, RoleBooker, req)
}

func (s *service) ListByOwner(ctx context.Context, req ListRequest) ([]*Booking, error) {
	return s.list(ctx, RoleOwner, req)
}

// list runs the state's specification scoped to the subject's role.
func (s *service) list(ctx context.Context, role Role, req ListRequest) ([]*Booking, error) {
	subject, err := s.resolver.ResolveUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	state, err := ParseState(req.State)
	if err != nil {
		return nil, err
	}

	return s.repo.List(ctx, Query{
		Role:      role,
		SubjectID: subject.ID,
		Spec:      state.Spec(),
		Now:       s.now(),
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
}

func (s *service) HasFinished(ctx context.Context, bookerID, itemID int64, asOf time.Time) (bool, error) {
	return s.repo.ExistsFinished(ctx, bookerID, itemID, asOf)
}
