package item

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/user"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, ownerID int64, req CreateRequest) (*Item, error)
	Update(ctx context.Context, itemID, userID int64, req UpdateRequest) (*Item, error)
	GetByID(ctx context.Context, itemID, userID int64) (*Details, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Details, error)
	Search(ctx context.Context, text string, limit, offset int) ([]*Item, error)
	AddComment(ctx context.Context, itemID, userID int64, text string) (*Comment, error)
}

// RequestChecker reports whether an item request exists.
type RequestChecker interface {
	Exists(ctx context.Context, requestID int64) (bool, error)
}

// Option customizes a service.
type Option func(*service)

// WithClock replaces the wall clock used for enrichment and comment checks.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo     Repository
	users    user.Service
	bookings booking.Service
	requests RequestChecker
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, users user.Service, bookings booking.Service, requests RequestChecker, log *zap.Logger, opts ...Option) Service {
	s := &service{
		repo:     repo,
		users:    users,
		bookings: bookings,
		requests: requests,
		log:      log.Named("item"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, ownerID int64, req CreateRequest) (*Item, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if req.RequestID != nil {
		exists, err := s.requests.Exists(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrRequestNotFound
		}
	}

	it := &Item{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Available:   req.Available,
		OwnerID:     owner.ID,
		RequestID:   req.RequestID,
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}

	s.log.Info("item created", zap.Int64("item_id", it.ID), zap.Int64("owner_id", it.OwnerID))
	return it, nil
}

func (s *service) Update(ctx context.Context, itemID, userID int64, req UpdateRequest) (*Item, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != userID {
		return nil, ErrNotOwner
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		it.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		it.Description = strings.TrimSpace(*req.Description)
	}
	if req.Available != nil {
		it.Available = *req.Available
	}

	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *service) GetByID(ctx context.Context, itemID, userID int64) (*Details, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	d := &Details{Item: it}

	// Only the owner sees the booking neighbours.
	if it.OwnerID == userID {
		now := s.now()
		if d.LastBooking, err = s.bookings.LastApproved(ctx, it.ID, now); err != nil {
			return nil, err
		}
		if d.NextBooking, err = s.bookings.NextApproved(ctx, it.ID, now); err != nil {
			return nil, err
		}
	}

	if d.Comments, err = s.repo.ListComments(ctx, []int64{it.ID}); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Details, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	neighbours, err := s.bookings.ApprovedNeighbours(ctx, ids, s.now())
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	byItem := make(map[int64][]*Comment, len(items))
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], c)
	}

	out := make([]*Details, len(items))
	for i, it := range items {
		cs := byItem[it.ID]
		if cs == nil {
			cs = []*Comment{}
		}
		out[i] = &Details{
			Item:        it,
			LastBooking: neighbours.Last[it.ID],
			NextBooking: neighbours.Next[it.ID],
			Comments:    cs,
		}
	}
	return out, nil
}

func (s *service) Search(ctx context.Context, text string, limit, offset int) ([]*Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*Item{}, nil
	}
	return s.repo.Search(ctx, text, limit, offset)
}

func (s *service) AddComment(ctx context.Context, itemID, userID int64, text string) (*Comment, error) {
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	finished, err := s.bookings.HasFinished(ctx, author.ID, it.ID, now)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, ErrNotBooker
	}

	c := &Comment{
		Text:       strings.TrimSpace(text),
		ItemID:     it.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("comment added", zap.Int64("item_id", it.ID), zap.Int64("author_id", author.ID))
	return c, nil
}
