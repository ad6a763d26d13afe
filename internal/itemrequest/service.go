package itemrequest

import (
	"context"
	"strings"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/user"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, userID int64, description string) (*Details, error)
	ListByRequestor(ctx context.Context, userID int64) ([]*Details, error)
	ListOthers(ctx context.Context, userID int64, limit, offset int) ([]*Details, error)
	GetByID(ctx context.Context, requestID, userID int64) (*Details, error)
}

// ItemLister finds the items listed in answer to requests.
type ItemLister interface {
	ListByRequests(ctx context.Context, requestIDs []int64) ([]*item.Item, error)
}

// Option customizes a service.
type Option func(*service)

// WithClock replaces the wall clock stamping new requests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo  Repository
	users user.Service
	items ItemLister
	log   *zap.Logger
	now   func() time.Time
}

func NewService(repo Repository, users user.Service, items ItemLister, log *zap.Logger, opts ...Option) Service {
	s := &service{
		repo:  repo,
		users: users,
		items: items,
		log:   log.Named("request"),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, userID int64, description string) (*Details, error) {
	requestor, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	req := &ItemRequest{
		Description: description,
		RequestorID: requestor.ID,
		Created:     s.now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		s.log.Error("create request", zap.Int64("requestor_id", requestor.ID), zap.Error(err))
		return nil, err
	}

	s.log.Info("request created", zap.Int64("request_id", req.ID), zap.Int64("requestor_id", req.RequestorID))
	return &Details{Request: req, Items: []*item.Item{}}, nil
}

func (s *service) ListByRequestor(ctx context.Context, userID int64) ([]*Details, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *service) ListOthers(ctx context.Context, userID int64, limit, offset int) ([]*Details, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.ListOthers(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// GetByID is open to any existing user, not only the requestor.
func (s *service) GetByID(ctx context.Context, requestID, userID int64) (*Details, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	list, err := s.withItems(ctx, []*ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// withItems attaches answering items to every request with a single lookup.
func (s *service) withItems(ctx context.Context, requests []*ItemRequest) ([]*Details, error) {
	out := make([]*Details, len(requests))
	if len(requests) == 0 {
		return out, nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}

	answers, err := s.items.ListByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]*item.Item, len(requests))
	for _, it := range answers {
		if it.RequestID != nil {
			byRequest[*it.RequestID] = append(byRequest[*it.RequestID], it)
		}
	}

	for i, r := range requests {
		items := byRequest[r.ID]
		if items == nil {
			items = []*item.Item{}
		}
		out[i] = &Details{Request: r, Items: items}
	}
	return out, nil
}
