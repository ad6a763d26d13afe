package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	items    map[int64]*item.Item
	details  *item.Details
	lastText string
	gotLimit int
	gotOff   int
}

func newStubService() *stubService {
	return &stubService{items: map[int64]*item.Item{}}
}

func (s *stubService) Create(_ context.Context, ownerID int64, req item.CreateRequest) (*item.Item, error) {
	if req.RequestID != nil && *req.RequestID != 50 {
		return nil, item.ErrRequestNotFound
	}
	it := &item.Item{ID: int64(len(s.items) + 1), Name: req.Name, Description: req.Description, Available: req.Available, OwnerID: ownerID, RequestID: req.RequestID}
	s.items[it.ID] = it
	return it, nil
}

func (s *stubService) Update(_ context.Context, itemID, userID int64, req item.UpdateRequest) (*item.Item, error) {
	it, ok := s.items[itemID]
	if !ok {
		return nil, item.ErrNotFound
	}
	if it.OwnerID != userID {
		return nil, item.ErrNotOwner
	}
	if req.Available != nil {
		it.Available = *req.Available
	}
	return it, nil
}

func (s *stubService) GetByID(_ context.Context, itemID, _ int64) (*item.Details, error) {
	if s.details == nil || s.details.Item.ID != itemID {
		return nil, item.ErrNotFound
	}
	return s.details, nil
}

func (s *stubService) ListByOwner(_ context.Context, _ int64, limit, offset int) ([]*item.Details, error) {
	s.gotLimit, s.gotOff = limit, offset
	if s.details == nil {
		return []*item.Details{}, nil
	}
	return []*item.Details{s.details}, nil
}

func (s *stubService) Search(_ context.Context, text string, limit, offset int) ([]*item.Item, error) {
	s.lastText, s.gotLimit, s.gotOff = text, limit, offset
	out := make([]*item.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out, nil
}

func (s *stubService) AddComment(_ context.Context, itemID, userID int64, text string) (*item.Comment, error) {
	if userID != 2 {
		return nil, item.ErrNotBooker
	}
	return &item.Comment{ID: 1, Text: text, ItemID: itemID, AuthorID: userID, AuthorName: "Booker", Created: time.Now()}, nil
}

func setupRouter(svc item.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	request.MustRegisterValidators()

	r := gin.New()
	RegisterRoutes(r.Group(""), NewHandler(svc), auth.Identify(nil))
	return r
}

func executeRequest(r http.Handler, method, url string, body any, userID int64) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(auth.UserIDHeader, strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateItem(t *testing.T) {
	svc := newStubService()
	r := setupRouter(svc)

	w := executeRequest(r, http.MethodPost, "/items", gin.H{"name": "Drill", "description": "Cordless", "available": true}, 1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Drill", resp.Name)
	assert.True(t, resp.Available)
	assert.Equal(t, int64(1), resp.OwnerID)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing available", gin.H{"name": "Drill", "description": "Cordless"}},
		{"blank name", gin.H{"name": "   ", "description": "Cordless", "available": true}},
		{"missing description", gin.H{"name": "Drill", "available": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := executeRequest(r, http.MethodPost, "/items", tt.body, 1)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w = executeRequest(r, http.MethodPost, "/items", gin.H{"name": "Saw", "description": "Hand saw", "available": true}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateItemForRequest(t *testing.T) {
	r := setupRouter(newStubService())

	w := executeRequest(r, http.MethodPost, "/items", gin.H{"name": "Tent", "description": "Two-person", "available": true, "requestId": 50}, 1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.RequestID)
	assert.Equal(t, int64(50), *resp.RequestID)

	w = executeRequest(r, http.MethodPost, "/items", gin.H{"name": "Tent", "description": "Two-person", "available": true, "requestId": 51}, 1)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = executeRequest(r, http.MethodPost, "/items", gin.H{"name": "Lamp", "description": "Desk lamp", "available": true}, 1)
	require.Equal(t, http.StatusCreated, w.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "requestId")
	assert.Nil(t, raw["requestId"])
}

func TestUpdateItem(t *testing.T) {
	svc := newStubService()
	svc.items[1] = &item.Item{ID: 1, Name: "Drill", Description: "Cordless", Available: true, OwnerID: 1}
	r := setupRouter(svc)

	w := executeRequest(r, http.MethodPatch, "/items/1", gin.H{"available": false}, 1)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Available)

	w = executeRequest(r, http.MethodPatch, "/items/1", gin.H{"available": true}, 3)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest(r, http.MethodPatch, "/items/99", gin.H{}, 1)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = executeRequest(r, http.MethodPatch, "/items/abc", gin.H{}, 1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetItemDetails(t *testing.T) {
	svc := newStubService()
	now := time.Now().UTC()
	svc.details = &item.Details{
		Item:        &item.Item{ID: 5, Name: "Tent", Description: "Two-person", Available: true, OwnerID: 1},
		LastBooking: &booking.Booking{ID: 7, BookerID: 2, Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour)},
		Comments:    []*item.Comment{{ID: 1, Text: "Dry all night", AuthorName: "Booker", Created: now}},
	}
	r := setupRouter(svc)

	w := executeRequest(r, http.MethodGet, "/items/5", nil, 1)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "nextBooking")
	assert.Nil(t, raw["nextBooking"])

	var resp ItemDetailsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.LastBooking)
	assert.Equal(t, int64(7), resp.LastBooking.ID)
	assert.Equal(t, int64(2), resp.LastBooking.BookerID)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "Booker", resp.Comments[0].AuthorName)

	w = executeRequest(r, http.MethodGet, "/items/6", nil, 1)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndSearch(t *testing.T) {
	svc := newStubService()
	svc.items[1] = &item.Item{ID: 1, Name: "Drill", Description: "Cordless", Available: true, OwnerID: 1}
	r := setupRouter(svc)

	w := executeRequest(r, http.MethodGet, "/items?from=20&size=10", nil, 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, svc.gotLimit)
	assert.Equal(t, 20, svc.gotOff)
	assert.JSONEq(t, "[]", w.Body.String())

	w = executeRequest(r, http.MethodGet, "/items/search?text=dRiLL", nil, 3)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dRiLL", svc.lastText)
	var found []ItemResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Len(t, found, 1)

	w = executeRequest(r, http.MethodGet, "/items/search?text=x&size=0", nil, 3)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = executeRequest(r, http.MethodGet, "/items?from=-1", nil, 1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddComment(t *testing.T) {
	r := setupRouter(newStubService())

	w := executeRequest(r, http.MethodPost, "/items/1/comment", gin.H{"text": "Great drill"}, 2)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Great drill", resp.Text)
	assert.Equal(t, "Booker", resp.AuthorName)

	w = executeRequest(r, http.MethodPost, "/items/1/comment", gin.H{"text": "Never used it"}, 3)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = executeRequest(r, http.MethodPost, "/items/1/comment", gin.H{"text": " "}, 2)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
