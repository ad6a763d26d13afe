package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

type Handler struct {
	service item.Service
}

func NewHandler(service item.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	it, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), item.CreateRequest{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewItemResponse(it))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	it, err := h.service.Update(c.Request.Context(), uri.ID, auth.GetUserID(c), item.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemResponse(it))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemDetailsResponse(d))
}

func (h *Handler) ListMine(c *gin.Context) {
	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := h.service.ListByOwner(c.Request.Context(), auth.GetUserID(c), req.Size, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ItemDetailsResponse, len(list))
	for i, d := range list {
		items[i] = NewItemDetailsResponse(d)
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) Search(c *gin.Context) {
	var req SearchItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	found, err := h.service.Search(c.Request.Context(), req.Text, req.Size, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ItemResponse, len(found))
	for i, it := range found {
		items[i] = NewItemResponse(it)
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) AddComment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body CommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), uri.ID, auth.GetUserID(c), body.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewCommentResponse(comment))
}
