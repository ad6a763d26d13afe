package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

type Handler struct {
	service itemrequest.Service
}

func NewHandler(service itemrequest.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	d, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRequestResponse(d))
}

// ListMine returns the acting user's requests with their answers.
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListByRequestor(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newRequestResponses(list))
}

// ListAll pages through requests made by other users.
func (h *Handler) ListAll(c *gin.Context) {
	var req request.ListParams
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list, err := h.service.ListOthers(c.Request.Context(), auth.GetUserID(c), req.Size, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newRequestResponses(list))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRequestResponse(d))
}
