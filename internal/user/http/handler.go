package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
}

// NewHandler creates the user handler. jwtManager may be nil, which disables token issuing.
func NewHandler(userService user.Service, jwtManager *auth.JWTManager) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Create(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUserResponse(u))
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}

	c.JSON(http.StatusOK, items)
}

func (h *UserHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	u, err := h.userService.Update(c.Request.Context(), uri.ID, user.UpdateRequest{
		Name:  body.Name,
		Email: body.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.userService.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// IssueToken signs an access token for the user the gateway vouched for.
func (h *UserHandler) IssueToken(c *gin.Context) {
	if h.jwtManager == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "token issuing is disabled"})
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		User:        NewUserResponse(u),
	})
}
