package user

import (
	"net/http"

	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed = apperror.NewKind(apperror.KindConflict, http.StatusConflict, "email already used")
	ErrEmailRequired    = apperror.NewKind(apperror.KindValidation, http.StatusBadRequest, "email is required")
	ErrNameRequired     = apperror.NewKind(apperror.KindValidation, http.StatusBadRequest, "name is required")
)

// User represents a user in the system.
type User struct {
	ID    int64
	Name  string
	Email string
}

// UpdateRequest carries a partial update. Nil or blank fields are left unchanged.
type UpdateRequest struct {
	Name  *string
	Email *string
}
