package itemrequest

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.NewKind(apperror.KindEntityNotFound, http.StatusNotFound, "item request not found")
	ErrDescriptionRequired = apperror.NewKind(apperror.KindValidation, http.StatusBadRequest, "description is required")
)

// ItemRequest asks other users to list an item nobody offers yet.
type ItemRequest struct {
	ID          int64
	Description string
	RequestorID int64
	Created     time.Time
}

// Details is a request together with the items listed in answer to it.
type Details struct {
	Request *ItemRequest
	Items   []*item.Item
}
