package http

import (
	"time"

	itemHttp "github.com/nekogravitycat/shareit-backend/internal/item/http"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
)

type CreateRequestBody struct {
	Description string `json:"description" binding:"required,notblank,max=1000"`
}

type RequestResponse struct {
	ID          int64                   `json:"id"`
	Description string                  `json:"description"`
	RequestorID int64                   `json:"requestorId"`
	Created     time.Time               `json:"created"`
	Items       []itemHttp.ItemResponse `json:"items"`
}

func NewRequestResponse(d *itemrequest.Details) RequestResponse {
	items := make([]itemHttp.ItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = itemHttp.NewItemResponse(it)
	}
	return RequestResponse{
		ID:          d.Request.ID,
		Description: d.Request.Description,
		RequestorID: d.Request.RequestorID,
		Created:     d.Request.Created,
		Items:       items,
	}
}

func newRequestResponses(list []*itemrequest.Details) []RequestResponse {
	out := make([]RequestResponse, len(list))
	for i, d := range list {
		out[i] = NewRequestResponse(d)
	}
	return out
}
