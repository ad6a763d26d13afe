package request

import "errors"

var ErrInvalidPage = errors.New("from must be >= 0 and size must be > 0")

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
// Any integer binds; ids that match nothing fail later as not found.
type ByIDRequest struct {
	ID int64 `uri:"id"`
}

// ListParams holds offset-style pagination used by list endpoints.
type ListParams struct {
	From int `form:"from,default=0"`
	Size int `form:"size,default=10"`
}

// Validate performs custom validation for ListParams.
func (p *ListParams) Validate() error {
	if p.From < 0 || p.Size <= 0 {
		return ErrInvalidPage
	}
	return nil
}

// Offset returns the first row of the page containing From.
func (p ListParams) Offset() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.From / p.Size) * p.Size
}
