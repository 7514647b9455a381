package models

// PageRequest is a zero-based page index plus a page size.
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// NewPageRequest clamps page to >= 0 and size to [1, MaxPageSize],
// falling back to DefaultPageSize for a non-positive size.
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

func (p PageRequest) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

func (p PageRequest) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return p.Page * p.Limit()
}
