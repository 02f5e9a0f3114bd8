package model

// ErrorResponse is the JSON body returned for every error. RequiresSecretKey
// is set only on the login response that asks the client to prompt for the
// device-verification secret.
type ErrorResponse struct {
	Message           string `json:"message"`
	RequiresSecretKey bool   `json:"requiresSecretKey,omitempty"`
}

// Pagination carries paging metadata for list responses.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
	HasMore     bool  `json:"hasMore"`
}

// NewPagination computes paging metadata for a page of `count` items out of
// `total`, fetched with the given 1-based page and page size.
func NewPagination(page, limit, count int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	skip := (page - 1) * limit
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasMore:     int64(skip+count) < total,
	}
}
