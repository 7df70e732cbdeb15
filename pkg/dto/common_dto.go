package dto

import "io"

// FileUpload is a multipart part handed from a handler to a service.
type FileUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

type PaginationQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// LimitOr returns the requested limit or fallback when unset.
func (q PaginationQuery) LimitOr(fallback int) int {
	if q.Limit <= 0 {
		return fallback
	}
	return q.Limit
}

type MessageResponse struct {
	Message string `json:"message"`
}
