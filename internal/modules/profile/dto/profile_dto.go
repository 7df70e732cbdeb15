package dto

import "github.com/google/uuid"

// UpdateStudentProfileInput is bound from a multipart form. Nil fields are
// left unchanged.
type UpdateStudentProfileInput struct {
	Name       *string `form:"name" binding:"omitempty,max=100"`
	Phone      *string `form:"phone" binding:"omitempty,max=30"`
	Location   *string `form:"location" binding:"omitempty,max=100"`
	Education  *string `form:"education"`
	Skills     *string `form:"skills"`
	Bio        *string `form:"bio"`
	LinkedIn   *string `form:"linkedin" binding:"omitempty,max=255"`
	GitHub     *string `form:"github" binding:"omitempty,max=255"`
	Website    *string `form:"website" binding:"omitempty,max=255"`
	Experience *string `form:"experience"`
}

type StudentStats struct {
	Applications int64 `json:"applications"`
	Interviews   int64 `json:"interviews"`
	Offers       int64 `json:"offers"`
}

type StudentProfileResponse struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	Location        string       `json:"location"`
	Education       string       `json:"education"`
	Skills          []string     `json:"skills"`
	Bio             string       `json:"bio"`
	LinkedIn        string       `json:"linkedin"`
	GitHub          string       `json:"github"`
	Website         string       `json:"website"`
	Experience      string       `json:"experience"`
	ProfileImageURL string       `json:"profile_image_url"`
	ResumeURL       string       `json:"resume_url"`
	Stats           StudentStats `json:"stats"`
}
