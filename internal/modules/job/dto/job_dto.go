package dto

type ListJobsQuery struct {
	Q         string `form:"q" binding:"max=200"`
	Location  string `form:"location" binding:"max=150"`
	CompanyID string `form:"companyId" binding:"omitempty,uuid"`
}

type CreateJobInput struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"required"`
	Location    *string `json:"location" binding:"omitempty,max=150"`
}

// UpdateJobInput leaves nil fields unchanged.
type UpdateJobInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Location    *string `json:"location" binding:"omitempty,max=150"`
}
