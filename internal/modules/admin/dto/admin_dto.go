package dto

import (
	"time"

	"anoa.com/campusrecruit/internal/entity"
	"github.com/google/uuid"
)

type StatsResponse struct {
	TotalUsers           int64 `json:"total_users"`
	TotalJobs            int64 `json:"total_jobs"`
	TotalApplications    int64 `json:"total_applications"`
	ApprovedApplications int64 `json:"approved_applications"`
}

type UserProfileSummary struct {
	ID          *uuid.UUID `json:"id"`
	Phone       *string    `json:"phone"`
	CompanyName *string    `json:"company_name"`
}

type AdminUserResponse struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Role      entity.Role        `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
	Profile   UserProfileSummary `json:"profile"`
}

type JobCompanySummary struct {
	ID    *uuid.UUID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
}

type AdminJobResponse struct {
	ID               uuid.UUID         `json:"id"`
	Title            string            `json:"title"`
	Location         *string           `json:"location"`
	CreatedAt        time.Time         `json:"created_at"`
	Company          JobCompanySummary `json:"company"`
	ApplicationCount int64             `json:"application_count"`
}

func NewAdminUserResponse(u entity.User) AdminUserResponse {
	res := AdminUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	switch {
	case u.Student != nil:
		id := u.Student.ID
		res.Profile.ID = &id
		if u.Student.Phone != "" {
			phone := u.Student.Phone
			res.Profile.Phone = &phone
		}
	case u.Company != nil:
		id, name := u.Company.ID, u.Company.Name
		res.Profile.ID = &id
		res.Profile.CompanyName = &name
	}
	return res
}

func NewAdminJobResponse(j entity.Job, applications int64) AdminJobResponse {
	res := AdminJobResponse{
		ID:               j.ID,
		Title:            j.Title,
		Location:         j.Location,
		CreatedAt:        j.CreatedAt,
		ApplicationCount: applications,
	}
	if c := j.Company; c != nil {
		id := c.ID
		res.Company.ID = &id
		res.Company.Name = c.DisplayName()
		if c.User != nil {
			res.Company.Email = c.User.Email
		}
	}
	return res
}
