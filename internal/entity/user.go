package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleCompany Role = "COMPANY"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"size:100;not null" json:"name"`
	Email        string          `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string          `gorm:"size:255;not null" json:"-"`
	Role         Role            `gorm:"size:20;not null;index" json:"role"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Student      *StudentProfile `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Company      *CompanyProfile `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type StudentProfile struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User            *User          `json:"user,omitempty"`
	Phone           string         `gorm:"size:30" json:"phone"`
	Location        string         `gorm:"size:100" json:"location"`
	Education       string         `gorm:"type:text" json:"education"`
	Bio             string         `gorm:"type:text" json:"bio"`
	Experience      string         `gorm:"type:text" json:"experience"`
	LinkedIn        string         `gorm:"size:255" json:"linkedin"`
	GitHub          string         `gorm:"size:255" json:"github"`
	Website         string         `gorm:"size:255" json:"website"`
	Skills          pq.StringArray `gorm:"type:text[]" json:"skills"`
	ResumeURL       string         `gorm:"type:text" json:"resume_url"`
	ProfileImageURL string         `gorm:"type:text" json:"profile_image_url"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *StudentProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type CompanyProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Website   string    `gorm:"size:255" json:"website"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Jobs      []Job     `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"jobs,omitempty"`
}

func (p *CompanyProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// DisplayName falls back to the owning user's name when the company has none.
func (p *CompanyProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.User != nil {
		return p.User.Name
	}
	return ""
}
