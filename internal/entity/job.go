package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *CompanyProfile `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Title        string          `gorm:"size:200;not null" json:"title"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Location     *string         `gorm:"size:150" json:"location"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Applications []Application   `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID, err = uuid.NewV7()
	}
	return
}
