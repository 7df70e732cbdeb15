package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "PENDING"
	StatusInterview ApplicationStatus = "INTERVIEW"
	StatusAccepted  ApplicationStatus = "ACCEPTED"
	StatusRejected  ApplicationStatus = "REJECTED"
)

// statusAliases maps legacy spellings still sent by older clients.
var statusAliases = map[string]ApplicationStatus{
	"APPROVED": StatusAccepted,
}

// ParseApplicationStatus normalises a client-supplied status. ok is false for
// anything outside the four known states.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if alias, found := statusAliases[s]; found {
		return alias, true
	}
	switch st := ApplicationStatus(s); st {
	case StatusPending, StatusInterview, StatusAccepted, StatusRejected:
		return st, true
	}
	return "", false
}

// Application links one student profile to one job. JobID and StudentID never
// change after creation; the composite unique index is the duplicate guard.
type Application struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	JobID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_student_job,priority:2;index" json:"job_id"`
	Job       *Job              `gorm:"constraint:OnDelete:CASCADE" json:"job,omitempty"`
	StudentID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_applications_student_job,priority:1" json:"student_id"`
	Student   *StudentProfile   `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Status    ApplicationStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	Message   *string           `gorm:"type:text" json:"message,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return
}
