package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactUpdate is merged into the student profile when an application is
// created. Empty fields leave the profile untouched.
type ContactUpdate struct {
	Phone     string
	ResumeURL string
}

func (c ContactUpdate) columns() map[string]any {
	cols := map[string]any{}
	if c.Phone != "" {
		cols["phone"] = c.Phone
	}
	if c.ResumeURL != "" {
		cols["resume_url"] = c.ResumeURL
	}
	return cols
}

type ApplicationRepository interface {
	Exists(ctx context.Context, studentID, jobID uuid.UUID) (bool, error)
	Create(ctx context.Context, app *entity.Application, contact ContactUpdate) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus, message *string) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Application, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Application, error)
	ListByCompanyWithOwner(ctx context.Context, companyID uuid.UUID) ([]entity.Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Application, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func userSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

func (r *applicationRepository) Exists(ctx context.Context, studentID, jobID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Application{}).
		Where("student_id = ? AND job_id = ?", studentID, jobID).
		Count(&count).Error
	return count > 0, err
}

// Create merges the contact fields and inserts the application in one
// transaction. The (student_id, job_id) unique index turns a lost race into
// ErrConflict.
func (r *applicationRepository) Create(ctx context.Context, app *entity.Application, contact ContactUpdate) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cols := contact.columns(); len(cols) > 0 {
			if err := tx.Model(&entity.StudentProfile{}).Where("id = ?", app.StudentID).Updates(cols).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Job", "Student").Create(app).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("application: %w", apperror.ErrConflict)
	}
	return err
}

func (r *applicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Application, error) {
	var app entity.Application
	err := r.db.WithContext(ctx).
		Preload("Job.Company.User", userSummary).
		Preload("Student.User", userSummary).
		First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("application: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApplicationStatus, message *string) error {
	cols := map[string]any{"status": status}
	if message != nil {
		cols["message"] = *message
	}

	res := r.db.WithContext(ctx).
		Model(&entity.Application{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("application: %w", apperror.ErrNotFound)
	}
	return nil
}

func (r *applicationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Application, error) {
	var apps []entity.Application
	err := r.db.WithContext(ctx).
		Preload("Job.Company").
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) byCompany(ctx context.Context, companyID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", companyID).
		Order("applications.created_at desc")
}

func (r *applicationRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Application, error) {
	var apps []entity.Application
	err := r.byCompany(ctx, companyID).
		Preload("Job").
		Preload("Student.User", userSummary).
		Find(&apps).Error
	return apps, err
}

// ListByCompanyWithOwner also loads the job's company and its account.
func (r *applicationRepository) ListByCompanyWithOwner(ctx context.Context, companyID uuid.UUID) ([]entity.Application, error) {
	var apps []entity.Application
	err := r.byCompany(ctx, companyID).
		Preload("Job.Company.User", userSummary).
		Preload("Student.User", userSummary).
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.Application, error) {
	var apps []entity.Application
	err := r.db.WithContext(ctx).
		Preload("Student.User", userSummary).
		Where("job_id = ?", jobID).
		Order("created_at desc").
		Find(&apps).Error
	return apps, err
}
