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

type Filter struct {
	Query     string
	Location  string
	CompanyID *uuid.UUID
}

type JobRepository interface {
	List(ctx context.Context, filter Filter) ([]entity.Job, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	Create(ctx context.Context, job *entity.Job) error
	Update(ctx context.Context, job *entity.Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func companySummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "website", "user_id")
}

func (r *jobRepository) List(ctx context.Context, filter Filter) ([]entity.Job, error) {
	query := r.db.WithContext(ctx).Model(&entity.Job{}).Preload("Company", companySummary)

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}

	var jobs []entity.Job
	if err := query.Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	var job entity.Job
	err := r.db.WithContext(ctx).
		Preload("Company", companySummary).
		First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) Create(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).Omit("Company").Create(job).Error
}

func (r *jobRepository) Update(ctx context.Context, job *entity.Job) error {
	return r.db.WithContext(ctx).
		Model(&entity.Job{}).
		Where("id = ?", job.ID).
		Updates(map[string]any{
			"title":       job.Title,
			"description": job.Description,
			"location":    job.Location,
		}).Error
}

// Delete removes the job and every application for it in one transaction.
func (r *jobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&entity.Application{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Job{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("job: %w", apperror.ErrNotFound)
		}
		return nil
	})
}
