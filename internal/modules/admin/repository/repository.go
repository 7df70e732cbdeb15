package repository

import (
	"context"

	"anoa.com/campusrecruit/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobWithCount is a job plus the number of applications it has received.
type JobWithCount struct {
	entity.Job
	ApplicationCount int64
}

type AdminRepository interface {
	CountJobs(ctx context.Context) (int64, error)
	CountApplications(ctx context.Context, status *entity.ApplicationStatus) (int64, error)
	RecentJobs(ctx context.Context, limit int) ([]JobWithCount, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CountJobs(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Job{}).Count(&count).Error
	return count, err
}

func (r *adminRepository) CountApplications(ctx context.Context, status *entity.ApplicationStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Application{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *adminRepository) RecentJobs(ctx context.Context, limit int) ([]JobWithCount, error) {
	var jobs []entity.Job
	err := r.db.WithContext(ctx).
		Preload("Company.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Order("created_at desc").
		Limit(limit).
		Find(&jobs).Error
	if err != nil || len(jobs) == 0 {
		return []JobWithCount{}, err
	}

	ids := make([]uuid.UUID, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}

	var rows []struct {
		JobID uuid.UUID
		Count int64
	}
	err = r.db.WithContext(ctx).
		Model(&entity.Application{}).
		Select("job_id, count(*) as count").
		Where("job_id IN ?", ids).
		Group("job_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.JobID] = row.Count
	}

	out := make([]JobWithCount, len(jobs))
	for i, j := range jobs {
		out[i] = JobWithCount{Job: j, ApplicationCount: counts[j.ID]}
	}
	return out, nil
}
