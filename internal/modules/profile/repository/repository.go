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

type ApplicationStats struct {
	Applications int64
	Interviews   int64
	Offers       int64
}

// ProfileRepository resolves the role profile behind a user id. Ownership
// checks always go through here, never through client-supplied profile ids.
type ProfileRepository interface {
	FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error)
	FindCompanyByUserID(ctx context.Context, userID uuid.UUID) (*entity.CompanyProfile, error)
	SaveStudent(ctx context.Context, userID uuid.UUID, name *string, profile *entity.StudentProfile) error
	StudentStats(ctx context.Context, studentID uuid.UUID) (ApplicationStats, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*entity.StudentProfile, error) {
	var profile entity.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student profile: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindCompanyByUserID(ctx context.Context, userID uuid.UUID) (*entity.CompanyProfile, error) {
	var profile entity.CompanyProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("company profile: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

// SaveStudent updates the user's name (when set) and upserts the profile in
// one transaction.
func (r *profileRepository) SaveStudent(ctx context.Context, userID uuid.UUID, name *string, profile *entity.StudentProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if name != nil {
			if err := tx.Model(&entity.User{}).Where("id = ?", userID).Update("name", *name).Error; err != nil {
				return err
			}
		}

		profile.UserID = userID
		if profile.ID == uuid.Nil {
			return tx.Create(profile).Error
		}
		return tx.Omit("User").Save(profile).Error
	})
}

func (r *profileRepository) StudentStats(ctx context.Context, studentID uuid.UUID) (ApplicationStats, error) {
	var rows []struct {
		Status entity.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Application{}).
		Select("status, count(*) as count").
		Where("student_id = ?", studentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ApplicationStats{}, err
	}

	var stats ApplicationStats
	for _, row := range rows {
		stats.Applications += row.Count
		switch row.Status {
		case entity.StatusInterview:
			stats.Interviews = row.Count
		case entity.StatusAccepted:
			stats.Offers = row.Count
		}
	}
	return stats, nil
}
