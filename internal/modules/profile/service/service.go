package profile

import (
	"context"
	"errors"
	"strings"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	profileDto "anoa.com/campusrecruit/internal/modules/profile/dto"
	"anoa.com/campusrecruit/internal/modules/profile/repository"
	upload "anoa.com/campusrecruit/internal/modules/upload/service"
	userRepo "anoa.com/campusrecruit/internal/modules/user/repository"
	"anoa.com/campusrecruit/pkg/apperror"
	commonDto "anoa.com/campusrecruit/pkg/dto"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ProfileService interface {
	GetStudentProfile(ctx context.Context, p *authz.Principal) (*profileDto.StudentProfileResponse, error)
	UpdateStudentProfile(ctx context.Context, p *authz.Principal, input profileDto.UpdateStudentProfileInput, image, resume *commonDto.FileUpload) (*profileDto.StudentProfileResponse, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	users    userRepo.UserRepository
	uploads  upload.UploadService
}

func NewProfileService(profiles repository.ProfileRepository, users userRepo.UserRepository, uploads upload.UploadService) ProfileService {
	return &profileService{
		profiles: profiles,
		users:    users,
		uploads:  uploads,
	}
}

// loadStudent returns the caller's user row and profile. A missing profile
// is returned as an empty, unsaved one.
func (s *profileService) loadStudent(ctx context.Context, p *authz.Principal) (*entity.User, *entity.StudentProfile, error) {
	if err := authz.RequireRole(p, entity.RoleStudent); err != nil {
		return nil, nil, err
	}

	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.profiles.FindStudentByUserID(ctx, p.UserID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, err
		}
		profile = &entity.StudentProfile{UserID: user.ID}
	}
	return user, profile, nil
}

func (s *profileService) GetStudentProfile(ctx context.Context, p *authz.Principal) (*profileDto.StudentProfileResponse, error) {
	user, profile, err := s.loadStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, user, profile)
}

func (s *profileService) UpdateStudentProfile(ctx context.Context, p *authz.Principal, input profileDto.UpdateStudentProfileInput, image, resume *commonDto.FileUpload) (*profileDto.StudentProfileResponse, error) {
	user, profile, err := s.loadStudent(ctx, p)
	if err != nil {
		return nil, err
	}

	if image != nil {
		res, err := s.uploads.Upload(ctx, upload.KindProfileImage, image)
		if err != nil {
			return nil, err
		}
		profile.ProfileImageURL = res.URL
	}
	if resume != nil {
		res, err := s.uploads.Upload(ctx, upload.KindResume, resume)
		if err != nil {
			return nil, err
		}
		profile.ResumeURL = res.URL
	}

	applyString(&profile.Phone, input.Phone)
	applyString(&profile.Location, input.Location)
	applyString(&profile.Education, input.Education)
	applyString(&profile.Bio, input.Bio)
	applyString(&profile.LinkedIn, input.LinkedIn)
	applyString(&profile.GitHub, input.GitHub)
	applyString(&profile.Website, input.Website)
	applyString(&profile.Experience, input.Experience)
	if input.Skills != nil && *input.Skills != "" {
		profile.Skills = ParseSkills(*input.Skills)
	}

	var name *string
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		trimmed := strings.TrimSpace(*input.Name)
		name = &trimmed
		user.Name = trimmed
	}

	if err := s.profiles.SaveStudent(ctx, user.ID, name, profile); err != nil {
		return nil, err
	}

	return s.buildResponse(ctx, user, profile)
}

func (s *profileService) buildResponse(ctx context.Context, user *entity.User, profile *entity.StudentProfile) (*profileDto.StudentProfileResponse, error) {
	var stats repository.ApplicationStats
	if profile.ID != uuid.Nil {
		var err error
		stats, err = s.profiles.StudentStats(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
	}

	skills := []string(profile.Skills)
	if skills == nil {
		skills = []string{}
	}

	return &profileDto.StudentProfileResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Phone:           profile.Phone,
		Location:        profile.Location,
		Education:       profile.Education,
		Skills:          skills,
		Bio:             profile.Bio,
		LinkedIn:        profile.LinkedIn,
		GitHub:          profile.GitHub,
		Website:         profile.Website,
		Experience:      profile.Experience,
		ProfileImageURL: profile.ProfileImageURL,
		ResumeURL:       profile.ResumeURL,
		Stats: profileDto.StudentStats{
			Applications: stats.Applications,
			Interviews:   stats.Interviews,
			Offers:       stats.Offers,
		},
	}, nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ParseSkills splits a comma separated list, dropping blanks.
func ParseSkills(raw string) pq.StringArray {
	var out pq.StringArray
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
