package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/internal/modules/job/dto"
	"anoa.com/campusrecruit/internal/modules/job/repository"
	profileRepo "anoa.com/campusrecruit/internal/modules/profile/repository"
	search "anoa.com/campusrecruit/internal/modules/search/service"
	"anoa.com/campusrecruit/pkg/apperror"
	"anoa.com/campusrecruit/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const createJobAction = "create_job"

type Service interface {
	List(ctx context.Context, query dto.ListJobsQuery) ([]entity.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	Create(ctx context.Context, p *authz.Principal, input dto.CreateJobInput) (*entity.Job, error)
	Update(ctx context.Context, p *authz.Principal, id uuid.UUID, input dto.UpdateJobInput) (*entity.Job, error)
	Delete(ctx context.Context, p *authz.Principal, id uuid.UUID) error
}

type service struct {
	jobs        repository.JobRepository
	profiles    profileRepo.ProfileRepository
	search      search.JobSearchService
	limiter     *ratelimiter.Limiter
	createLimit time.Duration
}

func NewService(jobs repository.JobRepository, profiles profileRepo.ProfileRepository, search search.JobSearchService, limiter *ratelimiter.Limiter, createLimit time.Duration) Service {
	return &service{
		jobs:        jobs,
		profiles:    profiles,
		search:      search,
		limiter:     limiter,
		createLimit: createLimit,
	}
}

func (s *service) List(ctx context.Context, query dto.ListJobsQuery) ([]entity.Job, error) {
	filter := repository.Filter{
		Query:    strings.TrimSpace(query.Q),
		Location: strings.TrimSpace(query.Location),
	}
	if query.CompanyID != "" {
		id, err := uuid.Parse(query.CompanyID)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, "invalid companyId", apperror.ErrBadRequest)
		}
		filter.CompanyID = &id
	}

	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []entity.Job{}
	}
	return jobs, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return s.jobs.FindByID(ctx, id)
}

// callerCompany resolves the caller's company profile; a company account
// without one is a client error, not a missing resource.
func (s *service) callerCompany(ctx context.Context, p *authz.Principal) (*entity.CompanyProfile, error) {
	if err := authz.RequireRole(p, entity.RoleCompany); err != nil {
		return nil, err
	}
	company, err := s.profiles.FindCompanyByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(http.StatusBadRequest, "Company profile missing", apperror.ErrBadRequest)
		}
		return nil, err
	}
	return company, nil
}

func (s *service) Create(ctx context.Context, p *authz.Principal, input dto.CreateJobInput) (*entity.Job, error) {
	company, err := s.callerCompany(ctx, p)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperror.New(http.StatusBadRequest, "Title and description required", apperror.ErrBadRequest)
	}

	allowed, err := s.limiter.Allow(ctx, p.UserID, createJobAction, s.createLimit)
	if err != nil {
		log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
	} else if !allowed {
		ttl, _ := s.limiter.TTL(ctx, p.UserID, createJobAction)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("please wait %.0f seconds before posting another job", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	job := &entity.Job{
		CompanyID:   company.ID,
		Title:       title,
		Description: description,
		Location:    normalizeOptional(input.Location),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		_ = s.limiter.Clear(ctx, p.UserID, createJobAction)
		return nil, err
	}
	job.Company = company

	s.index(job)
	return job, nil
}

// ownedJob loads the job and checks the caller's company owns it. Not found
// is reported before ownership.
func (s *service) ownedJob(ctx context.Context, p *authz.Principal, id uuid.UUID) (*entity.Job, error) {
	if err := authz.RequireRole(p, entity.RoleCompany); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	callerCompanyID := uuid.Nil
	company, err := s.profiles.FindCompanyByUserID(ctx, p.UserID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if company != nil {
		callerCompanyID = company.ID
	}

	decision := authz.Authorize(p, callerCompanyID, authz.Rule{
		Roles: []entity.Role{entity.RoleCompany},
		Owner: &job.CompanyID,
	})
	if !decision.Allowed {
		return nil, apperror.New(http.StatusForbidden, "Forbidden", decision.Err())
	}
	return job, nil
}

func (s *service) Update(ctx context.Context, p *authz.Principal, id uuid.UUID, input dto.UpdateJobInput) (*entity.Job, error) {
	job, err := s.ownedJob(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		job.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		job.Description = strings.TrimSpace(*input.Description)
	}
	if input.Location != nil {
		job.Location = normalizeOptional(input.Location)
	}
	if job.Title == "" || job.Description == "" {
		return nil, apperror.New(http.StatusBadRequest, "Title and description required", apperror.ErrBadRequest)
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	s.index(job)
	return job, nil
}

func (s *service) Delete(ctx context.Context, p *authz.Principal, id uuid.UUID) error {
	if _, err := s.ownedJob(ctx, p, id); err != nil {
		return err
	}

	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.DeleteJob(id); err != nil {
			log.Warn().Err(err).Str("job_id", id.String()).Msg("failed to remove job from search index")
		}
	}
	return nil
}

func (s *service) index(job *entity.Job) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexJob(job); err != nil {
		log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("failed to index job")
	}
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
