package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/internal/modules/application/dto"
	"anoa.com/campusrecruit/internal/modules/application/repository"
	jobRepo "anoa.com/campusrecruit/internal/modules/job/repository"
	notification "anoa.com/campusrecruit/internal/modules/notification/service"
	profileRepo "anoa.com/campusrecruit/internal/modules/profile/repository"
	"anoa.com/campusrecruit/pkg/apperror"
	"anoa.com/campusrecruit/pkg/metrics"
	"github.com/google/uuid"
)

const defaultMailTimeout = 5 * time.Second

type Service interface {
	Apply(ctx context.Context, p *authz.Principal, jobID uuid.UUID, input dto.ApplyInput) (*entity.Application, error)
	ListForStudent(ctx context.Context, p *authz.Principal) ([]entity.Application, error)
	ListForCompany(ctx context.Context, p *authz.Principal) ([]entity.Application, error)
	ListCompanyApplications(ctx context.Context, p *authz.Principal) ([]entity.Application, error)
	ListForJob(ctx context.Context, p *authz.Principal, jobID uuid.UUID) ([]entity.Application, error)
	UpdateStatus(ctx context.Context, p *authz.Principal, id uuid.UUID, input dto.UpdateStatusInput) (*entity.Application, error)
}

type Config struct {
	// PublicBaseURL prefixes relative resume references in company listings.
	PublicBaseURL string
	MailTimeout   time.Duration
}

type service struct {
	apps       repository.ApplicationRepository
	jobs       jobRepo.JobRepository
	profiles   profileRepo.ProfileRepository
	dispatcher notification.Dispatcher
	inbox      notification.NotificationService
	cfg        Config
}

func NewService(
	apps repository.ApplicationRepository,
	jobs jobRepo.JobRepository,
	profiles profileRepo.ProfileRepository,
	dispatcher notification.Dispatcher,
	inbox notification.NotificationService,
	cfg Config,
) Service {
	if cfg.MailTimeout <= 0 {
		cfg.MailTimeout = defaultMailTimeout
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &service{
		apps:       apps,
		jobs:       jobs,
		profiles:   profiles,
		dispatcher: dispatcher,
		inbox:      inbox,
		cfg:        cfg,
	}
}

func badRequest(msg string) error {
	return apperror.New(http.StatusBadRequest, msg, apperror.ErrBadRequest)
}

func (s *service) callerStudent(ctx context.Context, p *authz.Principal) (*entity.StudentProfile, error) {
	if err := authz.RequireRole(p, entity.RoleStudent); err != nil {
		return nil, err
	}
	student, err := s.profiles.FindStudentByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, badRequest("Student profile missing")
		}
		return nil, err
	}
	return student, nil
}

func (s *service) callerCompany(ctx context.Context, p *authz.Principal, missing string) (*entity.CompanyProfile, error) {
	if err := authz.RequireRole(p, entity.RoleCompany); err != nil {
		return nil, err
	}
	company, err := s.profiles.FindCompanyByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, badRequest(missing)
		}
		return nil, err
	}
	return company, nil
}

// callerCompanyID is the caller's company profile id, or uuid.Nil when the
// caller has none. Ownership checks compare against it.
func (s *service) callerCompanyID(ctx context.Context, p *authz.Principal) (*entity.CompanyProfile, uuid.UUID, error) {
	company, err := s.profiles.FindCompanyByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, uuid.Nil, nil
		}
		return nil, uuid.Nil, err
	}
	return company, company.ID, nil
}

func (s *service) Apply(ctx context.Context, p *authz.Principal, jobID uuid.UUID, input dto.ApplyInput) (*entity.Application, error) {
	student, err := s.callerStudent(ctx, p)
	if err != nil {
		return nil, err
	}

	if _, err := s.jobs.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "Job not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	exists, err := s.apps.Exists(ctx, student.ID, jobID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, alreadyApplied()
	}

	app := &entity.Application{
		JobID:     jobID,
		StudentID: student.ID,
		Status:    entity.StatusPending,
	}
	contact := repository.ContactUpdate{
		Phone:     strings.TrimSpace(input.Phone),
		ResumeURL: strings.TrimSpace(input.Resume()),
	}
	if err := s.apps.Create(ctx, app, contact); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, alreadyApplied()
		}
		return nil, err
	}

	metrics.RecordApplicationCreated()
	return app, nil
}

func alreadyApplied() error {
	return apperror.New(http.StatusConflict, "Already applied", apperror.ErrConflict)
}

func (s *service) ListForStudent(ctx context.Context, p *authz.Principal) ([]entity.Application, error) {
	student, err := s.callerStudent(ctx, p)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByStudent(ctx, student.ID)
	return orEmpty(apps), err
}

func (s *service) ListForCompany(ctx context.Context, p *authz.Principal) ([]entity.Application, error) {
	company, err := s.callerCompany(ctx, p, "Company profile missing")
	if err != nil {
		return nil, err
	}

	apps, err := s.apps.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if st := apps[i].Student; st != nil {
			st.ResumeURL = absoluteURL(s.cfg.PublicBaseURL, st.ResumeURL)
		}
	}
	return orEmpty(apps), nil
}

func (s *service) ListCompanyApplications(ctx context.Context, p *authz.Principal) ([]entity.Application, error) {
	company, err := s.callerCompany(ctx, p, "Company profile not found")
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.ListByCompanyWithOwner(ctx, company.ID)
	return orEmpty(apps), err
}

func (s *service) ListForJob(ctx context.Context, p *authz.Principal, jobID uuid.UUID) ([]entity.Application, error) {
	if err := authz.RequireRole(p, entity.RoleCompany); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	_, callerID, err := s.callerCompanyID(ctx, p)
	if err != nil {
		return nil, err
	}
	decision := authz.Authorize(p, callerID, authz.Rule{
		Roles: []entity.Role{entity.RoleCompany},
		Owner: &job.CompanyID,
	})
	if !decision.Allowed {
		return nil, apperror.New(http.StatusForbidden, "Not authorized to view these applications", decision.Err())
	}

	apps, err := s.apps.ListByJob(ctx, jobID)
	return orEmpty(apps), err
}

func (s *service) UpdateStatus(ctx context.Context, p *authz.Principal, id uuid.UUID, input dto.UpdateStatusInput) (*entity.Application, error) {
	if err := authz.RequireRole(p, entity.RoleCompany); err != nil {
		return nil, err
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "Application not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	company, callerID, err := s.callerCompanyID(ctx, p)
	if err != nil {
		return nil, err
	}
	decision := authz.Authorize(p, callerID, authz.Rule{
		Roles: []entity.Role{entity.RoleCompany},
		Owner: ownerOf(app),
	})
	if !decision.Allowed {
		return nil, apperror.New(http.StatusForbidden, "Not authorized to update this application", decision.Err())
	}

	requested := strings.TrimSpace(input.Status) != ""
	status := app.Status
	if requested {
		parsed, ok := entity.ParseApplicationStatus(input.Status)
		if !ok {
			return nil, badRequest("Invalid status, expected one of PENDING, INTERVIEW, ACCEPTED, REJECTED")
		}
		status = parsed
	}

	if err := s.apps.UpdateStatus(ctx, app.ID, status, input.Message); err != nil {
		return nil, err
	}
	if requested {
		metrics.RecordStatusTransition(string(status))
	}

	app.Status = status
	if input.Message != nil {
		app.Message = input.Message
	}

	if requested {
		if ev, ok := transitionEvent(app, company, status, input.Message); ok {
			s.notify(ctx, ev)
		}
	}
	return app, nil
}

// ownerOf returns the company id recorded on the application's job. A
// dangling job reference yields a Nil owner, which no caller matches.
func ownerOf(app *entity.Application) *uuid.UUID {
	owner := uuid.Nil
	if app.Job != nil {
		owner = app.Job.CompanyID
	}
	return &owner
}

func absoluteURL(base, ref string) string {
	if ref == "" || base == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return base + "/" + strings.TrimPrefix(ref, "/")
}

func orEmpty(apps []entity.Application) []entity.Application {
	if apps == nil {
		return []entity.Application{}
	}
	return apps
}
