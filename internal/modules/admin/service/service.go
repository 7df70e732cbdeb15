package service

import (
	"context"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/internal/modules/admin/dto"
	"anoa.com/campusrecruit/internal/modules/admin/repository"
	userRepo "anoa.com/campusrecruit/internal/modules/user/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultRecentLimit = 5

type AdminService interface {
	Stats(ctx context.Context, p *authz.Principal) (*dto.StatsResponse, error)
	RecentUsers(ctx context.Context, p *authz.Principal, limit int) ([]dto.AdminUserResponse, error)
	RecentJobs(ctx context.Context, p *authz.Principal, limit int) ([]dto.AdminJobResponse, error)
}

type adminService struct {
	repo  repository.AdminRepository
	users userRepo.UserRepository
}

func NewAdminService(repo repository.AdminRepository, users userRepo.UserRepository) AdminService {
	return &adminService{repo: repo, users: users}
}

// countOrZero keeps the dashboard up when one counter query fails.
func countOrZero(name string, count func() (int64, error), dst *int64) func() error {
	return func() error {
		n, err := count()
		if err != nil {
			log.Error().Err(err).Str("counter", name).Msg("admin stats counter failed")
			return nil
		}
		*dst = n
		return nil
	}
}

func (s *adminService) Stats(ctx context.Context, p *authz.Principal) (*dto.StatsResponse, error) {
	if err := authz.RequireRole(p, entity.RoleAdmin); err != nil {
		return nil, err
	}

	accepted := entity.StatusAccepted
	var res dto.StatsResponse
	var g errgroup.Group
	g.Go(countOrZero("users", func() (int64, error) { return s.users.Count(ctx) }, &res.TotalUsers))
	g.Go(countOrZero("jobs", func() (int64, error) { return s.repo.CountJobs(ctx) }, &res.TotalJobs))
	g.Go(countOrZero("applications", func() (int64, error) { return s.repo.CountApplications(ctx, nil) }, &res.TotalApplications))
	g.Go(countOrZero("accepted_applications", func() (int64, error) { return s.repo.CountApplications(ctx, &accepted) }, &res.ApprovedApplications))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *adminService) RecentUsers(ctx context.Context, p *authz.Principal, limit int) ([]dto.AdminUserResponse, error) {
	if err := authz.RequireRole(p, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	users, err := s.users.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, dto.NewAdminUserResponse(u))
	}
	return res, nil
}

func (s *adminService) RecentJobs(ctx context.Context, p *authz.Principal, limit int) ([]dto.AdminJobResponse, error) {
	if err := authz.RequireRole(p, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	jobs, err := s.repo.RecentJobs(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.AdminJobResponse, 0, len(jobs))
	for _, j := range jobs {
		res = append(res, dto.NewAdminJobResponse(j.Job, j.ApplicationCount))
	}
	return res, nil
}
