package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	search "anoa.com/campusrecruit/internal/modules/search/service"
	"anoa.com/campusrecruit/internal/modules/user/dto"
	"anoa.com/campusrecruit/internal/modules/user/repository"
	"anoa.com/campusrecruit/pkg/apperror"
	"anoa.com/campusrecruit/pkg/password"
	"anoa.com/campusrecruit/pkg/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	UpdateAccount(ctx context.Context, p *authz.Principal, targetID uuid.UUID, input dto.UpdateAccountInput) (*dto.UserResponse, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *token.Manager
	search search.JobSearchService
}

func NewAuthService(repo repository.UserRepository, tokens *token.Manager, search search.JobSearchService) AuthService {
	return &authService{repo: repo, tokens: tokens, search: search}
}

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	role := entity.Role(strings.ToUpper(strings.TrimSpace(input.Role)))
	if role != entity.RoleStudent && role != entity.RoleCompany {
		return nil, fmt.Errorf("role must be STUDENT or COMPANY: %w", apperror.ErrBadRequest)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	switch role {
	case entity.RoleStudent:
		user.Student = &entity.StudentProfile{}
	case entity.RoleCompany:
		name := strings.TrimSpace(input.CompanyName)
		if name == "" {
			name = user.Name
		}
		user.Company = &entity.CompanyProfile{Name: name}
	}

	// a concurrent registration with the same email surfaces as ErrConflict
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := password.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

// UpdateAccount lets a user edit their own account; ADMIN may edit anyone.
func (s *authService) UpdateAccount(ctx context.Context, p *authz.Principal, targetID uuid.UUID, input dto.UpdateAccountInput) (*dto.UserResponse, error) {
	callerID := uuid.Nil
	if p != nil {
		callerID = p.UserID
	}
	if err := authz.Authorize(p, callerID, authz.Rule{Owner: &targetID, AllowAdminOverride: true}).Err(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Password != nil {
		hash, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Sign(user.ID, string(user.Role), user.Name)
	if err != nil {
		return nil, err
	}

	var searchToken string
	if s.search != nil {
		var companyID *uuid.UUID
		if user.Company != nil {
			companyID = &user.Company.ID
		}
		searchToken, err = s.search.GenerateSearchToken(user.Role, companyID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to generate search token")
			searchToken = ""
		}
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        dto.NewUserResponse(user),
		SearchToken: searchToken,
	}, nil
}
