package services

import (
	"context"
	"errors"

	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/pkg/apperrors"
	"github.com/emre/schoolhub/internal/pkg/auth"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// AuthService handles authentication operations
type AuthService struct {
	repos      *repositories.Repositories
	jwtService *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(repos *repositories.Repositories, jwtService *auth.JWTService) *AuthService {
	return &AuthService{repos: repos, jwtService: jwtService}
}

// Login verifies credentials and issues an access token. The token carries
// the id of the user's role record so list scoping never needs an extra
// lookup per request.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repos.UserRepository.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		logger.Warn().Str("username", req.Username).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	personID, err := s.resolvePersonID(ctx, user)
	if err != nil {
		return nil, err
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user.ID, user.Username, string(user.Role), personID)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     string(user.Role),
			PersonID: personID,
		},
	}, nil
}

// CurrentUser returns the profile of the authenticated account
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.repos.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	personID, err := s.resolvePersonID(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		PersonID: personID,
	}, nil
}

func (s *AuthService) resolvePersonID(ctx context.Context, user *models.User) (int64, error) {
	switch user.Role {
	case models.RoleTeacher:
		teacher, err := s.repos.TeacherRepository.GetByUserID(ctx, user.ID)
		if err != nil {
			return 0, err
		}
		return teacher.ID, nil
	case models.RoleStudent:
		student, err := s.repos.StudentRepository.GetByUserID(ctx, user.ID)
		if err != nil {
			return 0, err
		}
		return student.ID, nil
	case models.RoleParent:
		parent, err := s.repos.ParentRepository.GetByUserID(ctx, user.ID)
		if err != nil {
			return 0, err
		}
		return parent.ID, nil
	}
	return 0, nil
}
