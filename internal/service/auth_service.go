package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/internal/repository"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims is the bearer token payload: user id in the subject plus email
// and role for route gating without a user lookup.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
	GetMe(ctx context.Context, caller *model.User) (*model.User, error)
	UpdateMe(ctx context.Context, caller *model.User, input dto.UpdateProfileRequest) (*model.User, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
	nowFn    func() time.Time
}

func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		nowFn:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.AuthResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.Wrap(apperror.ErrConflict, "user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := model.RoleStudent
	if input.Role != nil && *input.Role != "" {
		role = model.Role(*input.Role)
		if !role.Valid() {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, fmt.Sprintf("unknown role %q", *input.Role))
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		StudentID:    input.StudentID,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateDBError(err, "user not found")
	}

	log.Printf("new user registered: %s", user.Email)

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}

	if user.Disabled() {
		return nil, apperror.Wrap(apperror.ErrForbidden, "account is inactive or suspended")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Wrap(apperror.ErrUnauthorized, "invalid email or password")
	}

	now := s.nowFn()
	user.LastLoginAt = &now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("user logged in: %s", user.Email)

	return s.buildAuthResponse(user)
}

func (s *authService) GetMe(ctx context.Context, caller *model.User) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, caller.ID.String())
	if err != nil {
		return nil, translateDBError(err, "user not found")
	}
	return user, nil
}

func (s *authService) UpdateMe(ctx context.Context, caller *model.User, input dto.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, caller.ID.String())
	if err != nil {
		return nil, translateDBError(err, "user not found")
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        dto.NewUserSummary(user),
	}, nil
}

func (s *authService) generateToken(user *model.User) (string, time.Time, error) {
	now := s.nowFn()
	expiresAt := now.Add(s.tokenTTL)

	claims := Claims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
