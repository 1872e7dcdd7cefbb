package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/klarkent2022/smart-irrigation/internal/models"
	"github.com/klarkent2022/smart-irrigation/internal/repository"
	"github.com/klarkent2022/smart-irrigation/internal/utils"
	"go.uber.org/zap"
)

type UserService struct {
	repo     repository.UserRepository
	tokens   *utils.TokenService
	hashCost int
	log      *zap.Logger
}

func NewUserService(repo repository.UserRepository, tokens *utils.TokenService, hashCost int, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, hashCost: hashCost, log: logger}
}

// Register stores a new user. It does not log the user in.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return newError(ErrValidation, err.Error())
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		return newError(ErrValidation, fmt.Sprintf("password must be at most %d bytes", utils.MaxPasswordBytes))
	}

	_, err := s.repo.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return newError(ErrConflict, "Username already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("lookup user %q: %w", req.Username, err)
	}

	hashed, err := utils.HashPassword(req.Password, s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return newError(ErrConflict, "Username or email already registered")
		}
		return fmt.Errorf("create user %q: %w", req.Username, err)
	}

	s.log.Info("user registered", zap.String("username", u.Username))
	return nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newError(ErrValidation, err.Error())
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if !utils.CheckPassword(req.Password, u.HashedPassword) {
		s.log.Info("login rejected", zap.String("username", u.Username))
		return nil, newError(ErrUnauthorized, "Invalid password")
	}

	token, _, err := s.tokens.Issue(models.Identity{Username: u.Username, Email: u.Email})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &models.LoginResponse{Token: token, Username: u.Username, Email: u.Email}, nil
}

// CurrentUser maps verified claims back to the caller's identity.
func (s *UserService) CurrentUser(claims *utils.Claims) (*models.Identity, error) {
	if claims == nil || claims.Username == "" {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	id := claims.Identity()
	return &id, nil
}
