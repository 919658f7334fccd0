package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	accountserrors "turfbook/internal/accounts/errors"
	"turfbook/internal/accounts/repository"
	"turfbook/internal/accounts/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/model"
	"turfbook/pkg/sanitizer"
)

type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
}

type accountService struct {
	repo      repository.AccountRepository
	validator *validator.AccountValidator
	cfg       *config.Config
}

func NewAccountService(repo repository.AccountRepository, validator *validator.AccountValidator, cfg *config.Config) AccountService {
	return &accountService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Registration request cannot be empty")
	}

	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Phone = sanitizer.NormalizePhone(req.Phone)

	if err := s.validator.ValidateRegister(req); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "error", err)
		return nil, apperrors.Validation("Invalid registration request", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to process registration", err)
	}

	account := &model.Account{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: string(hash),
	}

	if _, err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, accountserrors.ErrEmailTaken) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.Error("Failed to create account", "email", req.Email, "error", err)
		return nil, apperrors.StoreUnavailable("Failed to create account", err)
	}

	token, err := s.signToken(account)
	if err != nil {
		s.cfg.Log.Error("Failed to sign token", "account_id", account.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("Account registered", "id", account.ID, "role", account.Role)
	return &model.AuthResponse{Token: token, Account: account}, nil
}

func (s *accountService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Login request cannot be empty")
	}

	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, apperrors.Validation("Invalid login request", map[string]any{"error": err.Error()})
	}

	account, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, accountserrors.ErrNotFound) {
			// Same response as a wrong password so the endpoint does not
			// confirm which emails are registered.
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		s.cfg.Log.Error("Failed to look up account", "error", err)
		return nil, apperrors.StoreUnavailable("Failed to process login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	token, err := s.signToken(account)
	if err != nil {
		s.cfg.Log.Error("Failed to sign token", "account_id", account.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("Account logged in", "id", account.ID, "role", account.Role)
	return &model.AuthResponse{Token: token, Account: account}, nil
}

func (s *accountService) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *accountService) signToken(account *model.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  account.ID,
		"role": account.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
