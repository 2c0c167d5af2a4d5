package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenIssuer issues bearer tokens for a user ID
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService handles registration, login and profile lookup
type UserService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

// NewUserService creates a new user service hashing passwords at bcrypt.DefaultCost
func NewUserService(users repository.UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates a user and returns it together with a fresh token
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// max=72 counts runes; multi-byte passwords can still exceed 72 bytes
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	createdAt := now()
	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.authResponse(user)
}

// Login checks the credentials and returns the user with a fresh token
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		Token:   token,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
