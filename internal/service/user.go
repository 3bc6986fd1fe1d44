package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/buildcost/buildcost/internal/domain"
	"github.com/buildcost/buildcost/internal/domain/review"
	"github.com/buildcost/buildcost/internal/domain/user"
	"github.com/buildcost/buildcost/internal/port/database"
)

// UserService handles user business logic, including password hashing.
type UserService struct {
	store      database.Store
	bcryptCost int
}

// NewUserService creates a new UserService with the given bcrypt cost.
func NewUserService(store database.Store, bcryptCost int) *UserService {
	return &UserService{store: store, bcryptCost: bcryptCost}
}

// List returns a page of users matching the filter.
func (s *UserService) List(ctx context.Context, page domain.PageRequest, filter database.UserFilter) (*domain.Page[user.User], error) {
	return s.store.ListUsers(ctx, page, filter)
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// GetByUsername returns a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}

// Create registers a user, hashing the password before it reaches the store.
func (s *UserService) Create(ctx context.Context, req *user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(ctx, *req, string(hash))
}

// ListByRoleCategory returns the active users belonging to a role category,
// in the shape reviewer pickers consume.
func (s *UserService) ListByRoleCategory(ctx context.Context, roleCategoryID string) ([]review.Reviewer, error) {
	reviewers, err := s.store.FindReviewersByRoleCategory(ctx, roleCategoryID)
	if err != nil {
		return nil, err
	}
	if reviewers == nil {
		reviewers = []review.Reviewer{}
	}
	return reviewers, nil
}

// Update applies partial updates to a user.
func (s *UserService) Update(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateUser(ctx, id, req)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// ResetPassword replaces a user's password with a freshly hashed one.
func (s *UserService) ResetPassword(ctx context.Context, id, password string) error {
	if len(password) < user.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", user.MinPasswordLength, domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdateUserPassword(ctx, id, string(hash))
}

// VerifyPassword checks a plaintext password against the stored hash.
func (s *UserService) VerifyPassword(u *user.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("invalid credentials: %w", domain.ErrValidation)
	}
	return nil
}
