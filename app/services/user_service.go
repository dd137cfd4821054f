package services

import (
	"context"
	"errors"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/app/repositories"
	"github.com/bistroboss/bistro/pkg/apperr"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/logger"
)

// AlreadyRegistered is returned as the message when a user signs up twice.
const AlreadyRegistered = "User Is already Registered!"

// RegisterInput is the body of POST /users.
type RegisterInput struct {
	Name  string `json:"name"  validate:"max=120"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo" validate:"nullable,url"`
}

// RegisterResult is InsertedID for a new user, or Message for a repeat.
type RegisterResult struct {
	InsertedID string `json:"insertedId"`
	Message    string `json:"message,omitempty"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// Register creates a member. Registering an existing email is a no-op.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	_, err := s.users.FindByEmail(ctx, in.Email)
	if err == nil {
		return RegisterResult{Message: AlreadyRegistered}, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return RegisterResult{}, apperr.Internal(err)
	}

	id, err := s.users.Create(ctx, models.User{
		Name:  in.Name,
		Email: in.Email,
		Photo: in.Photo,
		Role:  models.RoleMember,
	})
	if errors.Is(err, docstore.ErrDuplicate) {
		// lost a race with a concurrent signup
		return RegisterResult{Message: AlreadyRegistered}, nil
	}
	if err != nil {
		return RegisterResult{}, apperr.Internal(err)
	}
	logger.WithCtx(ctx).Info("user registered", "email", in.Email)
	return RegisterResult{InsertedID: id}, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (repositories.DeleteResult, error) {
	res, err := s.users.Delete(ctx, id)
	if err != nil {
		return res, apperr.Internal(err)
	}
	return res, nil
}

func (s *UserService) Promote(ctx context.Context, id string) (repositories.UpdateResult, error) {
	res, err := s.users.Promote(ctx, id)
	if err != nil {
		return res, apperr.Internal(err)
	}
	logger.WithCtx(ctx).Info("user promoted", "id", id, "matched", res.MatchedCount)
	return res, nil
}

// IsAdmin answers for the caller only; asking about anyone else is false.
func (s *UserService) IsAdmin(ctx context.Context, caller, email string) (bool, error) {
	if caller != email {
		return false, nil
	}
	role, err := s.users.RoleOf(ctx, email)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return role == models.RoleAdmin, nil
}
