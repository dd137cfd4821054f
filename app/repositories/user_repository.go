package repositories

import (
	"context"
	"errors"

	"github.com/bistroboss/bistro/app/models"
	"github.com/bistroboss/bistro/pkg/docstore"
)

// UserRepository handles storage for User. It also serves as the role
// lookup for rbac guards.
type UserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindByEmail returns docstore.ErrNotFound when no user has the email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return docstore.One[models.User](ctx, r.store, UsersCollection, docstore.Filter{"email": email})
}

func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	return docstore.Many[models.User](ctx, r.store, UsersCollection, nil)
}

func (r *UserRepository) Create(ctx context.Context, u models.User) (string, error) {
	return r.store.Insert(ctx, UsersCollection, u)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (DeleteResult, error) {
	n, err := r.store.DeleteOne(ctx, UsersCollection, docstore.ByID(id))
	return DeleteResult{DeletedCount: n}, err
}

// Promote sets role=admin. Promoting an admin again changes nothing.
func (r *UserRepository) Promote(ctx context.Context, id string) (UpdateResult, error) {
	res, err := r.store.UpdateOne(ctx, UsersCollection, docstore.ByID(id), docstore.Patch{"role": models.RoleAdmin}, false)
	return toUpdateResult(res), err
}

// PromoteByEmail is Promote keyed by email, used by the CLI bootstrap.
func (r *UserRepository) PromoteByEmail(ctx context.Context, email string) (UpdateResult, error) {
	res, err := r.store.UpdateOne(ctx, UsersCollection, docstore.Filter{"email": email}, docstore.Patch{"role": models.RoleAdmin}, false)
	return toUpdateResult(res), err
}

// RoleOf returns the stored role, or member for unknown users and users
// without a role.
func (r *UserRepository) RoleOf(ctx context.Context, email string) (string, error) {
	u, err := r.FindByEmail(ctx, email)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.RoleMember, nil
	}
	if err != nil {
		return "", err
	}
	if u.Role == "" {
		return models.RoleMember, nil
	}
	return u.Role, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, UsersCollection)
}
