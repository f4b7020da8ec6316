package repository

import (
	"context"

	"github.com/Astemirdum/my-little-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func (r *repository) CreateUser(ctx context.Context, u model.User) (uuid.UUID, error) {
	return r.insertReturningID(ctx, qb.Insert(usersTableName).
		Columns("id", "name", "email", "password_hash").
		Values(uuid.New(), u.Name, u.Email, u.PasswordHash))
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return collectOne[model.User](ctx, r, qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"email": email}))
}

func (r *repository) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return collectOne[model.User](ctx, r, qb.Select(userColumns...).
		From(usersTableName).
		Where(sq.Eq{"id": id}))
}

func (r *repository) UserEmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, qb.Select("1").From(usersTableName).Where(sq.Eq{"email": email}))
}
