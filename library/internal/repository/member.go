package repository

import (
	"context"

	"github.com/Astemirdum/my-little-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var memberColumns = []string{"id", "name", "email", "phone", "address", "created_at", "updated_at"}

func memberSearch(query string) sq.Sqlizer {
	return search(query, "name", "email", "phone", "address")
}

func (r *repository) CreateMember(ctx context.Context, m model.Member) (uuid.UUID, error) {
	return r.insertReturningID(ctx, qb.Insert(membersTableName).
		Columns("id", "name", "email", "phone", "address").
		Values(uuid.New(), m.Name, m.Email, m.Phone, m.Address))
}

func (r *repository) UpdateMember(ctx context.Context, m model.Member) error {
	tag, err := r.exec(ctx, qb.Update(membersTableName).
		Set("name", m.Name).
		Set("email", m.Email).
		Set("phone", m.Phone).
		Set("address", m.Address).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": m.ID}))
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *repository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	tag, err := r.exec(ctx, qb.Delete(membersTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *repository) GetMember(ctx context.Context, id uuid.UUID) (model.Member, error) {
	return collectOne[model.Member](ctx, r, qb.Select(memberColumns...).
		From(membersTableName).
		Where(sq.Eq{"id": id}))
}

func (r *repository) ListMembers(ctx context.Context, query string, page int) ([]model.Member, error) {
	q := qb.Select(memberColumns...).From(membersTableName)
	q = where(q, memberSearch(query)).
		OrderBy("name", "id").
		Limit(model.ItemsPerPage).
		Offset(offset(page))
	return collectAll[model.Member](ctx, r, q)
}

func (r *repository) CountMembers(ctx context.Context, query string) (int, error) {
	q := qb.Select("count(*)").From(membersTableName)
	return r.count(ctx, where(q, memberSearch(query)))
}

func (r *repository) MemberEmailExists(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	q := qb.Select("1").From(membersTableName).Where(sq.Eq{"email": email})
	if except != uuid.Nil {
		q = q.Where(sq.NotEq{"id": except})
	}
	return r.exists(ctx, q)
}
