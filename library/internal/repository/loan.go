package repository

import (
	"context"
	"fmt"

	"github.com/Astemirdum/my-little-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

func loansQuery() sq.SelectBuilder {
	return qb.Select(
		"l.id", "l.book_id", "l.member_id",
		"b.title as book_title", "m.name as member_name",
		"l.loaned_at", "l.due_at", "l.returned_at",
	).
		From(loansTableName + " l").
		Join(fmt.Sprintf("%s b on b.id = l.book_id", booksTableName)).
		Join(fmt.Sprintf("%s m on m.id = l.member_id", membersTableName))
}

func (r *repository) ListLoansByBook(ctx context.Context, bookID uuid.UUID) ([]model.Loan, error) {
	return collectAll[model.Loan](ctx, r, loansQuery().
		Where(sq.Eq{"l.book_id": bookID}).
		OrderBy("l.loaned_at desc"))
}

func (r *repository) ListLoans(ctx context.Context, page int) ([]model.Loan, error) {
	return collectAll[model.Loan](ctx, r, loansQuery().
		OrderBy("l.loaned_at desc", "l.id").
		Limit(model.ItemsPerPage).
		Offset(offset(page)))
}

func (r *repository) CountLoans(ctx context.Context) (int, error) {
	return r.count(ctx, qb.Select("count(*)").From(loansTableName))
}
