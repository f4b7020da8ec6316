package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/pkg/postgres"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

type Repository interface {
	CreateBook(ctx context.Context, b model.Book) (uuid.UUID, error)
	UpdateBook(ctx context.Context, b model.Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetBook(ctx context.Context, id uuid.UUID) (model.Book, error)
	ListBooks(ctx context.Context, query string, page int) ([]model.Book, error)
	CountBooks(ctx context.Context, query string) (int, error)

	CreateMember(ctx context.Context, m model.Member) (uuid.UUID, error)
	UpdateMember(ctx context.Context, m model.Member) error
	DeleteMember(ctx context.Context, id uuid.UUID) error
	GetMember(ctx context.Context, id uuid.UUID) (model.Member, error)
	ListMembers(ctx context.Context, query string, page int) ([]model.Member, error)
	CountMembers(ctx context.Context, query string) (int, error)
	// MemberEmailExists ignores the member with id except.
	MemberEmailExists(ctx context.Context, email string, except uuid.UUID) (bool, error)

	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)
	UserEmailExists(ctx context.Context, email string) (bool, error)

	ListGenres(ctx context.Context) ([]model.Genre, error)

	ListLoansByBook(ctx context.Context, bookID uuid.UUID) ([]model.Loan, error)
	ListLoans(ctx context.Context, page int) ([]model.Loan, error)
	CountLoans(ctx context.Context) (int, error)
}

type repository struct {
	db  postgres.Provider
	log *zap.Logger
}

func NewRepository(db postgres.Provider, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName   = `users`
	genreTableName   = `genre`
	booksTableName   = `books`
	membersTableName = `members`
	loansTableName   = `loans`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "db pool")
	}
	return pool, nil
}

func (r *repository) exec(ctx context.Context, b sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	pool, err := r.pool(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		r.log.Debug("exec", zap.String("q", query), zap.Error(err))
		return pgconn.CommandTag{}, mapError(err)
	}
	return tag, nil
}

func (r *repository) insertReturningID(ctx context.Context, b sq.InsertBuilder) (uuid.UUID, error) {
	query, args, err := b.Suffix("returning id").ToSql()
	if err != nil {
		return uuid.Nil, err
	}
	pool, err := r.pool(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	if err := pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		r.log.Debug("insert", zap.String("q", query), zap.Error(err))
		return uuid.Nil, mapError(err)
	}
	return id, nil
}

func (r *repository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	pool, err := r.pool(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (r *repository) exists(ctx context.Context, b sq.SelectBuilder) (bool, error) {
	query, args, err := b.Prefix("select exists (").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	pool, err := r.pool(ctx)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := pool.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return ok, nil
}

func collectOne[T any](ctx context.Context, r *repository, b sq.SelectBuilder) (T, error) {
	var zero T
	query, args, err := b.Limit(1).ToSql()
	if err != nil {
		return zero, err
	}
	pool, err := r.pool(ctx)
	if err != nil {
		return zero, err
	}
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, mapError(err)
	}
	return item, nil
}

func collectAll[T any](ctx context.Context, r *repository, b sq.SelectBuilder) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("select", zap.String("query", query), zap.Any("args", args))
	pool, err := r.pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return items, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", errs.ErrConflict, pgErr.ConstraintName)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %s", errs.ErrValidation, pgErr.ConstraintName)
		case pgerrcode.InvalidTextRepresentation:
			return errs.ErrNotFound
		}
	}
	return err
}

func affected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// search matches query case-insensitively as a substring of any column.
func search(query string, columns ...string) sq.Sqlizer {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	pattern := "%" + escapeLike(query) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pattern})
	}
	return or
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func offset(page int) uint64 {
	if page < 1 {
		page = 1
	}
	return uint64((page - 1) * model.ItemsPerPage)
}

func where(b sq.SelectBuilder, cond sq.Sqlizer) sq.SelectBuilder {
	if cond == nil {
		return b
	}
	return b.Where(cond)
}
