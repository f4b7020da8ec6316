package repository

import (
	"context"

	"github.com/Astemirdum/my-little-library/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var bookColumns = []string{
	"id", "title", "author", "edition_name", "year_of_publication", "ean13", "copy_num",
	"loanable_status", "summary", "cover_url", "genre_id", "created_at", "updated_at",
}

func bookSearch(query string) sq.Sqlizer {
	return search(query, "title", "author", "summary")
}

func (r *repository) CreateBook(ctx context.Context, b model.Book) (uuid.UUID, error) {
	return r.insertReturningID(ctx, qb.Insert(booksTableName).
		Columns("id", "title", "author", "edition_name", "year_of_publication", "ean13", "copy_num",
			"loanable_status", "summary", "cover_url", "genre_id").
		Values(uuid.New(), b.Title, b.Author, b.EditionName, b.YearOfPublication, b.EAN13, b.CopyNum,
			b.LoanableStatus, b.Summary, b.CoverURL, b.GenreID))
}

func (r *repository) UpdateBook(ctx context.Context, b model.Book) error {
	tag, err := r.exec(ctx, qb.Update(booksTableName).
		SetMap(map[string]interface{}{
			"title":               b.Title,
			"author":              b.Author,
			"edition_name":        b.EditionName,
			"year_of_publication": b.YearOfPublication,
			"ean13":               b.EAN13,
			"copy_num":            b.CopyNum,
			"loanable_status":     b.LoanableStatus,
			"summary":             b.Summary,
			"cover_url":           b.CoverURL,
			"genre_id":            b.GenreID,
			"updated_at":          sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": b.ID}))
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *repository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	tag, err := r.exec(ctx, qb.Delete(booksTableName).Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *repository) GetBook(ctx context.Context, id uuid.UUID) (model.Book, error) {
	return collectOne[model.Book](ctx, r, qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}))
}

func (r *repository) ListBooks(ctx context.Context, query string, page int) ([]model.Book, error) {
	q := qb.Select(bookColumns...).From(booksTableName)
	q = where(q, bookSearch(query)).
		OrderBy("title", "id").
		Limit(model.ItemsPerPage).
		Offset(offset(page))
	return collectAll[model.Book](ctx, r, q)
}

func (r *repository) CountBooks(ctx context.Context, query string) (int, error) {
	q := qb.Select("count(*)").From(booksTableName)
	return r.count(ctx, where(q, bookSearch(query)))
}
