package repository

import (
	"context"

	"github.com/Astemirdum/my-little-library/library/internal/model"
)

func (r *repository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return collectAll[model.Genre](ctx, r, qb.Select("id", "category", "name").
		From(genreTableName).
		OrderBy("category", "name"))
}
