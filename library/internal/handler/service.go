package handler

import (
	"context"

	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	CreateBook(ctx context.Context, raw map[string]string) model.ActionResult
	UpdateBook(ctx context.Context, id string, raw map[string]string) model.ActionResult
	DeleteBook(ctx context.Context, id string) model.ActionResult
	CreateMember(ctx context.Context, raw map[string]string) model.ActionResult
	UpdateMember(ctx context.Context, id string, raw map[string]string) model.ActionResult
	DeleteMember(ctx context.Context, id string) model.ActionResult
	Signup(ctx context.Context, raw map[string]string, start service.SessionStarter) model.ActionResult
	Authenticate(ctx context.Context, raw map[string]string, start service.SessionStarter) model.ActionResult

	ListBooks(ctx context.Context, query string, page int) (model.ListBooks, error)
	ListMembers(ctx context.Context, query string, page int) (model.ListMembers, error)
	GetMember(ctx context.Context, id string) (model.Member, error)
	BookEditPage(ctx context.Context, id string) (model.BookEditPage, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)
	ListLoans(ctx context.Context, page int) (model.ListLoans, error)
	Dashboard(ctx context.Context, userID string) (model.Dashboard, error)
}

var _ LibraryService = (*service.Service)(nil)
