package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/model"
	libraryRepo "github.com/Astemirdum/my-little-library/library/internal/repository"
	"github.com/Astemirdum/my-little-library/pkg/cache"
	"github.com/Astemirdum/my-little-library/pkg/kafka"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	booksScope   = "books"
	membersScope = "members"
)

type Service struct {
	log    *zap.Logger
	repo   libraryRepo.Repository
	cache  cache.Cache
	events kafka.Publisher
	now    func() time.Time
}

func NewService(repo libraryRepo.Repository, c cache.Cache, events kafka.Publisher, log *zap.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	if events == nil {
		events = kafka.NopPublisher{}
	}
	return &Service{
		log:    log.Named("service"),
		repo:   repo,
		cache:  c,
		events: events,
		now:    time.Now,
	}
}

// parseID maps malformed ids to ErrNotFound.
func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q", errs.ErrNotFound, id)
	}
	return uid, nil
}

func listingKey(query string, page int) string {
	return fmt.Sprintf("q=%s&p=%d", strings.ToLower(strings.TrimSpace(query)), page)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func (s *Service) ListBooks(ctx context.Context, query string, page int) (model.ListBooks, error) {
	page = normalizePage(page)
	key := listingKey(query, page)
	var list model.ListBooks
	version, hit := s.cache.Get(ctx, booksScope, key, &list)
	if hit {
		list.Query = query
		return list, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	var (
		books []model.Book
		count int
	)
	g.Go(func() (err error) {
		books, err = s.repo.ListBooks(gCtx, query, page)
		return err
	})
	g.Go(func() (err error) {
		count, err = s.repo.CountBooks(gCtx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ListBooks{}, err
	}
	if books == nil {
		books = []model.Book{}
	}
	list = model.ListBooks{
		Paging: model.Paging{
			Page:       page,
			PageSize:   model.ItemsPerPage,
			TotalPages: model.TotalPages(count),
		},
		Query: query,
		Items: books,
	}
	s.cache.Set(ctx, booksScope, version, key, list)
	return list, nil
}

func (s *Service) ListMembers(ctx context.Context, query string, page int) (model.ListMembers, error) {
	page = normalizePage(page)
	key := listingKey(query, page)
	var list model.ListMembers
	version, hit := s.cache.Get(ctx, membersScope, key, &list)
	if hit {
		list.Query = query
		return list, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	var (
		members []model.Member
		count   int
	)
	g.Go(func() (err error) {
		members, err = s.repo.ListMembers(gCtx, query, page)
		return err
	})
	g.Go(func() (err error) {
		count, err = s.repo.CountMembers(gCtx, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ListMembers{}, err
	}
	if members == nil {
		members = []model.Member{}
	}
	list = model.ListMembers{
		Paging: model.Paging{
			Page:       page,
			PageSize:   model.ItemsPerPage,
			TotalPages: model.TotalPages(count),
		},
		Query: query,
		Items: members,
	}
	s.cache.Set(ctx, membersScope, version, key, list)
	return list, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	uid, err := parseID(id)
	if err != nil {
		return model.Book{}, err
	}
	return s.repo.GetBook(ctx, uid)
}

func (s *Service) GetMember(ctx context.Context, id string) (model.Member, error) {
	uid, err := parseID(id)
	if err != nil {
		return model.Member{}, err
	}
	return s.repo.GetMember(ctx, uid)
}

func (s *Service) ListGenres(ctx context.Context) ([]model.Genre, error) {
	genres, err := s.repo.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		s.log.Warn("no genres found in database")
		return []model.Genre{}, nil
	}
	return genres, nil
}

// BookEditPage loads the book, its loans and the genre list concurrently.
func (s *Service) BookEditPage(ctx context.Context, id string) (model.BookEditPage, error) {
	uid, err := parseID(id)
	if err != nil {
		return model.BookEditPage{}, err
	}
	var page model.BookEditPage
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page.Book, err = s.repo.GetBook(gCtx, uid)
		return err
	})
	g.Go(func() error {
		loans, err := s.repo.ListLoansByBook(gCtx, uid)
		if err != nil {
			return err
		}
		page.Loans = s.withStatus(loans)
		return nil
	})
	g.Go(func() (err error) {
		page.Genres, err = s.ListGenres(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BookEditPage{}, err
	}
	return page, nil
}

func (s *Service) ListLoans(ctx context.Context, page int) (model.ListLoans, error) {
	page = normalizePage(page)
	g, gCtx := errgroup.WithContext(ctx)
	var (
		loans []model.Loan
		count int
	)
	g.Go(func() (err error) {
		loans, err = s.repo.ListLoans(gCtx, page)
		return err
	})
	g.Go(func() (err error) {
		count, err = s.repo.CountLoans(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.ListLoans{}, err
	}
	return model.ListLoans{
		Paging: model.Paging{
			Page:       page,
			PageSize:   model.ItemsPerPage,
			TotalPages: model.TotalPages(count),
		},
		Items: s.withStatus(loans),
	}, nil
}

func (s *Service) withStatus(loans []model.Loan) []model.Loan {
	now := s.now()
	out := make([]model.Loan, 0, len(loans))
	for _, l := range loans {
		l.Status = l.StatusAt(now)
		out = append(out, l)
	}
	return out
}

// Dashboard fetches the counters concurrently; user may be nil.
func (s *Service) Dashboard(ctx context.Context, userID string) (model.Dashboard, error) {
	var d model.Dashboard
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Counts.Books, err = s.repo.CountBooks(gCtx, "")
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Members, err = s.repo.CountMembers(gCtx, "")
		return err
	})
	g.Go(func() (err error) {
		d.Counts.Loans, err = s.repo.CountLoans(gCtx)
		return err
	})
	g.Go(func() (err error) {
		d.User, err = s.CurrentUser(gCtx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Dashboard{}, err
	}
	return d, nil
}

// CurrentUser returns nil for an unknown or deleted user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.UserInfo, error) {
	if userID == "" {
		return nil, nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, nil
	}
	u, err := s.repo.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	info := u.Info()
	return &info, nil
}
