package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/library/internal/service"
	"github.com/Astemirdum/my-little-library/pkg/cache"
	"github.com/Astemirdum/my-little-library/pkg/kafka"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	repo_mocks "github.com/Astemirdum/my-little-library/library/internal/repository/mocks"
)

type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	versions    map[string]cache.Version
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte), versions: make(map[string]cache.Version)}
}

func memKey(scope string, version cache.Version, key string) string {
	return fmt.Sprintf("%s/%d/%s", scope, version, key)
}

func (c *memCache) Get(_ context.Context, scope, key string, dst any) (cache.Version, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	version := c.versions[scope]
	raw, ok := c.entries[memKey(scope, version, key)]
	if !ok {
		return version, false
	}
	return version, json.Unmarshal(raw, dst) == nil
}

func (c *memCache) Set(_ context.Context, scope string, version cache.Version, key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, _ := json.Marshal(v)
	c.entries[memKey(scope, version, key)] = raw
}

func (c *memCache) Invalidate(_ context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[scope]++
	c.invalidated = append(c.invalidated, scope)
	return nil
}

type published struct {
	topic string
	key   string
	event model.MutationEvent
}

type memPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *memPublisher) Publish(topic, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := v.(model.MutationEvent)
	p.events = append(p.events, published{topic: topic, key: key, event: ev})
	return nil
}

type fixture struct {
	repo   *repo_mocks.MockRepository
	cache  *memCache
	events *memPublisher
	svc    *service.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := fixture{
		repo:   repo_mocks.NewMockRepository(ctrl),
		cache:  newMemCache(),
		events: &memPublisher{},
	}
	f.svc = service.NewService(f.repo, f.cache, f.events, zap.NewNop())
	return f
}

func validBook() map[string]string {
	return map[string]string{
		"title":             "Dune",
		"author":            "Frank Herbert",
		"editionName":       "",
		"yearOfPublication": "1965",
		"ean13":             "9780441172719",
		"copyNum":           "2",
		"loanableStatus":    "loanable",
		"summary":           "",
		"coverURL":          "https://example.com/dune.jpg",
		"genre":             "",
	}
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()
	newID := uuid.MustParse("3f1e2d4c-5b6a-4978-8a9b-0c1d2e3f4a5b")
	genreID := uuid.MustParse("5b0c3d1e-7a52-4d8e-9d4b-0d8a4b1f6a01")

	type mockBehavior func(r *repo_mocks.MockRepository)
	tests := []struct {
		name          string
		raw           func() map[string]string
		mockBehavior  mockBehavior
		want          model.ActionResult
		wantCommitted bool
	}{
		{
			name: "ok",
			raw:  validBook,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().CreateBook(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Book) (uuid.UUID, error) {
						require.Equal(t, "Dune", b.Title)
						require.Equal(t, "Frank Herbert", *b.Author)
						require.Nil(t, b.EditionName)
						require.Nil(t, b.Summary)
						require.Nil(t, b.GenreID)
						require.Equal(t, 1965, *b.YearOfPublication)
						require.Equal(t, int64(9780441172719), *b.EAN13)
						require.Equal(t, 2, b.CopyNum)
						require.Equal(t, model.StatusLoanable, b.LoanableStatus)
						return newID, nil
					})
			},
			want:          model.Ok(newID.String()),
			wantCommitted: true,
		},
		{
			name: "ok. genre mapped",
			raw: func() map[string]string {
				raw := validBook()
				raw["genre"] = genreID.String()
				return raw
			},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().CreateBook(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, b model.Book) (uuid.UUID, error) {
						require.Equal(t, genreID, *b.GenreID)
						return newID, nil
					})
			},
			want:          model.Ok(newID.String()),
			wantCommitted: true,
		},
		{
			name: "err. validation",
			raw: func() map[string]string {
				raw := validBook()
				raw["title"] = ""
				raw["ean13"] = "123"
				return raw
			},
			mockBehavior: func(r *repo_mocks.MockRepository) {},
			want: model.ActionResult{
				Error: "Validation failed",
				FieldErrors: map[string][]string{
					"title": {"Title is required"},
					"ean13": {"EAN13 must be exactly 13 digits"},
				},
				Reason: model.ReasonValidation,
			},
		},
		{
			name: "err. storage",
			raw:  validBook,
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.New("connection refused"))
			},
			want: model.Failure(model.ReasonStorage, "Database Error: Failed to Create Book in MyLittleLibrary."),
		},
		{
			name: "err. unknown genre",
			raw: func() map[string]string {
				raw := validBook()
				raw["genre"] = genreID.String()
				return raw
			},
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.Wrap(errs.ErrValidation, "books_genre_id_fkey"))
			},
			want: model.ActionResult{
				Error:       "Validation failed",
				FieldErrors: map[string][]string{"genre": {"Please select a valid genre"}},
				Reason:      model.ReasonValidation,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.mockBehavior(f.repo)

			got := f.svc.CreateBook(context.Background(), tt.raw())
			require.Equal(t, tt.want, got)
			if tt.wantCommitted {
				require.Equal(t, []string{"books"}, f.cache.invalidated)
				require.Len(t, f.events.events, 1)
				require.Equal(t, kafka.BooksTopic, f.events.events[0].topic)
				require.Equal(t, model.ActionCreated, f.events.events[0].event.Action)
				require.Equal(t, newID.String(), f.events.events[0].key)
			} else {
				require.Empty(t, f.cache.invalidated)
				require.Empty(t, f.events.events)
			}
		})
	}
}

func TestService_UpdateDeleteBook(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	t.Run("update ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, b model.Book) error {
				require.Equal(t, id, b.ID)
				return nil
			})
		require.Equal(t, model.Ok("book updated"), f.svc.UpdateBook(context.Background(), id.String(), validBook()))
		require.Equal(t, []string{"books"}, f.cache.invalidated)
	})

	t.Run("update not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).Return(errs.ErrNotFound)
		got := f.svc.UpdateBook(context.Background(), id.String(), validBook())
		require.Equal(t, model.Failure(model.ReasonNotFound, "Book not found"), got)
		require.Empty(t, f.cache.invalidated)
	})

	t.Run("update unknown genre", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		in := validBook()
		in["genre"] = uuid.NewString()
		f.repo.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).Return(errors.Wrap(errs.ErrValidation, "books_genre_id_fkey"))
		got := f.svc.UpdateBook(context.Background(), id.String(), in)
		require.Equal(t, model.ReasonValidation, got.Reason)
		require.Equal(t, []string{"Please select a valid genre"}, got.FieldErrors["genre"])
		require.Empty(t, f.cache.invalidated)
		require.Empty(t, f.events.events)
	})

	t.Run("update malformed id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		got := f.svc.UpdateBook(context.Background(), "not-an-id", validBook())
		require.Equal(t, model.Failure(model.ReasonNotFound, "Book not found"), got)
	})

	t.Run("update storage error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().UpdateBook(gomock.Any(), gomock.Any()).Return(errors.New("timeout"))
		got := f.svc.UpdateBook(context.Background(), id.String(), validBook())
		require.Equal(t, model.Failure(model.ReasonStorage, "Database Error: Failed to update book"), got)
	})

	t.Run("delete ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().DeleteBook(gomock.Any(), id).Return(nil)
		require.Equal(t, model.Ok("book deleted"), f.svc.DeleteBook(context.Background(), id.String()))
		require.Equal(t, model.ActionDeleted, f.events.events[0].event.Action)
	})

	t.Run("delete twice", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		gomock.InOrder(
			f.repo.EXPECT().DeleteBook(gomock.Any(), id).Return(nil),
			f.repo.EXPECT().DeleteBook(gomock.Any(), id).Return(errs.ErrNotFound),
		)
		require.True(t, f.svc.DeleteBook(context.Background(), id.String()).Success)
		require.Equal(t, model.Failure(model.ReasonNotFound, "Book not found"), f.svc.DeleteBook(context.Background(), id.String()))
		require.Len(t, f.cache.invalidated, 1)
	})
}

func TestService_Members(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	raw := func() map[string]string {
		return map[string]string{"name": "Ada", "email": "Ada@Example.com", "phone": "", "address": "1 Main St"}
	}

	t.Run("create ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().MemberEmailExists(gomock.Any(), "ada@example.com", uuid.Nil).Return(false, nil)
		f.repo.EXPECT().CreateMember(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, m model.Member) (uuid.UUID, error) {
				require.Equal(t, "Ada", m.Name)
				require.Nil(t, m.Phone)
				require.Equal(t, "1 Main St", *m.Address)
				return id, nil
			})
		require.Equal(t, model.Ok(id.String()), f.svc.CreateMember(context.Background(), raw()))
		require.Equal(t, []string{"members"}, f.cache.invalidated)
		require.Equal(t, kafka.MembersTopic, f.events.events[0].topic)
	})

	t.Run("create email taken", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().MemberEmailExists(gomock.Any(), "ada@example.com", uuid.Nil).Return(true, nil)
		got := f.svc.CreateMember(context.Background(), raw())
		require.Equal(t, model.Failure(model.ReasonConflict, "Email already registered"), got)
		require.Empty(t, f.cache.invalidated)
	})

	t.Run("create unique violation race", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().MemberEmailExists(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().CreateMember(gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.Wrap(errs.ErrConflict, "members_email_uidx"))
		got := f.svc.CreateMember(context.Background(), raw())
		require.Equal(t, model.Failure(model.ReasonConflict, "Email already registered"), got)
	})

	t.Run("create invalid email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		in := raw()
		in["email"] = "nope"
		in["name"] = " "
		got := f.svc.CreateMember(context.Background(), in)
		require.Equal(t, map[string][]string{
			"name":  {"Name is required"},
			"email": {"Invalid email address"},
		}, map[string][]string(got.FieldErrors))
	})

	t.Run("update email of another member", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetMember(gomock.Any(), id).Return(model.Member{ID: id}, nil)
		f.repo.EXPECT().MemberEmailExists(gomock.Any(), "ada@example.com", id).Return(true, nil)
		got := f.svc.UpdateMember(context.Background(), id.String(), raw())
		require.Equal(t, model.Failure(model.ReasonConflict, "Email already registered to another member"), got)
	})

	t.Run("update missing member with taken email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetMember(gomock.Any(), id).Return(model.Member{}, errs.ErrNotFound)
		f.repo.EXPECT().MemberEmailExists(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		got := f.svc.UpdateMember(context.Background(), id.String(), raw())
		require.Equal(t, model.Failure(model.ReasonNotFound, "Member not found"), got)
		require.Empty(t, f.cache.invalidated)
		require.Empty(t, f.events.events)
	})

	t.Run("update ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetMember(gomock.Any(), id).Return(model.Member{ID: id}, nil)
		f.repo.EXPECT().MemberEmailExists(gomock.Any(), "ada@example.com", id).Return(false, nil)
		f.repo.EXPECT().UpdateMember(gomock.Any(), gomock.Any()).Return(nil)
		require.Equal(t, model.Ok("member updated"), f.svc.UpdateMember(context.Background(), id.String(), raw()))
	})

	t.Run("delete not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().DeleteMember(gomock.Any(), id).Return(errs.ErrNotFound)
		require.Equal(t, model.Failure(model.ReasonNotFound, "Member not found"), f.svc.DeleteMember(context.Background(), id.String()))
	})

	t.Run("delete storage error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().DeleteMember(gomock.Any(), id).Return(errors.New("boom"))
		require.Equal(t, model.Failure(model.ReasonStorage, "Database Error: Failed to delete member"), f.svc.DeleteMember(context.Background(), id.String()))
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{ID: uuid.New(), Name: "Lib", Email: "lib@example.com", PasswordHash: string(hash)}

	tests := []struct {
		name         string
		email, pass  string
		mockBehavior func(r *repo_mocks.MockRepository)
		want         *model.UserInfo
		wantErr      error
	}{
		{
			name: "ok",
			email: "Lib@Example.com", pass: "secret1",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().GetUserByEmail(gomock.Any(), "lib@example.com").Return(user, nil)
			},
			want: &model.UserInfo{ID: user.ID.String(), Name: "Lib", Email: "lib@example.com"},
		},
		{
			name: "wrong password",
			email: "lib@example.com", pass: "secret2",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().GetUserByEmail(gomock.Any(), "lib@example.com").Return(user, nil)
			},
		},
		{
			name: "unknown email",
			email: "ghost@example.com", pass: "secret1",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").Return(model.User{}, errs.ErrNotFound)
			},
		},
		{
			name: "storage error",
			email: "lib@example.com", pass: "secret1",
			mockBehavior: func(r *repo_mocks.MockRepository) {
				r.EXPECT().GetUserByEmail(gomock.Any(), "lib@example.com").Return(model.User{}, errors.New("db down"))
			},
			wantErr: errs.ErrAuth,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.mockBehavior(f.repo)
			got, err := f.svc.Login(context.Background(), tt.email, tt.pass)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{ID: uuid.New(), Name: "Lib", Email: "lib@example.com", PasswordHash: string(hash)}

	t.Run("ok starts session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetUserByEmail(gomock.Any(), "lib@example.com").Return(user, nil)
		var started string
		got := f.svc.Authenticate(context.Background(),
			map[string]string{"email": "lib@example.com", "password": "secret1"},
			func(id string) error { started = id; return nil })
		require.Equal(t, model.Ok("Login successful"), got)
		require.Equal(t, user.ID.String(), started)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetUserByEmail(gomock.Any(), "lib@example.com").Return(user, nil)
		got := f.svc.Authenticate(context.Background(),
			map[string]string{"email": "lib@example.com", "password": "nope"},
			func(string) error { t.Fatal("session must not start"); return nil })
		require.Equal(t, model.Failure(model.ReasonAuth, "Invalid email or password"), got)
	})

	t.Run("storage failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(model.User{}, errors.New("db down"))
		got := f.svc.Authenticate(context.Background(),
			map[string]string{"email": "lib@example.com", "password": "x"},
			func(string) error { return nil })
		require.Equal(t, model.Failure(model.ReasonStorage, "Failed to authenticate user."), got)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		got := f.svc.Authenticate(context.Background(), map[string]string{"email": "x"}, nil)
		require.Equal(t, map[string][]string{
			"email":    {"Invalid email address"},
			"password": {"Password is required"},
		}, map[string][]string(got.FieldErrors))
	})
}

func TestService_Signup(t *testing.T) {
	t.Parallel()
	raw := map[string]string{"name": "Lib", "email": "lib@example.com", "password": "secret1"}

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := uuid.New()
		f.repo.EXPECT().UserEmailExists(gomock.Any(), "lib@example.com").Return(false, nil)
		f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) (uuid.UUID, error) {
				require.NotEqual(t, "secret1", u.PasswordHash)
				require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
				return id, nil
			})
		var started string
		got := f.svc.Signup(context.Background(), raw, func(uid string) error { started = uid; return nil })
		require.Equal(t, model.Ok("User created successfully"), got)
		require.Equal(t, id.String(), started)
	})

	t.Run("email registered", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().UserEmailExists(gomock.Any(), "lib@example.com").Return(true, nil)
		got := f.svc.Signup(context.Background(), raw, nil)
		require.Equal(t, model.Failure(model.ReasonConflict, "Email already registered"), got)
	})

	t.Run("short password", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		got := f.svc.Signup(context.Background(), map[string]string{"name": "Lib", "email": "lib@example.com", "password": "123"}, nil)
		require.Equal(t, []string{"Password must be at least 6 characters"}, got.FieldErrors["password"])
	})

	t.Run("storage error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().UserEmailExists(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))
		got := f.svc.Signup(context.Background(), raw, nil)
		require.Equal(t, model.Failure(model.ReasonStorage, "Database Error: Failed to create user."), got)
	})
}

func TestService_ListBooks(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	books := []model.Book{{ID: uuid.New(), Title: "Dune", CopyNum: 1, LoanableStatus: model.StatusLoanable}}

	f.repo.EXPECT().ListBooks(gomock.Any(), "dune", 1).Return(books, nil).Times(1)
	f.repo.EXPECT().CountBooks(gomock.Any(), "dune").Return(6, nil).Times(1)

	got, err := f.svc.ListBooks(context.Background(), "dune", 0)
	require.NoError(t, err)
	require.Equal(t, model.Paging{Page: 1, PageSize: 5, TotalPages: 2}, got.Paging)
	require.Equal(t, "Dune", got.Items[0].Title)

	// second call is served from the cache
	again, err := f.svc.ListBooks(context.Background(), "Dune", 1)
	require.NoError(t, err)
	require.Equal(t, got.Items[0].ID, again.Items[0].ID)
	require.Equal(t, "Dune", again.Query)
}

func TestService_ListBooks_MutationDuringRead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	stale := []model.Book{{ID: uuid.New(), Title: "Old title", CopyNum: 1, LoanableStatus: model.StatusLoanable}}
	fresh := []model.Book{{ID: stale[0].ID, Title: "New title", CopyNum: 1, LoanableStatus: model.StatusLoanable}}

	gomock.InOrder(
		f.repo.EXPECT().ListBooks(gomock.Any(), "", 1).
			DoAndReturn(func(ctx context.Context, _ string, _ int) ([]model.Book, error) {
				// a mutation commits while the listing is being read
				require.NoError(t, f.cache.Invalidate(ctx, "books"))
				return stale, nil
			}),
		f.repo.EXPECT().ListBooks(gomock.Any(), "", 1).Return(fresh, nil),
	)
	f.repo.EXPECT().CountBooks(gomock.Any(), "").Return(1, nil).Times(2)

	got, err := f.svc.ListBooks(context.Background(), "", 1)
	require.NoError(t, err)
	require.Equal(t, "Old title", got.Items[0].Title)

	got, err = f.svc.ListBooks(context.Background(), "", 1)
	require.NoError(t, err)
	require.Equal(t, "New title", got.Items[0].Title)
}

func TestService_Dashboard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	user := model.User{ID: uuid.New(), Name: "Lib", Email: "lib@example.com"}
	f.repo.EXPECT().CountBooks(gomock.Any(), "").Return(12, nil)
	f.repo.EXPECT().CountMembers(gomock.Any(), "").Return(3, nil)
	f.repo.EXPECT().CountLoans(gomock.Any()).Return(0, nil)
	f.repo.EXPECT().GetUserByID(gomock.Any(), user.ID).Return(user, nil)

	got, err := f.svc.Dashboard(context.Background(), user.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.DashboardCounts{Books: 12, Members: 3, Loans: 0}, got.Counts)
	require.Equal(t, "Lib", got.User.Name)
}

func TestService_BookEditPage(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetBook(gomock.Any(), id).Return(model.Book{ID: id, Title: "Dune"}, nil)
		f.repo.EXPECT().ListLoansByBook(gomock.Any(), id).Return(nil, nil)
		f.repo.EXPECT().ListGenres(gomock.Any()).Return([]model.Genre{{ID: uuid.New(), Category: "Fiction", Name: "Sci-Fi"}}, nil)

		got, err := f.svc.BookEditPage(context.Background(), id.String())
		require.NoError(t, err)
		require.Equal(t, "Dune", got.Book.Title)
		require.Empty(t, got.Loans)
		require.Len(t, got.Genres, 1)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.repo.EXPECT().GetBook(gomock.Any(), id).Return(model.Book{}, errs.ErrNotFound)
		f.repo.EXPECT().ListLoansByBook(gomock.Any(), id).Return(nil, nil).AnyTimes()
		f.repo.EXPECT().ListGenres(gomock.Any()).Return(nil, nil).AnyTimes()

		_, err := f.svc.BookEditPage(context.Background(), id.String())
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.BookEditPage(context.Background(), "zzz")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_RegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("invalid input is not stored", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.RegisterUser(context.Background(), "", "not-an-email", "123")
		require.ErrorIs(t, err, errs.ErrValidation)
		require.Contains(t, err.Error(), "password: Password must be at least 6 characters")
	})

	t.Run("email lowercased", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := uuid.New()
		f.repo.EXPECT().UserEmailExists(gomock.Any(), "ada@example.com").Return(false, nil)
		f.repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u model.User) (uuid.UUID, error) {
				require.Equal(t, "Ada", u.Name)
				require.Equal(t, "ada@example.com", u.Email)
				return id, nil
			})
		got, err := f.svc.RegisterUser(context.Background(), " Ada ", "Ada@Example.com", "secret1")
		require.NoError(t, err)
		require.Equal(t, id, got)
	})
}
