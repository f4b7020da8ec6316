package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/library/internal/service"
	md "github.com/Astemirdum/my-little-library/pkg/middleware"
	"github.com/Astemirdum/my-little-library/pkg/serialize"
	"github.com/Astemirdum/my-little-library/pkg/session"
	"github.com/Astemirdum/my-little-library/pkg/validate"
	_ "github.com/Astemirdum/my-little-library/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const msgFetchFailed = "Failed to fetch data."

var (
	bookFields   = []string{"title", "author", "editionName", "yearOfPublication", "ean13", "copyNum", "loanableStatus", "summary", "coverURL", "genre"}
	memberFields = []string{"name", "email", "phone", "address"}
	signupFields = []string{"name", "email", "password"}
	loginFields  = []string{"email", "password"}
)

type Handler struct {
	librarySvc LibraryService
	sessions   *session.Manager
	guard      md.GuardConfig
	log        *zap.Logger
}

func New(librarySrv LibraryService, sessions *session.Manager, guard md.GuardConfig, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySrv,
		sessions:   sessions,
		guard:      guard,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))
	e.Use(
		middleware.RequestID(),
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		md.SessionGuard(h.sessions, h.guard),
	)
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", md.NewRateLimiter(apiRPS))
	api.GET("/genres", h.GetGenres)

	pages := e.Group("", md.NewRateLimiter(apiRPS))
	pages.GET("/login", h.LoginPage)
	pages.POST("/login", h.Login)
	pages.GET("/signup", h.SignupPage)
	pages.POST("/signup", h.Signup)
	pages.POST("/logout", h.Logout)

	dash := pages.Group("/dashboard")
	dash.GET("", h.Dashboard)

	dash.GET("/books", h.GetBooks)
	dash.GET("/books/create", h.CreateBookPage)
	dash.POST("/books/create", h.CreateBook)
	dash.GET("/books/:id/edit", h.EditBookPage)
	dash.POST("/books/:id/edit", h.UpdateBook)
	dash.POST("/books/:id/delete", h.DeleteBook)

	dash.GET("/members", h.GetMembers)
	dash.GET("/members/create", h.CreateMemberPage)
	dash.POST("/members/create", h.CreateMember)
	dash.GET("/members/:id/edit", h.EditMemberPage)
	dash.POST("/members/:id/edit", h.UpdateMember)
	dash.POST("/members/:id/delete", h.DeleteMember)

	dash.GET("/loans", h.GetLoans)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func formValues(c echo.Context, fields []string) map[string]string {
	raw := make(map[string]string, len(fields))
	for _, f := range fields {
		raw[f] = c.FormValue(f)
	}
	return raw
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func statusOf(res model.ActionResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Reason == model.ReasonStorage:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *Handler) result(c echo.Context, res model.ActionResult) error {
	return c.JSON(statusOf(res), res)
}

// page serializes page data into its transport form.
func (h *Handler) page(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, serialize.Value(data))
}

func (h *Handler) readError(op string, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	h.log.Error(op, zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, msgFetchFailed)
}

func (h *Handler) startSession(c echo.Context) service.SessionStarter {
	return func(userID string) error {
		_, err := h.sessions.Create(c.Response(), userID)
		return err
	}
}
