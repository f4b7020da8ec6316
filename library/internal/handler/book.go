package handler

import (
	"net/http"

	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/pkg/serialize"
	"github.com/Astemirdum/my-little-library/pkg/session"
	"github.com/labstack/echo/v4"
)

func (h *Handler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := session.UserIDFromContext(ctx)
	d, err := h.librarySvc.Dashboard(ctx, userID)
	if err != nil {
		return h.readError("Dashboard", err)
	}
	return h.page(c, d)
}

// GetBooks godoc
// @Summary paginated book search
// @Tags books
// @Produce json
// @Param query query string false "search over title, author and summary"
// @Param page query int false "page, starting at 1"
// @Success 200 {object} model.ListBooks
// @Router /dashboard/books [get]
func (h *Handler) GetBooks(c echo.Context) error {
	list, err := h.librarySvc.ListBooks(c.Request().Context(), c.QueryParam("query"), pageParam(c))
	if err != nil {
		return h.readError("GetBooks", err)
	}
	return h.page(c, list)
}

func (h *Handler) CreateBookPage(c echo.Context) error {
	genres, err := h.librarySvc.ListGenres(c.Request().Context())
	if err != nil {
		return h.readError("CreateBookPage", err)
	}
	return h.page(c, model.BookCreatePage{Genres: genres})
}

func (h *Handler) EditBookPage(c echo.Context) error {
	p, err := h.librarySvc.BookEditPage(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.readError("EditBookPage", err)
	}
	return h.page(c, p)
}

// CreateBook godoc
// @Summary create a book from form fields
// @Tags books
// @Accept x-www-form-urlencoded
// @Produce json
// @Param title formData string true "title"
// @Param copyNum formData int true "number of copies"
// @Param loanableStatus formData string true "available on site | loanable"
// @Success 200 {object} model.ActionResult
// @Failure 422 {object} model.ActionResult
// @Failure 500 {object} model.ActionResult
// @Router /dashboard/books/create [post]
func (h *Handler) CreateBook(c echo.Context) error {
	return h.result(c, h.librarySvc.CreateBook(c.Request().Context(), formValues(c, bookFields)))
}

func (h *Handler) UpdateBook(c echo.Context) error {
	return h.result(c, h.librarySvc.UpdateBook(c.Request().Context(), c.Param("id"), formValues(c, bookFields)))
}

func (h *Handler) DeleteBook(c echo.Context) error {
	return h.result(c, h.librarySvc.DeleteBook(c.Request().Context(), c.Param("id")))
}

// GetGenres godoc
// @Summary genres ordered by category
// @Tags genres
// @Produce json
// @Success 200 {array} model.Genre
// @Router /api/genres [get]
func (h *Handler) GetGenres(c echo.Context) error {
	genres, err := h.librarySvc.ListGenres(c.Request().Context())
	if err != nil {
		return h.readError("GetGenres", err)
	}
	return c.JSON(http.StatusOK, serialize.Slice(genres))
}
