package handler

import (
	"net/http"

	md "github.com/Astemirdum/my-little-library/pkg/middleware"
	"github.com/labstack/echo/v4"
)

func (h *Handler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"page": "login"})
}

func (h *Handler) SignupPage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"page": "signup"})
}

// Login godoc
// @Summary authenticate with email and password
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "email"
// @Param password formData string true "password"
// @Success 200 {object} model.ActionResult
// @Failure 422 {object} model.ActionResult
// @Router /login [post]
func (h *Handler) Login(c echo.Context) error {
	res := h.librarySvc.Authenticate(c.Request().Context(), formValues(c, loginFields), h.startSession(c))
	return h.result(c, res)
}

// Signup godoc
// @Summary register a librarian and start a session
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "name"
// @Param email formData string true "email"
// @Param password formData string true "password"
// @Success 200 {object} model.ActionResult
// @Failure 422 {object} model.ActionResult
// @Router /signup [post]
func (h *Handler) Signup(c echo.Context) error {
	res := h.librarySvc.Signup(c.Request().Context(), formValues(c, signupFields), h.startSession(c))
	return h.result(c, res)
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.Delete(c.Response())
	return c.Redirect(http.StatusSeeOther, md.LoginPath)
}
