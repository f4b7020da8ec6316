package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) GetMembers(c echo.Context) error {
	list, err := h.librarySvc.ListMembers(c.Request().Context(), c.QueryParam("query"), pageParam(c))
	if err != nil {
		return h.readError("GetMembers", err)
	}
	return h.page(c, list)
}

func (h *Handler) CreateMemberPage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"page": "members/create"})
}

func (h *Handler) EditMemberPage(c echo.Context) error {
	m, err := h.librarySvc.GetMember(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.readError("EditMemberPage", err)
	}
	return h.page(c, map[string]any{"member": m})
}

func (h *Handler) CreateMember(c echo.Context) error {
	return h.result(c, h.librarySvc.CreateMember(c.Request().Context(), formValues(c, memberFields)))
}

func (h *Handler) UpdateMember(c echo.Context) error {
	return h.result(c, h.librarySvc.UpdateMember(c.Request().Context(), c.Param("id"), formValues(c, memberFields)))
}

func (h *Handler) DeleteMember(c echo.Context) error {
	return h.result(c, h.librarySvc.DeleteMember(c.Request().Context(), c.Param("id")))
}

func (h *Handler) GetLoans(c echo.Context) error {
	list, err := h.librarySvc.ListLoans(c.Request().Context(), pageParam(c))
	if err != nil {
		return h.readError("GetLoans", err)
	}
	return h.page(c, list)
}
