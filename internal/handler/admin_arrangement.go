package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
)

func arrangementID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	return id, id != ""
}

// ListArrangements handles GET /v1/admin/arrangements.
func (h *AdminHandler) ListArrangements(c echo.Context) error {
	list, err := h.arrangements.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, "list arrangements", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"arrangements": list})
}

// GetArrangement handles GET /v1/admin/arrangements/:id.
func (h *AdminHandler) GetArrangement(c echo.Context) error {
	id, ok := arrangementID(c)
	if !ok {
		return badRequest(c, "invalid arrangement id")
	}
	a, err := h.arrangements.Get(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, "get arrangement", err)
	}
	return c.JSON(http.StatusOK, a)
}

// CreateArrangement handles POST /v1/admin/arrangements.
func (h *AdminHandler) CreateArrangement(c echo.Context) error {
	var in model.ArrangementInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.arrangements.Create(c.Request().Context(), in)
	if err != nil {
		return h.respondError(c, "create arrangement", err)
	}
	h.audit(c, queue.ArrangementCreated, a.ID)
	return c.JSON(http.StatusCreated, a)
}

// UpdateArrangement handles PUT /v1/admin/arrangements/:id.  The supplied
// reservations replace every existing one.
func (h *AdminHandler) UpdateArrangement(c echo.Context) error {
	id, ok := arrangementID(c)
	if !ok {
		return badRequest(c, "invalid arrangement id")
	}
	var in model.ArrangementInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.arrangements.Update(c.Request().Context(), id, in)
	if err != nil {
		return h.respondError(c, "update arrangement", err)
	}
	h.audit(c, queue.ArrangementUpdated, id)
	return c.JSON(http.StatusOK, a)
}

// DeleteArrangement handles DELETE /v1/admin/arrangements/:id.
func (h *AdminHandler) DeleteArrangement(c echo.Context) error {
	id, ok := arrangementID(c)
	if !ok {
		return badRequest(c, "invalid arrangement id")
	}
	if err := h.arrangements.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, "delete arrangement", err)
	}
	h.audit(c, queue.ArrangementDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
