package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
)

// ListBars handles GET /v1/admin/bars.
func (h *AdminHandler) ListBars(c echo.Context) error {
	bars, err := h.bars.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, "list bars", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bars": bars})
}

// GetBar handles GET /v1/admin/bars/:id.
func (h *AdminHandler) GetBar(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	bar, err := h.bars.Get(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, "get bar", err)
	}
	return c.JSON(http.StatusOK, bar)
}

// CreateBar handles POST /v1/admin/bars.  The bar is not linked to an
// event; the caller attaches it with PUT /events/:id/bar/:bar_id.
func (h *AdminHandler) CreateBar(c echo.Context) error {
	var b model.Bar
	if err := c.Bind(&b); err != nil {
		return badRequest(c, "invalid request body")
	}
	b.ID = 0
	if err := h.bars.Create(c.Request().Context(), &b); err != nil {
		return h.respondError(c, "create bar", err)
	}
	h.audit(c, queue.BarCreated, idString(b.ID))
	return c.JSON(http.StatusCreated, b)
}

// UpdateBar handles PUT /v1/admin/bars/:id.  Only the liquor window and pax change.
func (h *AdminHandler) UpdateBar(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	var u model.BarUpdate
	if err := c.Bind(&u); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()
	if err := h.bars.Update(ctx, id, u); err != nil {
		return h.respondError(c, "update bar", err)
	}
	h.audit(c, queue.BarUpdated, idString(id))
	bar, err := h.bars.Get(ctx, id)
	if err != nil {
		return h.respondError(c, "get bar", err)
	}
	return c.JSON(http.StatusOK, bar)
}

// DeleteBar handles DELETE /v1/admin/bars/:id.  The bar's items go with it.
func (h *AdminHandler) DeleteBar(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	if err := h.bars.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, "delete bar", err)
	}
	h.audit(c, queue.BarDeleted, idString(id))
	return c.NoContent(http.StatusNoContent)
}

// RecalculateBarTotals handles POST /v1/admin/bars/:id/totals.
func (h *AdminHandler) RecalculateBarTotals(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	bar, err := h.bars.RecalculateTotals(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, "recalculate bar totals", err)
	}
	h.audit(c, queue.BarTotalsRefreshed, idString(id))
	return c.JSON(http.StatusOK, bar)
}
