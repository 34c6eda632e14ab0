package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
)

// itemPath reads :id and :kind.  Unknown kinds are rejected by the store.
func itemPath(c echo.Context) (int64, model.ItemKind, bool) {
	barID, ok := int64Param(c, "id")
	if !ok {
		return 0, "", false
	}
	return barID, model.ItemKind(c.Param("kind")), true
}

// ListBarItems handles GET /v1/admin/bars/:id/items/:kind.
func (h *AdminHandler) ListBarItems(c echo.Context) error {
	barID, kind, ok := itemPath(c)
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	items, err := h.barItems.ListByBar(c.Request().Context(), kind, barID)
	if err != nil {
		return h.respondError(c, "list bar items", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateBarItem handles POST /v1/admin/bars/:id/items/:kind.
func (h *AdminHandler) CreateBarItem(c echo.Context) error {
	barID, kind, ok := itemPath(c)
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	var it model.LineItem
	if err := c.Bind(&it); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.barItems.Create(c.Request().Context(), kind, barID, &it); err != nil {
		return h.respondError(c, "create bar item", err)
	}
	h.audit(c, queue.BarItemChanged, idString(barID))
	return c.JSON(http.StatusCreated, it)
}

// UpdateBarItem handles PUT /v1/admin/bars/:id/items/:kind/:item_id.
func (h *AdminHandler) UpdateBarItem(c echo.Context) error {
	barID, kind, ok := itemPath(c)
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	itemID, ok := int64Param(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item id")
	}
	var it model.LineItem
	if err := c.Bind(&it); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.barItems.Update(c.Request().Context(), kind, barID, itemID, &it); err != nil {
		return h.respondError(c, "update bar item", err)
	}
	h.audit(c, queue.BarItemChanged, idString(barID))
	return c.JSON(http.StatusOK, it)
}

// DeleteBarItem handles DELETE /v1/admin/bars/:id/items/:kind/:item_id.
func (h *AdminHandler) DeleteBarItem(c echo.Context) error {
	barID, kind, ok := itemPath(c)
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	itemID, ok := int64Param(c, "item_id")
	if !ok {
		return badRequest(c, "invalid item id")
	}
	if err := h.barItems.Delete(c.Request().Context(), kind, barID, itemID); err != nil {
		return h.respondError(c, "delete bar item", err)
	}
	h.audit(c, queue.BarItemChanged, idString(barID))
	return c.NoContent(http.StatusNoContent)
}
