package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
)

// ListEvents handles GET /v1/admin/events.
func (h *AdminHandler) ListEvents(c echo.Context) error {
	events, err := h.events.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, "list events", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// GetEvent handles GET /v1/admin/events/:id.
func (h *AdminHandler) GetEvent(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	ev, err := h.events.Get(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, "get event", err)
	}
	return c.JSON(http.StatusOK, ev)
}

// CreateEvent handles POST /v1/admin/events.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var in model.EventInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	ev, err := h.events.Create(c.Request().Context(), in)
	if err != nil {
		return h.respondError(c, "create event", err)
	}
	h.audit(c, queue.EventCreated, idString(ev.ID))
	return c.JSON(http.StatusCreated, ev)
}

// UpdateEvent handles PUT /v1/admin/events/:id.  The variant is taken from
// the stored event, never from the payload.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	var in model.EventInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	ev, err := h.events.Update(c.Request().Context(), id, in)
	if err != nil {
		return h.respondError(c, "update event", err)
	}
	h.audit(c, queue.EventUpdated, idString(id))
	return c.JSON(http.StatusOK, ev)
}

// AttachBar handles PUT /v1/admin/events/:id/bar/:bar_id.
func (h *AdminHandler) AttachBar(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	barID, ok := int64Param(c, "bar_id")
	if !ok {
		return badRequest(c, "invalid bar id")
	}
	if err := h.events.AttachBar(c.Request().Context(), id, barID); err != nil {
		return h.respondError(c, "attach bar", err)
	}
	h.audit(c, queue.BarAttached, idString(id))
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "bar_requirement_id": barID})
}

// DeleteEvent handles DELETE /v1/admin/events/:id.  Deleting an event that
// does not exist succeeds.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	id, ok := int64Param(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}
	deleted, err := h.events.Delete(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, "delete event", err)
	}
	if deleted {
		h.audit(c, queue.EventDeleted, idString(id))
	}
	return c.NoContent(http.StatusNoContent)
}
