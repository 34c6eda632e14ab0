package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
)

// ListAssignments handles GET /v1/admin/assignments.
func (h *AdminHandler) ListAssignments(c echo.Context) error {
	list, err := h.assignments.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, "list assignments", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"assignments": list})
}

// AssignmentOptions handles GET /v1/admin/assignments/options: the active
// employees and done events an assignment can be made between.
func (h *AdminHandler) AssignmentOptions(c echo.Context) error {
	opts, err := h.assignments.Options(c.Request().Context())
	if err != nil {
		return h.respondError(c, "assignment options", err)
	}
	return c.JSON(http.StatusOK, opts)
}

// AssignEmployee handles POST /v1/admin/assignments.
func (h *AdminHandler) AssignEmployee(c echo.Context) error {
	var in model.AssignmentInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.assignments.Assign(c.Request().Context(), in)
	if err != nil {
		return h.respondError(c, "assign employee", err)
	}
	h.audit(c, queue.EmployeeAssigned, a.ID)
	return c.JSON(http.StatusCreated, a)
}

// UpdateAssignment handles PUT /v1/admin/assignments/:id.  Only the role
// label can change.
func (h *AdminHandler) UpdateAssignment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid assignment id")
	}
	var body struct {
		Role string `json:"user_role"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.assignments.UpdateRole(c.Request().Context(), id, body.Role); err != nil {
		return h.respondError(c, "update assignment", err)
	}
	h.audit(c, queue.AssignmentUpdated, id)
	return c.JSON(http.StatusOK, echo.Map{"employee_assign_id": id, "user_role": body.Role})
}

// DeleteAssignment handles DELETE /v1/admin/assignments/:id.
func (h *AdminHandler) DeleteAssignment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid assignment id")
	}
	if err := h.assignments.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, "delete assignment", err)
	}
	h.audit(c, queue.AssignmentDeleted, id)
	return c.NoContent(http.StatusNoContent)
}
