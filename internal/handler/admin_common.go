package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/logger"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
)

// EventStore is the event aggregate manager as seen by the handlers.
type EventStore interface {
	Create(ctx context.Context, in model.EventInput) (*model.Event, error)
	Update(ctx context.Context, id int64, in model.EventInput) (*model.Event, error)
	AttachBar(ctx context.Context, eventID, barID int64) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.Event, error)
	Get(ctx context.Context, id int64) (*model.Event, error)
}

type BarStore interface {
	Create(ctx context.Context, b *model.Bar) error
	List(ctx context.Context) ([]model.BarView, error)
	Get(ctx context.Context, id int64) (*model.BarView, error)
	Update(ctx context.Context, id int64, u model.BarUpdate) error
	Delete(ctx context.Context, id int64) error
	RecalculateTotals(ctx context.Context, id int64) (*model.BarView, error)
}

type BarItemStore interface {
	Create(ctx context.Context, kind model.ItemKind, barID int64, it *model.LineItem) error
	ListByBar(ctx context.Context, kind model.ItemKind, barID int64) ([]model.LineItem, error)
	Update(ctx context.Context, kind model.ItemKind, barID, itemID int64, it *model.LineItem) error
	Delete(ctx context.Context, kind model.ItemKind, barID, itemID int64) error
}

type ArrangementStore interface {
	Create(ctx context.Context, in model.ArrangementInput) (*model.ArrangementDetail, error)
	Update(ctx context.Context, id string, in model.ArrangementInput) (*model.ArrangementDetail, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.ArrangementDetail, error)
	List(ctx context.Context) ([]model.ArrangementView, error)
}

type AssignmentStore interface {
	Assign(ctx context.Context, in model.AssignmentInput) (*model.Assignment, error)
	Options(ctx context.Context) (*model.AssignmentOptions, error)
	List(ctx context.Context) ([]model.AssignmentView, error)
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
}

// Auditor receives an event after every committed write.
type Auditor interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// Stores bundles the repositories behind the admin endpoints.
type Stores struct {
	Events       EventStore
	Bars         BarStore
	BarItems     BarItemStore
	Arrangements ArrangementStore
	Assignments  AssignmentStore
}

// AdminHandler serves the /v1/admin endpoints.  Each handler parses the
// request, makes one repository call and serializes the result.
type AdminHandler struct {
	events       EventStore
	bars         BarStore
	barItems     BarItemStore
	arrangements ArrangementStore
	assignments  AssignmentStore
	auditor      Auditor
	log          logger.Logger
}

const auditTimeout = 3 * time.Second

// NewAdminHandler panics if any store is nil.  auditor may be nil.
func NewAdminHandler(s Stores, auditor Auditor, log logger.Logger) *AdminHandler {
	if s.Events == nil || s.Bars == nil || s.BarItems == nil || s.Arrangements == nil || s.Assignments == nil {
		panic("nil store passed to NewAdminHandler")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AdminHandler{
		events:       s.Events,
		bars:         s.Bars,
		barItems:     s.BarItems,
		arrangements: s.Arrangements,
		assignments:  s.Assignments,
		auditor:      auditor,
		log:          log.With("component", "admin-handler"),
	}
}

// statusFor maps a repository error kind onto an HTTP status and a stable
// error code for the response body.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, repository.ErrTransaction):
		return http.StatusInternalServerError, "transaction_failed"
	case errors.Is(err, repository.ErrInfrastructure):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *AdminHandler) respondError(c echo.Context, op string, err error) error {
	status, code := statusFor(err)
	msg := repository.Message(err)
	switch {
	case code == "internal":
		msg = "internal error"
		fallthrough
	case status >= http.StatusInternalServerError:
		h.log.InternalError(op+" failed", err, "path", c.Path(), "status", status)
	case status == http.StatusConflict:
		h.log.BusinessError(op+" rejected", err, "path", c.Path())
	}
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation", "message": msg})
}

// int64Param parses a positive numeric path parameter.
func int64Param(c echo.Context, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// audit publishes a committed write.  Broker failures are logged and never
// change the response.
func (h *AdminHandler) audit(c echo.Context, kind, entityID string) {
	if h.auditor == nil {
		return
	}
	actor, _ := c.Get(middleware.ContextUserID).(string)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), auditTimeout)
	defer cancel()
	if err := h.auditor.Publish(ctx, queue.NewAuditEvent(kind, entityID, actor)); err != nil {
		h.log.Warn("audit publish failed", "kind", kind, "entity_id", entityID, "err", err)
	}
}

func idString(id int64) string { return strconv.FormatInt(id, 10) }
