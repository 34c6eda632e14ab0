package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
)

type fakeEvents struct {
	EventStore
	deleted   bool
	deleteErr error
	updateErr error
	calls     []int64
}

func (f *fakeEvents) Delete(_ context.Context, id int64) (bool, error) {
	f.calls = append(f.calls, id)
	return f.deleted, f.deleteErr
}

func (f *fakeEvents) Update(_ context.Context, id int64, in model.EventInput) (*model.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	name := ""
	if in.EventName != nil {
		name = *in.EventName
	}
	return &model.Event{ID: id, Type: model.KindCustom, Details: &model.CustomEvent{EventName: name}}, nil
}

type fakeBars struct {
	BarStore
	nextID int64
	err    error
}

func (f *fakeBars) Create(_ context.Context, b *model.Bar) error {
	if f.err != nil {
		return f.err
	}
	b.ID = f.nextID
	return nil
}

func (f *fakeBars) Delete(context.Context, int64) error { return f.err }

type fakeItems struct{ BarItemStore }

func (fakeItems) ListByBar(_ context.Context, _ model.ItemKind, barID int64) ([]model.LineItem, error) {
	if barID != 41 {
		return nil, &repository.Error{Kind: repository.ErrNotFound, Msg: fmt.Sprintf("bar %d not found", barID)}
	}
	return []model.LineItem{}, nil
}

type fakeArrangements struct {
	ArrangementStore
	err error
}

func (f *fakeArrangements) Create(_ context.Context, in model.ArrangementInput) (*model.ArrangementDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d := &model.ArrangementDetail{Arrangement: model.Arrangement{ID: "TCA000007", LinenColor: in.LinenColor}, EventID: &in.EventID}
	for i, r := range in.Reservations {
		d.ReservedTables = append(d.ReservedTables, model.TableReservation{ID: fmt.Sprintf("TAB%06d", 13+i), TableNumber: r.TableNumber, ReserveName: r.ReserveName})
	}
	return d, nil
}

type fakeAssignments struct {
	AssignmentStore
	err error
}

func (f *fakeAssignments) Assign(_ context.Context, in model.AssignmentInput) (*model.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Assignment{ID: "EAE000001", EmployeeID: in.EmployeeID, EventID: in.EventID, Role: in.Role}, nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []queue.AuditEvent
	err    error
}

func (a *recordingAuditor) Publish(_ context.Context, ev queue.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return a.err
}

func (a *recordingAuditor) kinds() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, ev := range a.events {
		out = append(out, ev.Kind+":"+ev.EntityID)
	}
	return out
}

type fixture struct {
	e            *echo.Echo
	events       *fakeEvents
	bars         *fakeBars
	arrangements *fakeArrangements
	assignments  *fakeAssignments
	audit        *recordingAuditor
}

func newFixture() *fixture {
	f := &fixture{
		e:            echo.New(),
		events:       &fakeEvents{},
		bars:         &fakeBars{nextID: 41},
		arrangements: &fakeArrangements{},
		assignments:  &fakeAssignments{},
		audit:        &recordingAuditor{},
	}
	h := NewAdminHandler(Stores{
		Events:       f.events,
		Bars:         f.bars,
		BarItems:     fakeItems{},
		Arrangements: f.arrangements,
		Assignments:  f.assignments,
	}, f.audit, nil)
	f.e.PUT("/events/:id", h.UpdateEvent)
	f.e.DELETE("/events/:id", h.DeleteEvent)
	f.e.POST("/bars", h.CreateBar)
	f.e.DELETE("/bars/:id", h.DeleteBar)
	f.e.GET("/bars/:id/items/:kind", h.ListBarItems)
	f.e.POST("/arrangements", h.CreateArrangement)
	f.e.POST("/assignments", h.AssignEmployee)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestDeleteMissingEventIsNoContentWithoutAudit(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodDelete, "/events/9", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.events.calls) != 1 || f.events.calls[0] != 9 {
		t.Fatalf("delete calls = %v", f.events.calls)
	}
	if got := f.audit.kinds(); len(got) != 0 {
		t.Fatalf("audited a no-op delete: %v", got)
	}
}

func TestDeleteEventAudits(t *testing.T) {
	f := newFixture()
	f.events.deleted = true
	if rec := f.do(http.MethodDelete, "/events/9", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := f.audit.kinds(); len(got) != 1 || got[0] != "event.deleted:9" {
		t.Fatalf("audit = %v", got)
	}
}

func TestDeleteEventBadID(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodDelete, "/events/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(f.events.calls) != 0 {
		t.Fatal("store called with an invalid id")
	}
}

func TestErrorKindsMapToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"validation", &repository.Error{Kind: repository.ErrValidation, Msg: "bar_pax must be positive"}, http.StatusBadRequest, "validation"},
		{"not found", &repository.Error{Kind: repository.ErrNotFound, Msg: "bar 5 is not referenced by any event"}, http.StatusNotFound, "not_found"},
		{"conflict", &repository.Error{Kind: repository.ErrConflict, Msg: "duplicate identifier"}, http.StatusConflict, "conflict"},
		{"transaction", &repository.Error{Kind: repository.ErrTransaction, Msg: "delete bar"}, http.StatusInternalServerError, "transaction_failed"},
		{"infrastructure", &repository.Error{Kind: repository.ErrInfrastructure, Msg: "begin transaction"}, http.StatusServiceUnavailable, "unavailable"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.bars.err = tc.err
			rec := f.do(http.MethodDelete, "/bars/5", "")
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
			body := decodeBody(t, rec)
			if body["error"] != tc.kind {
				t.Fatalf("error = %v, want %s", body["error"], tc.kind)
			}
			if tc.kind == "internal" && body["message"] != "internal error" {
				t.Fatalf("untyped error leaked: %v", body["message"])
			}
			if len(f.audit.kinds()) != 0 {
				t.Fatal("failed write was audited")
			}
		})
	}
}

func TestCreateBarReturnsGeneratedID(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/bars", `{"bar_requirement_id":99,"liquor_time_from":"18:00:00","liquor_time_to":"23:00:00","bar_pax":120}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	if got := decodeBody(t, rec)["bar_requirement_id"]; got != float64(41) {
		t.Fatalf("bar_requirement_id = %v", got)
	}
	if got := f.audit.kinds(); len(got) != 1 || got[0] != "bar.created:41" {
		t.Fatalf("audit = %v", got)
	}
}

func TestCreateBarMalformedBody(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/bars", `{"bar_pax":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateEventReturnsVariant(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPut, "/events/3", `{"event_name":"Gala Night"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	details, _ := body["details"].(map[string]any)
	if body["type"] != "custom" || details["event_name"] != "Gala Night" {
		t.Fatalf("body = %v", body)
	}
}

func TestUpdateEventNotFound(t *testing.T) {
	f := newFixture()
	f.events.updateErr = &repository.Error{Kind: repository.ErrNotFound, Msg: "event 3 not found"}
	rec := f.do(http.MethodPut, "/events/3", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "event 3 not found" {
		t.Fatalf("message = %v", msg)
	}
}

func TestCreateArrangement(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/arrangements", `{"event_id":12,"linen_color":"ivory","chair_cover_color":"gold","head_table_pax":8,"reservations":[{"table_number":1,"reserve_name":"Family"},{"table_number":2,"reserve_name":"Friends"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}
	body := decodeBody(t, rec)
	tables, _ := body["reservedTables"].([]any)
	if body["arrangement_id"] != "TCA000007" || len(tables) != 2 {
		t.Fatalf("body = %v", body)
	}
	if got := f.audit.kinds(); len(got) != 1 || got[0] != "arrangement.created:TCA000007" {
		t.Fatalf("audit = %v", got)
	}
}

func TestAssignConflict(t *testing.T) {
	f := newFixture()
	f.assignments.err = &repository.Error{Kind: repository.ErrConflict, Msg: "assignment id EAE000004 already in use"}
	rec := f.do(http.MethodPost, "/assignments", `{"employee_id":1,"event_id":2,"user_role":"Waiter"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuditFailureDoesNotChangeResponse(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("broker down")
	rec := f.do(http.MethodPost, "/assignments", `{"employee_id":1,"event_id":2,"user_role":"Waiter"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := f.audit.kinds(); len(got) != 1 || got[0] != "employee.assigned:EAE000001" {
		t.Fatalf("audit = %v", got)
	}
}

func TestNewAdminHandlerPanicsOnNilStore(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewAdminHandler(Stores{}, nil, nil)
}

type pingFunc func(context.Context) error

func (p pingFunc) PingContext(ctx context.Context) error { return p(ctx) }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", Health(pingFunc(func(context.Context) error { return nil })))
	e.GET("/down", Health(pingFunc(func(context.Context) error { return errors.New("no pool") })))
	for path, want := range map[string]int{"/up": http.StatusOK, "/down": http.StatusServiceUnavailable} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s status = %d, want %d", path, rec.Code, want)
		}
	}
}

func TestListBarItemsForMissingBarIsNotFound(t *testing.T) {
	f := newFixture()
	if rec := f.do(http.MethodGet, "/bars/41/items/bite", ""); rec.Code != http.StatusOK {
		t.Fatalf("existing bar status = %d", rec.Code)
	}
	rec := f.do(http.MethodGet, "/bars/7/items/bite", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing bar status = %d", rec.Code)
	}
	if msg := decodeBody(t, rec)["message"]; msg != "bar 7 not found" {
		t.Fatalf("message = %v", msg)
	}
}
