package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-booking/internal/handler"
)

// The admin routes must reject before reaching a store, so the stores
// below are never called.
type (
	nopEvents       struct{ handler.EventStore }
	nopBars         struct{ handler.BarStore }
	nopBarItems     struct{ handler.BarItemStore }
	nopArrangements struct{ handler.ArrangementStore }
	nopAssignments  struct{ handler.AssignmentStore }
)

func TestAdminRoutesRequireToken(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e, nil)
	h := handler.NewAdminHandler(handler.Stores{
		Events:       nopEvents{},
		Bars:         nopBars{},
		BarItems:     nopBarItems{},
		Arrangements: nopArrangements{},
		Assignments:  nopAssignments{},
	}, nil, nil)
	RegisterAdmin(e, h, AdminOptions{JWTSecret: "secret"})

	cases := map[string]int{
		"GET /healthz":                      http.StatusOK,
		"GET /v1/admin/events":              http.StatusUnauthorized,
		"DELETE /v1/admin/events/1":         http.StatusUnauthorized,
		"GET /v1/admin/assignments/options": http.StatusUnauthorized,
		"PUT /v1/admin/bars/1/items/bite/2": http.StatusUnauthorized,
		"POST /v1/admin/arrangements":       http.StatusUnauthorized,
	}
	for route, want := range cases {
		method, path, _ := strings.Cut(route, " ")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: status = %d, want %d", route, rec.Code, want)
		}
	}
}
