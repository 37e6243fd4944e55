package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/allocation"
	"github.com/iliyamo/table-reservation/internal/floorplan"
	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/service"
	"github.com/iliyamo/table-reservation/internal/utils"
)

type fakeReservations struct {
	lastInput  service.CreateReservationInput
	lastStatus string
	lastTables []uint64
	lastPhone  string
	booking    *service.Booking
	res        *model.Reservation
	err        error
}

func (f *fakeReservations) CreateReservation(ctx context.Context, in service.CreateReservationInput) (*service.Booking, error) {
	f.lastInput = in
	return f.booking, f.err
}

func (f *fakeReservations) CancelByCustomer(ctx context.Context, id uint64, phone string) (*model.Reservation, error) {
	f.lastPhone = phone
	return f.res, f.err
}

func (f *fakeReservations) UpdateStatus(ctx context.Context, id uint64, status string) (*model.Reservation, error) {
	f.lastStatus = status
	return f.res, f.err
}

func (f *fakeReservations) ReassignTables(ctx context.Context, id uint64, tableIDs []uint64) (*model.Reservation, error) {
	f.lastTables = tableIDs
	return f.res, f.err
}

func (f *fakeReservations) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	return f.res, f.err
}

func (f *fakeReservations) ListReservations(ctx context.Context, date string) ([]model.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []model.Reservation{*f.res}, nil
}

type fakeAvailability struct {
	gotExclude uint64
	gotAt      model.TimeOfDay
	slots      []allocation.SlotOption
	err        error
}

func (f *fakeAvailability) ListAvailableSlots(ctx context.Context, date string, partySize, durationMinutes int) ([]allocation.SlotOption, error) {
	return f.slots, f.err
}

func (f *fakeAvailability) ListTablesWithStatus(ctx context.Context, date string, at model.TimeOfDay, durationMinutes int, excludeID uint64) ([]allocation.TableStatus, error) {
	f.gotAt, f.gotExclude = at, excludeID
	return []allocation.TableStatus{{TableID: 1, TableName: "A1", Free: true}}, f.err
}

type fakePlan struct {
	snap     *floorplan.Snapshot
	reloaded int
}

func (f *fakePlan) Current() (*floorplan.Snapshot, error) {
	if f.snap == nil {
		return nil, floorplan.ErrNotLoaded
	}
	return f.snap, nil
}

func (f *fakePlan) Reload(ctx context.Context) (*floorplan.Snapshot, error) {
	f.reloaded++
	return f.snap, nil
}

func testSnapshot() *floorplan.Snapshot {
	zone := uint64(1)
	return floorplan.NewSnapshot(
		[]model.Zone{{ID: 1, Name: "Terrace", PriorityOrder: 0, Color: "#0a0", IsActive: true}},
		[]model.Table{
			{ID: 1, Name: "T1", Capacity: 2, ZoneID: &zone, IsActive: true},
			{ID: 2, Name: "T2", Capacity: 2, ZoneID: &zone, IsActive: true},
		},
		[]model.TableCombination{{ID: 5, Name: "T1+T2", TableIDs: []uint64{1, 2}, TotalCapacity: 4, ZoneID: &zone, IsActive: true}},
		time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	)
}

func serve(h echo.HandlerFunc, method, path, target, body string, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	if len(params) > 0 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	_ = h(c)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestCreateReservation_Success(t *testing.T) {
	start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	svc := &fakeReservations{booking: &service.Booking{
		Reservation: &model.Reservation{ID: 9, TableIDs: []uint64{3, 4}, StartAt: start, EndAt: start.Add(90 * time.Minute)},
		Assignment:  allocation.Combination{CombinationID: 2, Zone: 1, Members: []uint64{3, 4}, Seats: 6},
	}}
	h := NewReservationHandler(svc, nil)

	rec := serve(h.Create, http.MethodPost, "/v1/reservations", "/v1/reservations",
		`{"name":"Ana","phone":"600","date":"2025-06-01","time":"20:00","party_size":6,"preferred_zone_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out CreateReservationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, uint64(9), out.ReservationID)
	assert.Equal(t, []uint64{3, 4}, out.TableIDs)
	assert.Equal(t, allocation.KindCombination, out.Kind)

	assert.Equal(t, model.TimeOfDay(20*60), svc.lastInput.Time)
	require.NotNil(t, svc.lastInput.Customer)
	assert.Equal(t, "600", svc.lastInput.Customer.Phone)
	assert.Equal(t, uint64(1), *svc.lastInput.PreferredZoneID)
}

func TestCreateReservation_Failures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		body   string
		status int
		reason string
	}{
		{"closed", &service.PolicyError{Reason: service.ReasonClosedDay, Message: "closed", Err: service.ErrClosedDay}, "", http.StatusConflict, "closed_day"},
		{"no tables", &service.PolicyError{Reason: service.ReasonNoTables, Err: service.ErrNoTablesAvailable}, "", http.StatusConflict, "no_tables_available"},
		{"invalid", service.ErrInvalidInput, "", http.StatusBadRequest, "invalid_input"},
		{"internal", errors.New("db down"), "", http.StatusInternalServerError, "internal"},
		{"bad time", nil, `{"customer_id":1,"date":"2025-06-01","time":"8pm","party_size":2}`, http.StatusBadRequest, "invalid_input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewReservationHandler(&fakeReservations{err: tc.err}, nil)
			body := tc.body
			if body == "" {
				body = `{"customer_id":1,"date":"2025-06-01","time":"20:00","party_size":2}`
			}
			rec := serve(h.Create, http.MethodPost, "/v1/reservations", "/v1/reservations", body)
			assert.Equal(t, tc.status, rec.Code)
			m := decode(t, rec)
			assert.Equal(t, false, m["success"])
			assert.Equal(t, tc.reason, m["reason"])
			assert.NotEmpty(t, m["error"])
		})
	}
}

func TestCancelReservation(t *testing.T) {
	fr := &fakeReservations{res: &model.Reservation{ID: 4, Status: model.StatusCancelled}}
	h := NewReservationHandler(fr, nil)
	rec := serve(h.Cancel, http.MethodDelete, "/v1/reservations/:id", "/v1/reservations/4", `{"phone":"+34600111222"}`, "id", "4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"reservation cancelled","reservation_id":4}`, rec.Body.String())
	assert.Equal(t, "+34600111222", fr.lastPhone)

	rec = serve(h.Cancel, http.MethodDelete, "/v1/reservations/:id", "/v1/reservations/4?phone=600111222", "", "id", "4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "600111222", fr.lastPhone)

	// Anonymous cancellation is refused before the service is reached.
	fr.lastPhone = ""
	rec = serve(h.Cancel, http.MethodDelete, "/v1/reservations/:id", "/v1/reservations/4", "", "id", "4")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
	assert.Empty(t, fr.lastPhone)

	h = NewReservationHandler(&fakeReservations{err: repository.ErrNotFound}, nil)
	rec = serve(h.Cancel, http.MethodDelete, "/v1/reservations/:id", "/v1/reservations/5", `{"phone":"+34699000000"}`, "id", "5")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h.Cancel, http.MethodDelete, "/v1/reservations/:id", "/v1/reservations/x", "", "id", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAvailability(t *testing.T) {
	av := &fakeAvailability{slots: []allocation.SlotOption{{Time: 20 * 60, ZoneID: 1, ZoneName: "Terrace", Kind: "table", Capacity: 2}}}
	h := NewAvailabilityHandler(av, &fakePlan{snap: testSnapshot()}, nil)

	rec := serve(h.GetAvailability, http.MethodGet, "/v1/availability", "/v1/availability?date=2025-06-01&party_size=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2025-06-01","party_size":2,"slots":[{"time":"20:00","zone_id":1,"zone_name":"Terrace","kind":"table","capacity":2}]}`, rec.Body.String())

	rec = serve(h.GetAvailability, http.MethodGet, "/v1/availability", "/v1/availability?date=2025-06-01&party_size=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.ListZones, http.MethodGet, "/v1/zones", "/v1/zones", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"zones":[{"id":1,"name":"Terrace","priority_order":0,"color":"#0a0"}]}`, rec.Body.String())

	h = NewAvailabilityHandler(av, &fakePlan{}, nil)
	rec = serve(h.ListZones, http.MethodGet, "/v1/zones", "/v1/zones", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminTableStatus(t *testing.T) {
	av := &fakeAvailability{}
	h := NewAdminHandler(&fakeReservations{}, av, &fakePlan{snap: testSnapshot()}, nil)

	rec := serve(h.TableStatus, http.MethodGet, "/v1/admin/tables/status",
		"/v1/admin/tables/status?date=2025-06-01&time=19:30&exclude_reservation_id=12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.TimeOfDay(19*60+30), av.gotAt)
	assert.Equal(t, uint64(12), av.gotExclude)
	m := decode(t, rec)
	assert.Equal(t, "19:30", m["time"])

	rec = serve(h.TableStatus, http.MethodGet, "/v1/admin/tables/status", "/v1/admin/tables/status?date=2025-06-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReservationEndpoints(t *testing.T) {
	res := &model.Reservation{ID: 3, Date: "2025-06-01", Time: 20 * 60, PartySize: 2, Status: model.StatusArrived, TableIDs: []uint64{1}}
	svc := &fakeReservations{res: res}
	h := NewAdminHandler(svc, &fakeAvailability{}, &fakePlan{snap: testSnapshot()}, nil)

	rec := serve(h.UpdateStatus, http.MethodPatch, "/v1/admin/reservations/:id/status", "/v1/admin/reservations/3/status",
		`{"status":"arrived"}`, "id", "3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "arrived", svc.lastStatus)
	assert.Equal(t, "arrived", decode(t, rec)["status"])

	rec = serve(h.ReassignTables, http.MethodPut, "/v1/admin/reservations/:id/tables", "/v1/admin/reservations/3/tables",
		`{"table_ids":[1,2]}`, "id", "3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{1, 2}, svc.lastTables)

	rec = serve(h.GetReservation, http.MethodGet, "/v1/admin/reservations/:id", "/v1/admin/reservations/3", "", "id", "3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20:00", decode(t, rec)["time"])

	rec = serve(h.ListReservations, http.MethodGet, "/v1/admin/reservations", "/v1/admin/reservations?date=2025-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["reservations"], 1)

	svc.err = &service.PolicyError{Reason: service.ReasonTableOccupied, Message: "table T2 is occupied", Err: service.ErrTableOccupied}
	rec = serve(h.ReassignTables, http.MethodPut, "/v1/admin/reservations/:id/tables", "/v1/admin/reservations/3/tables",
		`{"table_ids":[2]}`, "id", "3")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"table T2 is occupied","reason":"table_occupied"}`, rec.Body.String())
}

func TestAdminFloorPlan(t *testing.T) {
	plan := &fakePlan{snap: testSnapshot()}
	h := NewAdminHandler(&fakeReservations{}, &fakeAvailability{}, plan, nil)

	rec := serve(h.FloorPlan, http.MethodGet, "/v1/admin/floorplan", "/v1/admin/floorplan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var v floorPlanView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Len(t, v.Zones, 1)
	assert.Len(t, v.Tables, 2)
	require.Len(t, v.Combinations, 1)
	assert.Equal(t, []uint64{1, 2}, v.Combinations[0].TableIDs)

	rec = serve(h.ReloadFloorPlan, http.MethodPost, "/v1/admin/floorplan/reload", "/v1/admin/floorplan/reload", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, plan.reloaded)
}

type fakeAuth struct{ err error }

func (f fakeAuth) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.LoginResult{
		User:  &model.StaffUser{ID: 1, Email: email, Role: model.RoleAdmin},
		Token: utils.AccessToken{Token: "tok", Exp: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
	}, nil
}

func TestLogin(t *testing.T) {
	h := NewAuthHandler(fakeAuth{}, nil)
	rec := serve(h.Login, http.MethodPost, "/v1/auth/login", "/v1/auth/login", `{"email":"a@b.c","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"staff":{"id":1,"email":"a@b.c","role":"ADMIN"},"access":{"token":"tok","expires":"2025-06-01T10:00:00Z"}}`, rec.Body.String())

	h = NewAuthHandler(fakeAuth{err: service.ErrInvalidCredentials}, nil)
	rec = serve(h.Login, http.MethodPost, "/v1/auth/login", "/v1/auth/login", `{"email":"a@b.c","password":"no"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec := serve(Health(pinger{}), http.MethodGet, "/healthz", "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(Health(pinger{err: errors.New("down")}), http.MethodGet, "/healthz", "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
