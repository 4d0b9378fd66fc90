package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/auth"
	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/cep"
	redisclient "github.com/hackgods/clinidesk/internal/redis"
	"github.com/hackgods/clinidesk/internal/registration"
	"github.com/hackgods/clinidesk/internal/schedule"
)

var testNow = time.Date(2024, 5, 6, 9, 7, 0, 0, time.UTC)

func token(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	issued := token(t, "42:health_professional", testNow.Add(time.Hour))

	r := chi.NewRouter()
	r.Post("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		writeJSON(w, http.StatusOK, backend.TokenResponse{
			AccessToken: issued,
			TokenType:   "bearer",
			UserType:    "health_professional",
			UserID:      "42",
		})
	})
	r.Post("/auth/test-token/", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte("backend-secret"), nil },
			jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		sub, _ := parsed.Claims.GetSubject()
		id, kind, _ := strings.Cut(sub, ":")
		writeJSON(w, http.StatusOK, backend.UserData{UserID: id, UserType: kind, Username: "dr.ana", Email: "ana@example.com"})
	})
	r.Get("/health-professionals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backend.HealthProfessionalPage{Total: 1, Page: 1, Size: 100, Items: []backend.HealthProfessional{{ID: "p1"}}})
	})
	r.Get("/clinics/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	r.Post("/clinics/", func(w http.ResponseWriter, r *http.Request) {
		var in backend.ClinicInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, backend.Clinic{ID: "c1", ClinicInput: in})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func fakeViaCEP(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws/01001000/json/" {
			_, _ = w.Write([]byte(`{"logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`))
			return
		}
		_, _ = w.Write([]byte(`{"erro":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testServer struct {
	handler http.Handler
	store   *schedule.MemoryStore
	pro     string
	clinic  string
}

func newTestServer(t *testing.T, deps ...Dependency) *testServer {
	t.Helper()
	log := zap.NewNop()
	store := schedule.NewMemoryStore(schedule.DemoCatalog(), false)

	client := backend.NewClient(fakeBackend(t).URL, nil, log)
	via := fakeViaCEP(t)
	lookup := cep.NewClient(via.URL, via.Client(), log)
	clock := func() time.Time { return testNow }

	handler := NewRouter(RouterConfig{
		Schedule:       schedule.NewService(store, redisclient.NewLocalLocker(), log, schedule.WithClock(clock)),
		Registration:   registration.NewService(client, lookup, registration.NewValidator(clock), log),
		Backend:        client,
		Health:         NewHealthHandler("test", "v0", deps...),
		Log:            log,
		LoginRateLimit: 100,
		Verifier:       auth.NewRemoteVerifier(client, clock, log),
	})

	return &testServer{
		handler: handler,
		store:   store,
		pro:     token(t, "42:health_professional", testNow.Add(time.Hour)),
		clinic:  token(t, "7:clinic", testNow.Add(time.Hour)),
	}
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	down := func(context.Context) error { return errors.New("down") }
	up := func(context.Context) error { return nil }

	t.Run("live", func(t *testing.T) {
		rec := newTestServer(t).do(t, http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("optional dependency down degrades", func(t *testing.T) {
		srv := newTestServer(t, Dependency{Name: "postgres", Critical: true, Ping: up}, Dependency{Name: "redis", Ping: down})
		rec := srv.do(t, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ReadinessResponse](t, rec)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "ok", "redis": "down"}, resp.Dependencies)
	})

	t.Run("critical dependency down", func(t *testing.T) {
		srv := newTestServer(t, Dependency{Name: "postgres", Critical: true, Ping: down})
		rec := srv.do(t, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "dr.ana", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[LoginResponse](t, rec)
	assert.Equal(t, "42", resp.UserID)
	assert.Equal(t, "/dashboard/professional", resp.HomePath)
	assert.NotEmpty(t, resp.AccessToken)

	rec = srv.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Username: "dr.ana", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect username or password", decode[ErrorResponse](t, rec).Details)

	rec = srv.do(t, http.MethodPost, "/auth/login", "", LoginRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "username")
}

func TestAuthGuards(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/calendar/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/calendar/events", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired := token(t, "42:health_professional", testNow.Add(-time.Minute))
	rec = srv.do(t, http.MethodGet, "/calendar/events", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_expired", decode[ErrorResponse](t, rec).Error)

	rec = srv.do(t, http.MethodGet, "/calendar/events", srv.clinic, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/dashboard/clinic/professionals", srv.pro, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRejectsForgedTokens(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/editor/open", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPatch, "/editor", srv.pro, map[string]any{"patient_id": "1", "payer": "private"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/editor/save", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	claims := jwt.MapClaims{"sub": "42:health_professional", "exp": testNow.Add(time.Hour).Unix()}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("guessed"))
	require.NoError(t, err)

	for name, tok := range map[string]string{"unsigned": unsigned, "wrong key": wrongKey} {
		t.Run(name, func(t *testing.T) {
			rec := srv.do(t, http.MethodGet, "/calendar/events", tok, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "invalid_token", decode[ErrorResponse](t, rec).Error)
		})
	}

	rec = srv.do(t, http.MethodGet, "/calendar/events", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]schedule.WidgetEvent](t, rec), 1)
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/dashboard", srv.clinic, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dashboard/clinic", decode[DashboardResponse](t, rec).HomePath)

	rec = srv.do(t, http.MethodGet, "/dashboard/clinic/professionals", srv.clinic, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[backend.HealthProfessionalPage](t, rec).Total)

	rec = srv.do(t, http.MethodGet, "/dashboard/professional/clinics", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/auth/me", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[MeResponse](t, rec)
	assert.Equal(t, "dr.ana", me.Username)
	assert.Equal(t, "/dashboard/professional", me.HomePath)
}

func TestEditorFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/editor/open", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decode[schedule.EditorState](t, rec)
	assert.True(t, state.IsNew)
	assert.True(t, state.Draft.Start.Equal(time.Date(2024, 5, 6, 9, 15, 0, 0, time.UTC)))

	rec = srv.do(t, http.MethodPost, "/editor/save", srv.pro, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(t, http.MethodPatch, "/editor", srv.pro, map[string]any{"patient_id": "1", "payer": "private", "duration": 45})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state = decode[schedule.EditorState](t, rec)
	assert.Equal(t, "Consulta - João Silva", state.Draft.Title)
	assert.Equal(t, 45, state.Duration)

	rec = srv.do(t, http.MethodPatch, "/editor", srv.pro, map[string]any{"duration": 20})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/editor/save", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[schedule.Event](t, rec)
	assert.False(t, saved.ID.IsDraft())
	assert.Equal(t, 45*time.Minute, saved.Duration())

	rec = srv.do(t, http.MethodGet, "/calendar/events", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]schedule.WidgetEvent](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, saved.ID.String(), events[0].ID)
	assert.True(t, events[0].ExtendedProps.IsPrivate)

	rec = srv.do(t, http.MethodGet, "/calendar/stats", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[schedule.Snapshot](t, rec)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Private)
	assert.Equal(t, 1, stats.Today)

	stored, err := srv.store.LoadEvents(context.Background(), "42")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	rec = srv.do(t, http.MethodPost, "/editor/open", srv.pro, map[string]any{"id": saved.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = srv.do(t, http.MethodPost, "/editor/delete", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[DeleteResponse](t, rec).Removed)

	rec = srv.do(t, http.MethodPost, "/editor/close", srv.pro, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, http.MethodGet, "/editor", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[schedule.EditorState](t, rec).Open)
}

func TestCalendarIntents(t *testing.T) {
	srv := newTestServer(t)
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	existing := schedule.Event{
		ID: schedule.PersistedID("a"), Title: "Consulta - Ana Pereira",
		Start: start, End: start.Add(time.Hour), Status: schedule.StatusConfirmed,
	}
	require.NoError(t, srv.store.UpsertEvent(context.Background(), "42", existing))

	rec := srv.do(t, http.MethodPost, "/calendar/select", srv.pro, schedule.Range{Start: start.Add(10 * time.Hour), End: start.Add(11 * time.Hour)})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "outside_work_hours", decode[ErrorResponse](t, rec).Error)

	rec = srv.do(t, http.MethodPost, "/calendar/select", srv.pro, schedule.Range{Start: start.Add(4 * time.Hour), End: start.Add(5 * time.Hour)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 60, decode[schedule.EditorState](t, rec).Duration)

	rec = srv.do(t, http.MethodPost, "/calendar/events/a/click", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schedule.PersistedID("a"), decode[schedule.EditorState](t, rec).Draft.ID)

	rec = srv.do(t, http.MethodPost, "/calendar/events/new-/click", srv.pro, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/calendar/events/zzz/click", srv.pro, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/calendar/events/a/drop", srv.pro, schedule.Range{Start: start.Add(2 * time.Hour), End: start.Add(2*time.Hour + 50*time.Minute)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[schedule.WidgetEvent](t, rec)
	assert.True(t, moved.End.Equal(start.Add(2*time.Hour+50*time.Minute)))

	rec = srv.do(t, http.MethodPost, "/calendar/events/a/resize", srv.pro, schedule.Range{Start: start, End: start.Add(-time.Hour)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/calendar/events/a/resize", srv.pro, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/calendar/lookups", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[schedule.Catalog](t, rec).AppointmentTypes, 4)
}

func TestWorkHoursEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPut, "/work-hours", srv.pro, map[string]any{"start_time": "25:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "start_time")

	rec = srv.do(t, http.MethodPut, "/work-hours", srv.pro, map[string]any{"start_time": "7:00", "end_time": "19:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "07:00", decode[schedule.WorkHours](t, rec).StartTime)

	rec = srv.do(t, http.MethodPost, "/work-hours/days/0", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, decode[schedule.WorkHours](t, rec).DaysOfWeek)

	rec = srv.do(t, http.MethodPost, "/work-hours/days/9", srv.pro, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/calendar/options", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	opts := decode[schedule.WidgetOptions](t, rec)
	assert.True(t, opts.Weekends)
	assert.Equal(t, "19:00", opts.SlotMaxTime)

	rec = srv.do(t, http.MethodGet, "/work-hours", srv.pro, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "07:00", decode[schedule.WorkHours](t, rec).StartTime)
}

func TestRegistrationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/register/clinic", "", registration.ClinicForm{TradeName: "V", CNPJ: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[ErrorResponse](t, rec).Fields
	assert.Contains(t, fields, "trade_name")
	assert.Contains(t, fields, "cnpj")

	rec = srv.do(t, http.MethodPost, "/register/clinic", "", registration.ClinicForm{
		TradeName:   "Clínica Vida",
		LegalName:   "Vida Serviços Médicos LTDA",
		CNPJ:        "11.222.333/0001-81",
		Address:     "Praça da Sé, 100",
		ZipCode:     "01001-000",
		PhoneNumber: "11987654321",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "11222333000181", decode[backend.Clinic](t, rec).CNPJ)
}

func TestCEPEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/cep/01001-000?number=100", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fill := decode[registration.Autofill](t, rec)
	assert.Equal(t, "Praça da Sé, 100 - Sé, São Paulo - SP", fill.FullAddress)

	rec = srv.do(t, http.MethodGet, "/cep/01001000?number=100&sem_numero=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[registration.Autofill](t, rec).FullAddress, "S/N")

	rec = srv.do(t, http.MethodGet, "/cep/99999999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CEP não encontrado", decode[ErrorResponse](t, rec).Details)

	rec = srv.do(t, http.MethodGet, "/cep/123", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
