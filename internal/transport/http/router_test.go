package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/config"
	"github.com/haroldove90-spec/Cowele/internal/mapfocus"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/haroldove90-spec/Cowele/internal/router"
	"github.com/haroldove90-spec/Cowele/internal/session"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/internal/storage/memory"
	"github.com/haroldove90-spec/Cowele/internal/transport/http/handlers"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

const testOrigin = "http://localhost:5173"

type testServer struct {
	srv     *httptest.Server
	store   *memory.Store
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	store := memory.New(clock)
	m := metrics.New(prometheus.NewRegistry())

	a := app.New(app.Deps{
		Store:        store,
		Objects:      memory.NewObjects("https://cdn.test/bathrooms"),
		KV:           memory.NewKV(),
		Roster:       session.NewRoster(config.DefaultAdmins()),
		Clock:        clock,
		Metrics:      m,
		Timings:      mapfocus.Timings{FitDelay: 600 * time.Millisecond, InvalidateInterval: 2 * time.Second, PickerSettle: 200 * time.Millisecond},
		DefaultPhoto: "https://cdn.test/default.jpg",
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	a.Start(ctx, nil, 0)

	h := NewRouter(handlers.New(a, m, []string{testOrigin}), Options{
		Metrics:     m,
		Timeouts:    config.TimeoutConfig{Service: 5 * time.Second, Upload: 10 * time.Second},
		BasePath:    "/api",
		CORSOrigins: []string{testOrigin},
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: store, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func (s *testServer) loginAdmin(t *testing.T) {
	t.Helper()

	resp := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "harold_anguiano", "password": "123_admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_DeniedAndAdmin(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "nobody", "password": "x"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	env := decode[apierrors.ErrorResponse](t, resp)
	require.Equal(t, "auth_denied", env.Error.Code)
	require.Equal(t, "⚠️ ACCESO DENEGADO.", env.Error.Message)
	require.Equal(t, resp.Header.Get("X-Request-Id"), env.Error.RequestID)

	resp = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "harold_anguiano", "password": "123_admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	st := decode[app.State](t, resp)
	require.True(t, st.LoggedIn)
	require.Equal(t, router.TabDashboard, st.Tab)
	require.Empty(t, st.Session.Profile.Password)
}

func TestLogin_UnknownFieldRejected(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "a", "password": "b", "role": "admin"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env := decode[apierrors.ErrorResponse](t, resp)
	require.Equal(t, "invalid_argument", env.Error.Code)
}

func TestSwitchTab(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPut, "/api/tabs/explore", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "ana", "password": "p", "full_name": "Ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/tabs/nowhere", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/tabs/admin", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/tabs/reviews_feed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, router.TabReviewsFeed, decode[app.State](t, resp).Tab)
}

func TestPlaces_ReviewNavigateDelete(t *testing.T) {
	s := newTestServer(t)

	_, err := s.store.CreatePlace(context.Background(), storage.NewPlace{Name: "Mercado", FullAddress: "Centro", Lat: 22.15, Lng: -100.97})
	require.NoError(t, err)

	s.loginAdmin(t)

	resp := s.do(t, http.MethodPost, "/api/places/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	places := decode[[]app.PlaceView](t, resp)
	require.Len(t, places, 1)
	id := places[0].ID

	resp = s.do(t, http.MethodGet, "/api/places?q=merc", nil)
	require.Len(t, decode[[]app.PlaceView](t, resp), 1)

	resp = s.do(t, http.MethodPost, "/api/places/"+id+"/reviews", map[string]any{"rating": 9, "comment": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/places/"+id+"/reviews", map[string]any{"rating": 4, "comment": "Limpio"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/places/"+id+"/navigate?app=waze", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(decode[map[string]string](t, resp)["url"], "https://waze.com/ul?ll="))

	resp = s.do(t, http.MethodGet, "/api/places/"+id+"/navigate?app=apple", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/places/"+id, nil)
	require.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/places/"+id+"?confirm=true", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/places/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestForm_PhotoUploadAndSubmit(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "ana", "password": "p", "full_name": "Ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "mi foto.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\xff\xd8\xff\xe0jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/form/photo", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	photoResp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer photoResp.Body.Close()
	require.Equal(t, http.StatusOK, photoResp.StatusCode)

	var form struct {
		Photo *string `json:"photo"`
	}
	require.NoError(t, json.NewDecoder(photoResp.Body).Decode(&form))
	require.NotNil(t, form.Photo)
	require.True(t, strings.HasSuffix(*form.Photo, "_mi_foto.jpg"))

	resp = s.do(t, http.MethodPatch, "/api/form", map[string]string{"name": "Baño", "address": "Calle 1", "coords": "22.15, -100.97"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/form/submit", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[map[string]any](t, resp)
	require.NotEmpty(t, out["id"])

	resp = s.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, out["id"], decode[app.State](t, resp).NewlyCreatedID)
}

func TestAdminEndpointsForbiddenForUsers(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "ana", "password": "p", "full_name": "Ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, path := range []string{"/api/profiles", "/api/dashboard"} {
		resp = s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	resp = s.do(t, http.MethodPatch, "/api/profiles/x/status", map[string]string{"status": "frozen"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMapStream_DeliversCommands(t *testing.T) {
	s := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/map/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(s.metrics.Subscribers) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp := s.do(t, http.MethodPost, "/api/map/fit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var kinds []mapfocus.Kind
	for len(kinds) < 2 {
		var cmd mapfocus.Command
		require.NoError(t, conn.ReadJSON(&cmd))
		kinds = append(kinds, cmd.Kind)

		if cmd.Kind == mapfocus.KindFlyTo {
			require.Equal(t, mapfocus.EmptyFitZoom, cmd.Zoom)
		}
	}

	require.Equal(t, []mapfocus.Kind{mapfocus.KindInvalidateSize, mapfocus.KindFlyTo}, kinds)
}

func TestMapStream_ChecksOrigin(t *testing.T) {
	s := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/map/stream"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"https://evil.test"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Nil(t, conn)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	conn, _, err = websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {testOrigin}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestDeviceLocation_NoPendingRequest(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/device/location", map[string]float64{"lat": 1, "lng": 2})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/device/location", map[string]float64{"lat": 1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
