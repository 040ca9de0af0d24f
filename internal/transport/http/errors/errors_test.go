package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haroldove90-spec/Cowele/internal/router"
	"github.com/haroldove90-spec/Cowele/internal/service"
	"github.com/haroldove90-spec/Cowele/internal/session"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_KindMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"auth_denied", session.ErrAuthDenied, http.StatusUnauthorized, "auth_denied", "⚠️ ACCESO DENEGADO."},
		{"blocked", session.ErrAccountBlocked, http.StatusForbidden, "account_blocked", "🚫 CUENTA BLOQUEADA."},
		{"exists", session.ErrUserExists, http.StatusConflict, "already_exists", "⚠️ El usuario ya existe."},
		{"incomplete", service.ErrIncompleteForm, http.StatusBadRequest, "incomplete_form", "⚠️ Datos incompletos."},
		{"busy", service.ErrBusy, http.StatusConflict, "busy", ""},
		{"confirm", service.ErrConfirmationRequired, http.StatusPreconditionRequired, "confirmation_required", ""},
		{"forbidden_tab", router.ErrForbiddenTab, http.StatusForbidden, "permission_denied", ""},
		{"not_logged_in", session.ErrNotLoggedIn, http.StatusUnauthorized, "unauthenticated", ""},
		{"not_found", service.ErrNotFound, http.StatusNotFound, "not_found", ""},
		{"invalid_request", ErrInvalidRequest, http.StatusBadRequest, "invalid_argument", ""},
		{"network", service.ErrNetworkFailure, http.StatusServiceUnavailable, "unavailable", ""},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled", ""},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", ""},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, "internal", "❌ Error."},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(fmt.Errorf("op: %w", tc.in))
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
			if tc.wantMsg != "" {
				require.Equal(t, tc.wantMsg, resp.Error.Message)
			}
		})
	}
}

func TestToHTTP_NetworkWinsOverCause(t *testing.T) {
	err := fmt.Errorf("service/CreatePlace: %w: %w", service.ErrNetworkFailure, context.DeadlineExceeded)

	gotStatus, resp := ToHTTP(err)
	require.Equal(t, http.StatusServiceUnavailable, gotStatus)
	require.Equal(t, "unavailable", resp.Error.Code)
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.NotEmpty(t, resp.Error.Message)
}

func TestWriteError_AddsRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()

	WriteError(rr, req, session.ErrAuthDenied)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "auth_denied", resp.Error.Code)
	require.Equal(t, "rid-1", resp.Error.RequestID)
}
