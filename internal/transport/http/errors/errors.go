// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку действия (обёрнутые sentinel-ошибки ядра),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - стабильный машинный код;
//   - единственное локализованное сообщение, то же, что видит пользователь в интерфейсе.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/cache"
	"github.com/haroldove90-spec/Cowele/internal/geolocation"
	"github.com/haroldove90-spec/Cowele/internal/router"
	"github.com/haroldove90-spec/Cowele/internal/service"
	"github.com/haroldove90-spec/Cowele/internal/session"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrInvalidRequest: тело или параметры запроса не прошли разбор/валидацию.
	ErrInvalidRequest = stderrors.New("invalid request")
	// ErrInternal: обработчик упал (паника); клиент видит общее сообщение.
	ErrInternal = stderrors.New("internal")
)

// APIError: единый формат для фронта.
// Code: короткий стабильный код для машиночитаемой обработки на FE.
// Message: локализованное сообщение для пользователя.
// RequestID: прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse: корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type kind struct {
	target error
	status int
	code   string
}

// kinds: таблица "sentinel -> HTTP". Порядок важен: первая совпавшая запись выигрывает.
var kinds = []kind{
	{session.ErrAuthDenied, http.StatusUnauthorized, "auth_denied"},
	{session.ErrAccountBlocked, http.StatusForbidden, "account_blocked"},
	{session.ErrUserExists, http.StatusConflict, "already_exists"},
	{session.ErrIncompleteForm, http.StatusBadRequest, "incomplete_form"},
	{service.ErrIncompleteForm, http.StatusBadRequest, "incomplete_form"},
	{service.ErrAdminForbidden, http.StatusForbidden, "admin_forbidden"},
	{service.ErrUploadFailure, http.StatusBadGateway, "upload_failure"},
	{service.ErrBusy, http.StatusConflict, "busy"},
	{service.ErrConfirmationRequired, http.StatusPreconditionRequired, "confirmation_required"},
	{service.ErrForbidden, http.StatusForbidden, "permission_denied"},
	{router.ErrForbiddenTab, http.StatusForbidden, "permission_denied"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{session.ErrNotLoggedIn, http.StatusUnauthorized, "unauthenticated"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{cache.ErrUnknownPlace, http.StatusNotFound, "not_found"},
	{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{router.ErrUnknownTab, http.StatusBadRequest, "invalid_argument"},
	{ErrInvalidRequest, http.StatusBadRequest, "invalid_argument"},
	{geolocation.ErrInvalidPosition, http.StatusBadRequest, "invalid_argument"},
	{geolocation.ErrAlreadyReported, http.StatusConflict, "already_reported"},
	{geolocation.ErrUnavailable, http.StatusServiceUnavailable, "location_unavailable"},
	{service.ErrNetworkFailure, http.StatusServiceUnavailable, "unavailable"},
	{session.ErrNetworkFailure, http.StatusServiceUnavailable, "unavailable"},
	{context.Canceled, StatusClientClosedRequest, "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
}

// ToHTTP конвертирует ошибку действия в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - err оборачивает известную sentinel-ошибку - статус и код из таблицы kinds,
//     сообщение из app.Alert.
//   - прочее - 500/internal с общим сообщением (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{
			Error: APIError{
				Code:    "internal",
				Message: app.Alert(stderrors.New("internal")),
			},
		}
	}

	for _, k := range kinds {
		if stderrors.Is(err, k.target) {
			return k.status, ErrorResponse{
				Error: APIError{
					Code:    k.code,
					Message: app.Alert(err),
				},
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: app.Alert(err),
		},
	}
}

// WriteError: хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
