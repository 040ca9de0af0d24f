package app

import (
	"errors"

	"github.com/haroldove90-spec/Cowele/internal/cache"
	"github.com/haroldove90-spec/Cowele/internal/geolocation"
	"github.com/haroldove90-spec/Cowele/internal/router"
	"github.com/haroldove90-spec/Cowele/internal/service"
	"github.com/haroldove90-spec/Cowele/internal/session"
)

// Уведомления об успешных действиях.
const (
	NoticeReviewSaved    = "⭐ ¡Gracias por tu reseña! +10 XP"
	NoticeProfileUpdated = "✅ Perfil actualizado con éxito."
	NoticeViewAsUser     = "Simulando vista de Usuario Pro"
	NoticeAdminRestored  = "Modo Arquitecto Restaurado"
)

// Вопросы подтверждения деструктивных действий.
const (
	ConfirmDeletePlace = "¿Borrar?"
	ConfirmDeleteUser  = "¿Borrar usuario permanentemente?"
)

// Alert возвращает единственное локализованное сообщение для ошибки действия.
func Alert(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrAuthDenied):
		return "⚠️ ACCESO DENEGADO."
	case errors.Is(err, session.ErrAccountBlocked):
		return "🚫 CUENTA BLOQUEADA."
	case errors.Is(err, session.ErrUserExists):
		return "⚠️ El usuario ya existe."
	case errors.Is(err, session.ErrIncompleteForm), errors.Is(err, service.ErrIncompleteForm):
		return "⚠️ Datos incompletos."
	case errors.Is(err, service.ErrAdminForbidden):
		return "⚠️ Los administradores maestros deben gestionar datos vía configuración avanzada."
	case errors.Is(err, service.ErrUploadFailure):
		return "Error al subir imagen."
	case errors.Is(err, service.ErrBusy):
		return "⏳ Procesando..."
	case errors.Is(err, service.ErrConfirmationRequired):
		return "Confirma la operación para continuar."
	case errors.Is(err, service.ErrForbidden), errors.Is(err, router.ErrForbiddenTab):
		return "🚫 Solo administradores."
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, session.ErrNotLoggedIn):
		return "🔒 Inicia sesión para continuar."
	case errors.Is(err, service.ErrNotFound), errors.Is(err, cache.ErrUnknownPlace):
		return "⚠️ Registro no encontrado."
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, router.ErrUnknownTab):
		return "⚠️ Datos inválidos."
	case errors.Is(err, geolocation.ErrUnavailable),
		errors.Is(err, geolocation.ErrInvalidPosition),
		errors.Is(err, geolocation.ErrAlreadyReported):
		return "📍 Ubicación no disponible."
	case errors.Is(err, service.ErrNetworkFailure), errors.Is(err, session.ErrNetworkFailure):
		return "❌ Error de conexión. Intenta de nuevo."
	default:
		return "❌ Error."
	}
}
