package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// SessionKind: вариант сессии.
type SessionKind string

const (
	// SessionPersisted: сессия, опирающаяся на строку profiles.
	SessionPersisted SessionKind = "persisted"
	// SessionEphemeral: администратор из реестра без строки profiles.
	SessionEphemeral SessionKind = "ephemeral"
)

// AdminIDPrefix: префикс id синтезированного администратора.
const AdminIDPrefix = "admin-"

// ErrInvalidSession: снимок сессии не удалось разобрать.
var ErrInvalidSession = errors.New("invalid session snapshot")

// Session: снимок аутентифицированного пользователя.
// IsRealAdmin вычисляется из username и реестра администраторов;
// ViewForcedAsUser только скрывает админские вкладки, но не повышает права.
type Session struct {
	Kind             SessionKind `json:"kind"`
	Profile          Profile     `json:"profile"`
	IsRealAdmin      bool        `json:"is_real_admin"`
	ViewForcedAsUser bool        `json:"view_forced_as_user"`
}

// Persisted: сессия опирается на реальную строку профиля.
func (s Session) Persisted() bool {
	return s.Kind == SessionPersisted
}

// AdminAuthorized: админские операции разрешены.
func (s Session) AdminAuthorized() bool {
	return s.IsRealAdmin && !s.ViewForcedAsUser
}

// MarshalSession сериализует сессию для долговременного хранилища.
func MarshalSession(s Session) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSession разбирает сохранённый снимок.
// Снимки без поля kind классифицируются по префиксу id.
func UnmarshalSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, errors.Join(ErrInvalidSession, err)
	}

	if s.Profile.ID == "" || s.Profile.Username == "" {
		return Session{}, ErrInvalidSession
	}

	switch s.Kind {
	case SessionPersisted, SessionEphemeral:
	case "":
		if strings.HasPrefix(s.Profile.ID, AdminIDPrefix) {
			s.Kind = SessionEphemeral
		} else {
			s.Kind = SessionPersisted
		}
	default:
		return Session{}, ErrInvalidSession
	}

	return s, nil
}
