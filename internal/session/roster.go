package session

import (
	"crypto/subtle"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Admin: запись фиксированного реестра администраторов.
type Admin struct {
	Username     string
	DisplayName  string
	password     string
	passwordHash string
}

// Roster: фиксированный реестр администраторов.
// Принадлежность к реестру: чистая функция от username.
type Roster struct {
	admins map[string]Admin
}

// NewRoster строит реестр из конфигурации. Usernames приводятся к нижнему регистру.
func NewRoster(entries []config.AdminConfig) *Roster {
	r := &Roster{admins: make(map[string]Admin, len(entries))}

	for _, e := range entries {
		username := normalizeUsername(e.Username)
		if username == "" {
			continue
		}

		display := e.DisplayName
		if display == "" {
			display = username
		}

		r.admins[username] = Admin{
			Username:     username,
			DisplayName:  display,
			password:     e.Password,
			passwordHash: e.PasswordHash,
		}
	}

	return r
}

// IsAdmin сообщает, входит ли username в реестр.
func (r *Roster) IsAdmin(username string) bool {
	_, ok := r.admins[normalizeUsername(username)]
	return ok
}

// Verify проверяет пару (username, password) по реестру.
// Если у записи задан bcrypt-хэш, сравнение идёт по нему, иначе: по открытому паролю.
func (r *Roster) Verify(username, password string) (Admin, bool) {
	a, ok := r.admins[normalizeUsername(username)]
	if !ok {
		return Admin{}, false
	}

	if a.passwordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) != nil {
			return Admin{}, false
		}

		return a, true
	}

	if subtle.ConstantTimeCompare([]byte(a.password), []byte(password)) != 1 {
		return Admin{}, false
	}

	return a, true
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
