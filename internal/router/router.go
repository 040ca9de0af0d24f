// router реализует маршрутизатор вкладок: токены, админский доступ, вкладка после входа.
package router

import (
	"errors"
	"fmt"
	"sync"
)

// Tab: токен вкладки.
type Tab string

const (
	TabExplore     Tab = "explore"
	TabRegister    Tab = "register"
	TabReviewsFeed Tab = "reviews_feed"
	TabProfile     Tab = "profile"
	TabDashboard   Tab = "dashboard"
	TabAdmin       Tab = "admin"
	TabUsers       Tab = "users"
)

var (
	// ErrUnknownTab: токен не входит в набор вкладок.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrForbiddenTab: админская вкладка без прав администратора.
	ErrForbiddenTab = errors.New("tab requires admin authority")
)

var (
	userTabs  = []Tab{TabExplore, TabRegister, TabReviewsFeed, TabProfile}
	adminTabs = []Tab{TabDashboard, TabAdmin, TabUsers}
)

// Parse проверяет токен.
func Parse(s string) (Tab, error) {
	t := Tab(s)
	if !t.Known() {
		return "", fmt.Errorf("router/Parse: %w: %q", ErrUnknownTab, s)
	}

	return t, nil
}

// Known: токен входит в набор вкладок.
func (t Tab) Known() bool {
	for _, u := range userTabs {
		if t == u {
			return true
		}
	}

	return t.AdminOnly()
}

// AdminOnly: вкладка доступна только администратору.
func (t Tab) AdminOnly() bool {
	for _, a := range adminTabs {
		if t == a {
			return true
		}
	}

	return false
}

// Visible: вкладки навигации для данного уровня прав.
func Visible(adminAuthorized bool) []Tab {
	out := append([]Tab(nil), userTabs...)
	if adminAuthorized {
		out = append(out, adminTabs...)
	}

	return out
}

// Landing: вкладка после входа или восстановления сессии.
func Landing(realAdmin bool) Tab {
	if realAdmin {
		return TabDashboard
	}

	return TabExplore
}

// Router хранит активную вкладку. Вкладка живёт только в памяти.
type Router struct {
	mu     sync.RWMutex
	active Tab
}

// New создаёт маршрутизатор на вкладке explore.
func New() *Router {
	return &Router{active: TabExplore}
}

// Active: текущая вкладка.
func (r *Router) Active() Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Switch переключает вкладку. Админская вкладка без прав отклоняется.
// Возвращает true, если вкладка действительно сменилась.
func (r *Router) Switch(t Tab, adminAuthorized bool) (bool, error) {
	const op = "router/Switch"

	if !t.Known() {
		return false, fmt.Errorf("%s: %w: %q", op, ErrUnknownTab, string(t))
	}

	if t.AdminOnly() && !adminAuthorized {
		return false, fmt.Errorf("%s: %w: %q", op, ErrForbiddenTab, string(t))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	changed := r.active != t
	r.active = t

	return changed, nil
}

// Reset ставит вкладку без проверки прав (выход, вход, восстановление).
func (r *Router) Reset(t Tab) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = t
}

// Demote уводит с админской вкладки на explore, если права пропали.
// Возвращает true, если вкладка сменилась.
func (r *Router) Demote(adminAuthorized bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adminAuthorized || !r.active.AdminOnly() {
		return false
	}

	r.active = TabExplore

	return true
}
