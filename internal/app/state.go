package app

import (
	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/regform"
	"github.com/haroldove90-spec/Cowele/internal/router"
)

// PlaceView: место с расстоянием до пользователя (если позиция известна).
type PlaceView struct {
	models.Place
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// State: снимок для презентационного слоя.
type State struct {
	LoggedIn        bool            `json:"logged_in"`
	Session         *models.Session `json:"session,omitempty"`
	AdminAuthorized bool            `json:"admin_authorized"`
	Tab             router.Tab      `json:"tab"`
	Tabs            []router.Tab    `json:"tabs"`
	Selected        *PlaceView      `json:"selected,omitempty"`
	Submitting      bool            `json:"submitting"`
	NewlyCreatedID  string          `json:"newly_created_id,omitempty"`
	Form            regform.Fields  `json:"form"`
	Branding        Branding        `json:"branding"`
	Location        *geo.Point      `json:"location,omitempty"`
	ManualFit       uint64          `json:"manual_fit"`
}

// State возвращает снимок состояния. Пароль в снимок не попадает.
func (a *App) State() State {
	st := State{
		Tab:        a.router.Active(),
		Submitting: a.svc.Submitting(),
		Form:       a.form.Fields(),
		Branding:   a.branding,
		ManualFit:  a.mapc.ManualFitCount(),
	}

	if sess, ok := a.sessions.Current(); ok {
		sess.Profile.Password = ""
		st.LoggedIn = true
		st.Session = &sess
		st.AdminAuthorized = sess.AdminAuthorized()
	}

	st.Tabs = router.Visible(st.AdminAuthorized)

	if p, ok := a.Location(); ok {
		st.Location = &p
	}

	if sel, ok := a.cache.Selected(); ok {
		v := a.view(sel)
		st.Selected = &v
	}

	a.stateMu.RLock()
	st.NewlyCreatedID = a.ack
	a.stateMu.RUnlock()

	return st
}

func (a *App) view(p models.Place) PlaceView {
	v := PlaceView{Place: p}

	if loc, ok := a.Location(); ok {
		place := geo.Point{Lat: p.Lat, Lng: p.Lng}
		if geo.Valid(place) {
			d := geo.Distance(loc, place)
			v.DistanceKm = &d
		}
	}

	return v
}
