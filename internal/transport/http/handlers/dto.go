package handlers

import (
	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/regform"
)

// Пустые поля логина/регистрации не отсекаются валидатором:
// ядро само отвечает ACCESO DENEGADO / Datos incompletos.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type viewToggleResponse struct {
	State  app.State `json:"state"`
	Notice string    `json:"notice"`
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	Review  models.Review `json:"review"`
	Awarded bool          `json:"awarded"`
	Points  int           `json:"points,omitempty"`
	Notice  string        `json:"notice"`
}

type navigateQuery struct {
	App string `validate:"required,oneof=google waze"`
}

type navigateResponse struct {
	URL string `json:"url"`
}

type formPatch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Coords  *string `json:"coords"`
}

func (p formPatch) toPatch() regform.Patch {
	return regform.Patch{Name: p.Name, Address: p.Address, Coords: p.Coords}
}

type submitResponse struct {
	ID   string         `json:"id"`
	Form regform.Fields `json:"form"`
}

type pointRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

func (p pointRequest) point() geo.Point {
	return geo.Point{Lat: *p.Lat, Lng: *p.Lng}
}

type zoomRequest struct {
	Zoom int `json:"zoom" validate:"min=0,max=22"`
}

type fitResponse struct {
	ManualFit uint64 `json:"manual_fit"`
}

type profileRequest struct {
	FullName  string `json:"full_name"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
}

type profileResponse struct {
	Profile models.Profile `json:"profile"`
	Notice  string         `json:"notice"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type statusResponse struct {
	Status models.ProfileStatus `json:"status"`
}
