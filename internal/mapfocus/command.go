package mapfocus

import (
	"time"

	"github.com/haroldove90-spec/Cowele/internal/geo"
)

// Kind: тип команды карты.
type Kind string

const (
	KindInvalidateSize Kind = "invalidate_size"
	KindFitBounds      Kind = "fit_bounds"
	KindFlyTo          Kind = "fly_to"
	KindSetView        Kind = "set_view"
	KindPanTo          Kind = "pan_to"
	KindShowUserMarker Kind = "show_user_marker"
)

// Target: карта, которой адресована команда.
type Target string

const (
	TargetMain   Target = "main"
	TargetPicker Target = "picker"
)

// Параметры команд основной карты.
const (
	FitPadding     = 80
	FitMaxZoom     = 16
	FlyToZoom      = 18
	FlyToDuration  = 1200 * time.Millisecond
	EmptyFitZoom   = 14
	PickerZoom     = 18
	UserRadiusKm   = 5.0
	clickPrecision = 10
)

// Command: команда адаптеру карты.
type Command struct {
	Seq      uint64      `json:"seq"`
	Kind     Kind        `json:"kind"`
	Target   Target      `json:"target"`
	Points   []geo.Point `json:"points,omitempty"`
	Point    *geo.Point  `json:"point,omitempty"`
	Zoom     int         `json:"zoom,omitempty"`
	MaxZoom  int         `json:"max_zoom,omitempty"`
	Padding  int         `json:"padding,omitempty"`
	Animate  bool        `json:"animate,omitempty"`
	Duration float64     `json:"duration_s,omitempty"`
	RadiusKm float64     `json:"radius_km,omitempty"`
	PlaceID  string      `json:"place_id,omitempty"`
}
