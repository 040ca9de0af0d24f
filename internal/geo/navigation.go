package geo

import (
	"errors"
	"fmt"
	"strconv"
)

// NavApp: внешнее приложение навигации.
type NavApp string

const (
	NavGoogleMaps NavApp = "google"
	NavWaze       NavApp = "waze"
)

// ErrUnknownNavApp: неизвестное приложение навигации.
var ErrUnknownNavApp = errors.New("unknown navigation app")

// NavigationURL возвращает ссылку, открывающую маршрут до точки в выбранном приложении.
func NavigationURL(app NavApp, p Point) (string, error) {
	lat := strconv.FormatFloat(p.Lat, 'f', -1, 64)
	lng := strconv.FormatFloat(p.Lng, 'f', -1, 64)

	switch app {
	case NavGoogleMaps:
		return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s,%s", lat, lng), nil
	case NavWaze:
		return fmt.Sprintf("https://waze.com/ul?ll=%s,%s&navigate=yes", lat, lng), nil
	default:
		return "", ErrUnknownNavApp
	}
}
