// geo работает с координатами и расстояниями: разбор строки "lat, lng", форматирование
// обратно в строку, haversine и ссылки на внешнюю навигацию.
//
// Все функции тотальные и без побочных эффектов.
package geo

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// earthRadiusKm: радиус Земли для haversine.
const earthRadiusKm = 6371.0

// Point: пара координат в градусах.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CityCenter: центр города по умолчанию (San Luis Potosí).
// Переопределяется конфигом через SetCityCenter при старте процесса.
var cityCenter = Point{Lat: 22.1522, Lng: -100.9740}

// CityCenter возвращает текущий центр города.
func CityCenter() Point { return cityCenter }

// SetCityCenter заменяет центр города. Вызывается один раз из main до старта приложения.
func SetCityCenter(p Point) {
	if Valid(p) {
		cityCenter = p
	}
}

var separators = regexp.MustCompile(`[,\s]+`)

// ParseCoords разбирает строку вида "lat, lng".
// Разделители: любые последовательности запятых и пробельных символов;
// берутся первые два конечных числа. Если чисел меньше двух: возвращается центр города.
func ParseCoords(s string) Point {
	parts := separators.Split(strings.TrimSpace(s), -1)

	nums := make([]float64, 0, 2)
	for _, p := range parts {
		if p == "" {
			continue
		}

		v, ok := parseLeadingFloat(p)
		if !ok {
			continue
		}

		nums = append(nums, v)
		if len(nums) == 2 {
			return Point{Lat: nums[0], Lng: nums[1]}
		}
	}

	return cityCenter
}

// leadingFloat: самый длинный префикс токена, похожий на десятичное число.
var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingFloat ведёт себя как parseFloat в браузере: "22.15abc" -> 22.15.
func parseLeadingFloat(tok string) (float64, bool) {
	m := leadingFloat.FindString(tok)
	if m == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// FormatCoords формирует строку "lat, lng" в кратчайшем точном представлении.
// ParseCoords(FormatCoords(p)) == p для любых конечных координат.
func FormatCoords(p Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// FormatCoordsFixed формирует "lat, lng" с фиксированным числом знаков после запятой.
func FormatCoordsFixed(p Point, digits int) string {
	return strconv.FormatFloat(p.Lat, 'f', digits, 64) + ", " + strconv.FormatFloat(p.Lng, 'f', digits, 64)
}

// Round округляет значение до digits знаков после запятой.
func Round(v float64, digits int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', digits, 64), 64)
	if err != nil {
		return v
	}

	return r
}

// Valid: обе координаты конечные числа.
func Valid(p Point) bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Distance: расстояние по большому кругу (haversine), в километрах.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
