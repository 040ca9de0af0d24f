// analytics строит проекцию панели администратора: KPI и два ряда за 7 дней.
// Чистые функции над списками кэша.
package analytics

import (
	"strings"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/models"
)

// Days: длина рядов.
const Days = 7

const dateLayout = "2006-01-02"

// Day: точка ряда.
// Bar: высота столбца в [0,1]: count / max(counts, 1).
type Day struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Bar   float64 `json:"bar"`
}

// Dashboard: KPI панели.
type Dashboard struct {
	TotalPlaces   int   `json:"total_places"`
	TodayPlaces   int   `json:"today_places"`
	TotalUsers    int   `json:"total_users"`
	TodayUsers    int   `json:"today_users"`
	TotalReviews  int   `json:"total_reviews"`
	XPDistributed int   `json:"xp_distributed"`
	PlacesByDay   []Day `json:"places_by_day"`
	UsersByDay    []Day `json:"users_by_day"`
}

// Project строит панель на момент now.
//
// "Сегодня": UTC-дата now. Дни ряда отсчитываются назад по календарю now.Location(),
// а затем тоже сравниваются по UTC-дате: на границе суток возможны расхождения в один день.
func Project(places []models.Place, profiles []models.Profile, reviews []models.Review, now time.Time) Dashboard {
	today := isoDate(now)

	d := Dashboard{
		TotalPlaces:  len(places),
		TotalUsers:   len(profiles),
		TotalReviews: len(reviews),
	}

	placeDates := make([]string, len(places))
	for i, p := range places {
		placeDates[i] = isoDate(p.LastReported)
	}

	userDates := make([]string, len(profiles))
	for i, p := range profiles {
		userDates[i] = isoDate(p.CreatedAt)
		d.XPDistributed += p.Points
	}

	d.TodayPlaces = countPrefix(placeDates, today)
	d.TodayUsers = countPrefix(userDates, today)

	days := lastDays(now)
	d.PlacesByDay = series(days, placeDates)
	d.UsersByDay = series(days, userDates)

	return d
}

// lastDays: UTC-даты последних Days локальных дней, по возрастанию.
func lastDays(now time.Time) []string {
	out := make([]string, Days)
	for i := 0; i < Days; i++ {
		out[Days-1-i] = isoDate(now.AddDate(0, 0, -i))
	}

	return out
}

func series(days, dates []string) []Day {
	out := make([]Day, len(days))

	maxCount := 1
	for i, day := range days {
		out[i] = Day{Date: day, Label: label(day), Count: countPrefix(dates, day)}
		if out[i].Count > maxCount {
			maxCount = out[i].Count
		}
	}

	for i := range out {
		out[i].Bar = float64(out[i].Count) / float64(maxCount)
	}

	return out
}

func countPrefix(dates []string, prefix string) int {
	n := 0
	for _, d := range dates {
		if d != "" && strings.HasPrefix(d, prefix) {
			n++
		}
	}

	return n
}

// isoDate: префикс YYYY-MM-DD ISO-8601 представления (UTC). Нулевое время: пустая строка.
func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(dateLayout)
}

// label: "MM/DD".
func label(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}

	return parts[1] + "/" + parts[2]
}
