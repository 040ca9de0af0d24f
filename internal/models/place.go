// models содержит доменные сущности Cowele.
// Эти типы используются слоями кэша, бизнес-логики, хранилища и транспорта.
package models

import "time"

// PlaceStatus: состояние санузла.
type PlaceStatus string

const (
	StatusClean        PlaceStatus = "clean"
	StatusBusy         PlaceStatus = "busy"
	StatusOutOfService PlaceStatus = "out_of_service"
)

// Valid сообщает, входит ли значение в допустимое множество.
func (s PlaceStatus) Valid() bool {
	switch s {
	case StatusClean, StatusBusy, StatusOutOfService:
		return true
	default:
		return false
	}
}

// DefaultRating: рейтинг нового места.
const DefaultRating = 5.0

// Place: нормализованная запись места в кэше.
// ID: целое число из хранилища, сериализованное строкой.
type Place struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	Lat          float64     `json:"lat"`
	Lng          float64     `json:"lng"`
	Photo        string      `json:"photo"`
	Status       PlaceStatus `json:"status"`
	Rating       float64     `json:"rating"`
	CreatedBy    string      `json:"created_by"`
	IsPaid       bool        `json:"is_paid"`
	LastReported time.Time   `json:"last_reported"`
	Reviews      []Review    `json:"reviews"`
}

// Clone возвращает глубокую копию места (включая отзывы).
func (p Place) Clone() Place {
	if p.Reviews != nil {
		reviews := make([]Review, len(p.Reviews))
		copy(reviews, p.Reviews)
		for i := range reviews {
			reviews[i] = reviews[i].Clone()
		}
		p.Reviews = reviews
	}

	return p
}
