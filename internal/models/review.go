package models

import "time"

// Review: отзыв о месте. Создаётся один раз, не редактируется.
// ProfileID пуст, когда автор: синтезированный администратор без строки профиля.
type Review struct {
	ID         string    `json:"id"`
	BathroomID string    `json:"bathroom_id"`
	UserName   string    `json:"user_name"`
	ProfileID  *string   `json:"profile_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// Clone копирует отзыв вместе с указателем ProfileID.
func (r Review) Clone() Review {
	if r.ProfileID != nil {
		id := *r.ProfileID
		r.ProfileID = &id
	}

	return r
}

// ValidRating: оценка в диапазоне 1..5.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}
