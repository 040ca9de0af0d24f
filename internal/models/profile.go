package models

import "time"

// ProfileStatus: статус учётной записи.
type ProfileStatus string

const (
	ProfileActive   ProfileStatus = "active"
	ProfileInactive ProfileStatus = "inactive"
)

// Valid сообщает, входит ли значение в допустимое множество.
func (s ProfileStatus) Valid() bool {
	return s == ProfileActive || s == ProfileInactive
}

// Toggle возвращает противоположный статус.
func (s ProfileStatus) Toggle() ProfileStatus {
	if s == ProfileActive {
		return ProfileInactive
	}

	return ProfileActive
}

// PointsPerReview: награда за отзыв.
const PointsPerReview = 10

// AdminPoints: очки синтезированного администратора.
const AdminPoints = 9999

// Profile: учётная запись пользователя.
// Password хранится и сравнивается в открытом виде на стороне хранилища.
type Profile struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Password  string        `json:"password,omitempty"`
	FullName  string        `json:"full_name"`
	AvatarURL string        `json:"avatar_url"`
	Points    int           `json:"points"`
	Status    ProfileStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// DisplayName: имя для отзывов: полное имя, иначе username.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}

	return p.Username
}
