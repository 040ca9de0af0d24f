package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jackc/pgx/v5"
)

// profileColumns: единый список колонок таблицы profiles,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const profileColumns = `
id, username, password, COALESCE(full_name, ''), COALESCE(avatar_url, ''), points, status, created_at
`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		p      models.Profile
		id     uuid.UUID
		points int32
		status string
	)

	if err := row.Scan(
		&id,
		&p.Username,
		&p.Password,
		&p.FullName,
		&p.AvatarURL,
		&points,
		&status,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.ID = id.String()
	p.Points = int(points)
	p.Status = models.ProfileStatus(status)

	return &p, nil
}

// profileBy: общий SELECT одной строки с маппингом ErrNoRows.
func (s *Storage) profileBy(ctx context.Context, op, where string, args ...any) (*models.Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where, args...)

	result, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// Profiles возвращает все профили, новые первыми.
func (s *Storage) Profiles(ctx context.Context) ([]models.Profile, error) {
	const op = "storage/postgres/profiles/Profiles"

	rows, err := s.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		profiles = append(profiles, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return profiles, nil
}

// ProfileByID возвращает профиль по id.
func (s *Storage) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByID"

	uid, err := parseProfileID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.profileBy(ctx, op, `id = $1`, uid)
}

// ProfileByUsername возвращает профиль по username.
func (s *Storage) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByUsername"

	return s.profileBy(ctx, op, `username = $1`, username)
}

// ProfileByCredentials ищет профиль по точному совпадению пары (username, password).
func (s *Storage) ProfileByCredentials(ctx context.Context, username, password string) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByCredentials"

	return s.profileBy(ctx, op, `username = $1 AND password = $2`, username, password)
}

// CreateProfile вставляет новую запись профиля с points = 0 и status = active.
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности username.
func (s *Storage) CreateProfile(ctx context.Context, profile storage.NewProfile) (*models.Profile, error) {
	const op = "storage/postgres/profiles/CreateProfile"

	q := `
	INSERT INTO profiles (username, password, full_name, points, status)
	VALUES ($1, $2, $3, 0, 'active')
	RETURNING
	` + profileColumns

	row := s.db.QueryRow(ctx, q, profile.Username, profile.Password, profile.FullName)

	result, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	return result, nil
}

// UpdateProfile выполняет частичный апдейт: обновляет только поля,
// указанные непустыми pointer-полями. Пустой апдейт возвращает текущую строку.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) UpdateProfile(ctx context.Context, id string, update storage.ProfileUpdate) (*models.Profile, error) {
	const op = "storage/postgres/profiles/UpdateProfile"

	uid, err := parseProfileID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.FullName != nil {
		add("full_name", *update.FullName)
	}

	if update.Password != nil {
		add("password", *update.Password)
	}

	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}

	if update.Points != nil {
		add("points", int32(*update.Points))
	}

	if update.Status != nil {
		add("status", string(*update.Status))
	}

	if len(sets) == 0 {
		return s.profileBy(ctx, op, `id = $1`, uid)
	}

	args = append(args, uid)
	q := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), profileColumns)

	result, err := scanProfile(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeleteProfile удаляет профиль; profile_id в его отзывах обнуляется.
func (s *Storage) DeleteProfile(ctx context.Context, id string) error {
	const op = "storage/postgres/profiles/DeleteProfile"

	uid, err := parseProfileID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
