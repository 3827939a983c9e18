package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Preferences struct {
	UserID   string
	Version  string
	Language string
}

// Preferences returns the user's saved preferences, or the store defaults
// when the user has none.
func (s *SQLiteStore) Preferences(ctx context.Context, userID string) (Preferences, error) {
	p := Preferences{UserID: userID}
	err := s.db.QueryRowContext(ctx, `SELECT version, language FROM preferences WHERE user_id = ?`, userID).
		Scan(&p.Version, &p.Language)
	if errors.Is(err, sql.ErrNoRows) {
		p.Version = s.defaults.Version
		p.Language = s.defaults.Language
		return p, nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// SetVersion stores the user's preferred version. The version must exist in
// the registry.
func (s *SQLiteStore) SetVersion(ctx context.Context, userID, abbv string) (Version, error) {
	v, err := s.GetVersion(ctx, abbv)
	if err != nil {
		return Version{}, err
	}
	p, err := s.Preferences(ctx, userID)
	if err != nil {
		return Version{}, err
	}
	p.Version = v.Abbv
	return v, s.save(ctx, p)
}

func (s *SQLiteStore) SetLanguage(ctx context.Context, userID, language string) error {
	p, err := s.Preferences(ctx, userID)
	if err != nil {
		return err
	}
	p.Language = strings.ToLower(strings.TrimSpace(language))
	return s.save(ctx, p)
}

func (s *SQLiteStore) save(ctx context.Context, p Preferences) error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("store: user id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, version, language, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			version=excluded.version,
			language=excluded.language,
			updated_at=excluded.updated_at
	`, p.UserID, p.Version, p.Language, time.Now().UTC())
	return err
}
