package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"biblebot/internal/providers"
)

type Version struct {
	Abbv     string
	Name     string
	Provider string
}

// Display is the registry's listing line for the version.
func (v Version) Display() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Abbv)
}

var defaultVersions = []Version{
	{"RSV", "Revised Standard Version", providers.BibleGateway},
	{"KJV", "King James Version", providers.BibleGateway},
	{"NIV", "New International Version", providers.BibleGateway},
	{"ESV", "English Standard Version", providers.BibleGateway},
	{"NASB", "New American Standard Bible", providers.BibleGateway},
	{"NKJV", "New King James Version", providers.BibleGateway},
	{"NLT", "New Living Translation", providers.BibleGateway},
	{"NRSV", "New Revised Standard Version", providers.BibleGateway},
	{"AMP", "Amplified Bible", providers.BibleGateway},
	{"ASV", "American Standard Version", providers.BibleGateway},
	{"CEB", "Common English Bible", providers.BibleGateway},
	{"CSB", "Christian Standard Bible", providers.BibleGateway},
	{"DRA", "Douay-Rheims 1899 American Edition", providers.BibleGateway},
	{"GNT", "Good News Translation", providers.BibleGateway},
	{"ISV", "International Standard Version", providers.BibleGateway},
	{"MSG", "The Message", providers.BibleGateway},
	{"NABRE", "New American Bible (Revised Edition)", providers.BibleGateway},
	{"NET", "New English Translation", providers.BibleGateway},
	{"NOG", "Names of God Bible", providers.BibleGateway},
	{"OJB", "Orthodox Jewish Bible", providers.BibleGateway},
	{"TLB", "Living Bible", providers.BibleGateway},
	{"WEB", "World English Bible", providers.BibleGateway},
	{"YLT", "Young's Literal Translation", providers.BibleGateway},
	{"GNV", "1599 Geneva Bible", providers.BibleGateway},
	{"LEB", "Lexham English Bible", providers.BibleGateway},
	{"MEV", "Modern English Version", providers.BibleGateway},
	{"BSB", "Berean Study Bible", providers.BibleHub},
	{"NHEB", "New Heart English Bible", providers.BibleHub},
	{"WBT", "Webster's Bible Translation", providers.BibleHub},
	{"LUT", "Luther Bibel 1545", providers.BibleServer},
	{"LXX", "Septuagint", providers.BibleServer},
	{"SLT", "Schlachter 1951", providers.BibleServer},
	{"KJVA", "King James Version with Apocrypha", providers.APIBible},
	{"REV", "Revised Version", providers.REV},
}

func (s *SQLiteStore) seedVersions(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM versions`).Scan(&n); err != nil {
		return fmt.Errorf("store: count versions: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, v := range defaultVersions {
		if err := s.PutVersion(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) PutVersion(ctx context.Context, v Version) error {
	v.Abbv = strings.ToUpper(strings.TrimSpace(v.Abbv))
	v.Name = strings.TrimSpace(v.Name)
	if v.Abbv == "" || v.Name == "" {
		return errors.New("store: version abbreviation and name are required")
	}
	if v.Provider == "" {
		v.Provider = providers.ProviderFor(v.Abbv)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO versions (abbv, name, provider) VALUES (?, ?, ?)
		ON CONFLICT(abbv) DO UPDATE SET name=excluded.name, provider=excluded.provider
	`, v.Abbv, v.Name, v.Provider)
	if err != nil {
		return fmt.Errorf("store: put version %s: %w", v.Abbv, err)
	}
	return nil
}

func (s *SQLiteStore) GetVersion(ctx context.Context, abbv string) (Version, error) {
	var v Version
	err := s.db.QueryRowContext(ctx, `SELECT abbv, name, provider FROM versions WHERE abbv = ?`,
		strings.ToUpper(strings.TrimSpace(abbv))).Scan(&v.Abbv, &v.Name, &v.Provider)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, ErrNotFound
	}
	if err != nil {
		return Version{}, err
	}
	return v, nil
}

func (s *SQLiteStore) Versions(ctx context.Context) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT abbv, name, provider FROM versions ORDER BY name, abbv`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Version{}
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.Abbv, &v.Name, &v.Provider); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListVersions returns the listing lines for every registered version.
func (s *SQLiteStore) ListVersions(ctx context.Context) ([]string, error) {
	versions, err := s.Versions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.Display())
	}
	return out, nil
}
