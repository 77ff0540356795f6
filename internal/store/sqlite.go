package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	full_name    TEXT NOT NULL,
	linkedin_url TEXT NOT NULL,
	data         TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_profiles_linkedin_url ON profiles(linkedin_url);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p *model.CanonicalProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, linkedin_url, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   full_name = excluded.full_name,
		   linkedin_url = excluded.linkedin_url,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		p.ProfileID, p.FullName, p.LinkedInURL, string(data), now, now,
	)
	return eris.Wrapf(err, "sqlite: save profile %s", p.ProfileID)
}

func (s *SQLiteStore) GetProfile(ctx context.Context, profileID string) (*model.CanonicalProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM profiles WHERE id = ?`, profileID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", profileID)
	}

	var p model.CanonicalProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, limit, offset int) ([]model.CanonicalProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM profiles ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []model.CanonicalProfile
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		var p model.CanonicalProfile
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

func (s *SQLiteStore) SaveCompany(ctx context.Context, c *model.CanonicalCompany) error {
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		companyKey(c), c.Name, string(data), now, now,
	)
	return eris.Wrapf(err, "sqlite: save company %s", c.Name)
}

func (s *SQLiteStore) GetCompany(ctx context.Context, key string) (*model.CanonicalCompany, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM companies WHERE id = ?`, key,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", key)
	}

	var c model.CanonicalCompany
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal company")
	}
	return &c, nil
}
