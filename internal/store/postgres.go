package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/linkedin-ingest/internal/model"
)

// Pool abstracts the subset of pgxpool.Pool used by the store, so tests can
// substitute a pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	full_name    TEXT NOT NULL,
	linkedin_url TEXT NOT NULL,
	data         JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_profiles_linkedin_url ON profiles(linkedin_url);
CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p *model.CanonicalProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (id, full_name, linkedin_url, data, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE SET
		   full_name = EXCLUDED.full_name,
		   linkedin_url = EXCLUDED.linkedin_url,
		   data = EXCLUDED.data,
		   updated_at = now()`,
		p.ProfileID, p.FullName, p.LinkedInURL, data,
	)
	return eris.Wrapf(err, "postgres: save profile %s", p.ProfileID)
}

func (s *PostgresStore) GetProfile(ctx context.Context, profileID string) (*model.CanonicalProfile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM profiles WHERE id = $1`, profileID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", profileID)
	}

	var p model.CanonicalProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	return &p, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context, limit, offset int) ([]model.CanonicalProfile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM profiles ORDER BY updated_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.CanonicalProfile
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		var p model.CanonicalProfile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (s *PostgresStore) SaveCompany(ctx context.Context, c *model.CanonicalCompany) error {
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   data = EXCLUDED.data,
		   updated_at = now()`,
		companyKey(c), c.Name, data,
	)
	return eris.Wrapf(err, "postgres: save company %s", c.Name)
}

func (s *PostgresStore) GetCompany(ctx context.Context, key string) (*model.CanonicalCompany, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM companies WHERE id = $1`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", key)
	}

	var c model.CanonicalCompany
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal company")
	}
	return &c, nil
}
