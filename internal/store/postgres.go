package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/riftworks/recap-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
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
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS objects (
	key              TEXT PRIMARY KEY,
	body             BYTEA NOT NULL,
	content_encoding TEXT NOT NULL DEFAULT '',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS match_index (
	puuid         TEXT NOT NULL,
	sk            TEXT NOT NULL,
	match_id      TEXT NOT NULL,
	platform      TEXT NOT NULL DEFAULT 'unknown',
	patch         TEXT NOT NULL DEFAULT '',
	queue_id      INTEGER NOT NULL DEFAULT 0,
	game_creation BIGINT NOT NULL DEFAULT 0,
	duration_sec  BIGINT NOT NULL DEFAULT 0,
	champion      TEXT NOT NULL DEFAULT '',
	role          TEXT NOT NULL DEFAULT '',
	object_key    TEXT,
	timeline_key  TEXT,
	PRIMARY KEY (puuid, sk)
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	puuid      TEXT NOT NULL,
	year       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(puuid, year);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) PutObject(ctx context.Context, key string, body []byte, contentEncoding string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO objects (key, body, content_encoding, updated_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (key) DO UPDATE SET body = excluded.body,
		 content_encoding = excluded.content_encoding, updated_at = now()`,
		key, body, contentEncoding,
	)
	return eris.Wrapf(err, "postgres: put object %s", key)
}

func (s *PostgresStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM objects WHERE key = $1`, key,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: %s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get object %s", key)
	}
	return body, nil
}

func (s *PostgresStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM objects WHERE key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: object exists %s", key)
	}
	return exists, nil
}

func (s *PostgresStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM objects WHERE key LIKE $1 || '%' ORDER BY key`, prefix,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list objects %s", prefix)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, eris.Wrap(err, "postgres: scan key")
		}
		keys = append(keys, k)
	}
	return keys, eris.Wrap(rows.Err(), "postgres: list objects iterate")
}

func (s *PostgresStore) PutIndexEntry(ctx context.Context, e model.MatchIndexEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_index
		 (puuid, sk, match_id, platform, patch, queue_id, game_creation, duration_sec, champion, role, object_key, timeline_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (puuid, sk) DO UPDATE SET
		 platform = excluded.platform, patch = excluded.patch,
		 queue_id = excluded.queue_id, game_creation = excluded.game_creation,
		 duration_sec = excluded.duration_sec, champion = excluded.champion,
		 role = excluded.role, object_key = excluded.object_key,
		 timeline_key = excluded.timeline_key`,
		e.PUUID, e.SortKey(), e.MatchID, e.Platform, e.Patch, e.QueueID,
		e.GameCreation, e.DurationSec, e.Champion, e.Role,
		nullIfEmpty(e.ObjectKey), nullIfEmpty(e.TimelineKey),
	)
	return eris.Wrapf(err, "postgres: put index entry %s", e.MatchID)
}

func (s *PostgresStore) ListMatchRefs(ctx context.Context, puuid, year string) ([]model.MatchRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT match_id, object_key FROM match_index
		 WHERE puuid = $1 AND sk LIKE $2 || '#%' ORDER BY sk`,
		puuid, year,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list match refs %s/%s", puuid, year)
	}
	defer rows.Close()

	var refs []model.MatchRef
	for rows.Next() {
		var ref model.MatchRef
		var key *string
		if err := rows.Scan(&ref.MatchID, &key); err != nil {
			return nil, eris.Wrap(err, "postgres: scan match ref")
		}
		if key != nil {
			ref.ObjectKey = *key
		}
		refs = append(refs, ref)
	}
	return refs, eris.Wrap(rows.Err(), "postgres: list match refs iterate")
}

func (s *PostgresStore) CreateRun(ctx context.Context, puuid, year string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, puuid, year, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, puuid, year, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		PUUID:     puuid,
		Year:      year,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run result")
	}

	status := model.RunStatusComplete
	if result != nil && result.Error != "" {
		status = model.RunStatusFailed
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, result = $2, updated_at = now() WHERE id = $3`,
		string(status), resultJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}
