package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/riftworks/recap-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
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
CREATE TABLE IF NOT EXISTS objects (
	key              TEXT PRIMARY KEY,
	body             BLOB NOT NULL,
	content_encoding TEXT NOT NULL DEFAULT '',
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS match_index (
	puuid         TEXT NOT NULL,
	sk            TEXT NOT NULL,
	match_id      TEXT NOT NULL,
	platform      TEXT NOT NULL DEFAULT 'unknown',
	patch         TEXT NOT NULL DEFAULT '',
	queue_id      INTEGER NOT NULL DEFAULT 0,
	game_creation INTEGER NOT NULL DEFAULT 0,
	duration_sec  INTEGER NOT NULL DEFAULT 0,
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
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_match_index_sk ON match_index(puuid, sk);
CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(puuid, year);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutObject(ctx context.Context, key string, body []byte, contentEncoding string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO objects (key, body, content_encoding, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body,
		 content_encoding = excluded.content_encoding, updated_at = excluded.updated_at`,
		key, body, contentEncoding, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put object %s", key)
}

func (s *SQLiteStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM objects WHERE key = ?`, key,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: %s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get object %s", key)
	}
	return body, nil
}

func (s *SQLiteStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM objects WHERE key = ?`, key,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: object exists %s", key)
	}
	return true, nil
}

func (s *SQLiteStore) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM objects WHERE key LIKE ? || '%' ORDER BY key`, prefix,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list objects %s", prefix)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan key")
		}
		keys = append(keys, k)
	}
	return keys, eris.Wrap(rows.Err(), "sqlite: list objects iterate")
}

func (s *SQLiteStore) PutIndexEntry(ctx context.Context, e model.MatchIndexEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO match_index
		 (puuid, sk, match_id, platform, patch, queue_id, game_creation, duration_sec, champion, role, object_key, timeline_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(puuid, sk) DO UPDATE SET
		 platform = excluded.platform, patch = excluded.patch,
		 queue_id = excluded.queue_id, game_creation = excluded.game_creation,
		 duration_sec = excluded.duration_sec, champion = excluded.champion,
		 role = excluded.role, object_key = excluded.object_key,
		 timeline_key = excluded.timeline_key`,
		e.PUUID, e.SortKey(), e.MatchID, e.Platform, e.Patch, e.QueueID,
		e.GameCreation, e.DurationSec, e.Champion, e.Role,
		nullIfEmpty(e.ObjectKey), nullIfEmpty(e.TimelineKey),
	)
	return eris.Wrapf(err, "sqlite: put index entry %s", e.MatchID)
}

func (s *SQLiteStore) ListMatchRefs(ctx context.Context, puuid, year string) ([]model.MatchRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, object_key FROM match_index
		 WHERE puuid = ? AND sk LIKE ? || '#%' ORDER BY sk`,
		puuid, year,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list match refs %s/%s", puuid, year)
	}
	defer rows.Close()

	var refs []model.MatchRef
	for rows.Next() {
		var ref model.MatchRef
		var key sql.NullString
		if err := rows.Scan(&ref.MatchID, &key); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan match ref")
		}
		ref.ObjectKey = key.String
		refs = append(refs, ref)
	}
	return refs, eris.Wrap(rows.Err(), "sqlite: list match refs iterate")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, puuid, year string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, puuid, year, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, puuid, year, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
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

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run result")
	}

	status := model.RunStatusComplete
	if result != nil && result.Error != "" {
		status = model.RunStatusFailed
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, result = ?, updated_at = ? WHERE id = ?`,
		string(status), string(resultJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
