package store

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/riftworks/recap-cli/internal/model"
)

// ErrNotFound is returned by GetObject for a missing key. Check with
// errors.Is.
var ErrNotFound = eris.New("store: object not found")

// Store is the persistence collaborator: a key/blob object store, the
// secondary match index, and run bookkeeping.
type Store interface {
	// Objects
	PutObject(ctx context.Context, key string, body []byte, contentEncoding string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
	ListObjects(ctx context.Context, prefix string) ([]string, error)

	// Match index
	PutIndexEntry(ctx context.Context, entry model.MatchIndexEntry) error
	ListMatchRefs(ctx context.Context, puuid, year string) ([]model.MatchRef, error)

	// Runs
	CreateRun(ctx context.Context, puuid, year string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Object key conventions. The raw blobs are gzipped JSON; the KPI and
// recap documents are plain JSON.
func MatchKey(puuid, year, matchID string) string {
	return fmt.Sprintf("matches/%s/%s/%s.json.gz", puuid, year, matchID)
}

func TimelineKey(puuid, year, matchID string) string {
	return fmt.Sprintf("timelines/%s/%s/%s.json.gz", puuid, year, matchID)
}

func KpiKey(puuid, year string) string {
	return fmt.Sprintf("kpis/%s/%s.json", puuid, year)
}

func RecapKey(puuid, year string) string {
	return fmt.Sprintf("recaps/%s/%s.json", puuid, year)
}
