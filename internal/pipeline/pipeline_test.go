package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftworks/recap-cli/internal/config"
	"github.com/riftworks/recap-cli/internal/model"
	"github.com/riftworks/recap-cli/internal/store"
	"github.com/riftworks/recap-cli/pkg/anthropic"
	"github.com/riftworks/recap-cli/pkg/riot"
)

// memStore is an in-memory Store for pipeline tests.
type memStore struct {
	objects   map[string][]byte
	encodings map[string]string
	index     map[string]model.MatchIndexEntry
	runs      map[string]*model.Run
	completed map[string]*model.RunResult
}

func newMemStore() *memStore {
	return &memStore{
		objects:   map[string][]byte{},
		encodings: map[string]string{},
		index:     map[string]model.MatchIndexEntry{},
		runs:      map[string]*model.Run{},
		completed: map[string]*model.RunResult{},
	}
}

func (s *memStore) PutObject(_ context.Context, key string, body []byte, enc string) error {
	s.objects[key] = body
	s.encodings[key] = enc
	return nil
}

func (s *memStore) GetObject(_ context.Context, key string) ([]byte, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (s *memStore) ObjectExists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

func (s *memStore) ListObjects(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memStore) PutIndexEntry(_ context.Context, e model.MatchIndexEntry) error {
	s.index[e.PUUID+"/"+e.SortKey()] = e
	return nil
}

func (s *memStore) ListMatchRefs(_ context.Context, puuid, year string) ([]model.MatchRef, error) {
	var keys []string
	for k := range s.index {
		if strings.HasPrefix(k, puuid+"/"+year+"#") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	refs := make([]model.MatchRef, 0, len(keys))
	for _, k := range keys {
		e := s.index[k]
		refs = append(refs, model.MatchRef{MatchID: e.MatchID, ObjectKey: e.ObjectKey})
	}
	return refs, nil
}

func (s *memStore) CreateRun(_ context.Context, puuid, year string) (*model.Run, error) {
	id := fmt.Sprintf("run-%d", len(s.runs)+1)
	run := &model.Run{ID: id, PUUID: puuid, Year: year, Status: model.RunStatusRunning}
	s.runs[id] = run
	return run, nil
}

func (s *memStore) CompleteRun(_ context.Context, runID string, result *model.RunResult) error {
	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	s.completed[runID] = result
	return nil
}

func (s *memStore) Migrate(context.Context) error { return nil }
func (s *memStore) Close() error                  { return nil }

// mockRiot serves canned responses.
type mockRiot struct {
	puuid     string
	ids       []string
	matches   map[string]json.RawMessage
	timelines map[string]json.RawMessage
}

func (m *mockRiot) ResolvePUUID(context.Context, string) (string, error) {
	return m.puuid, nil
}

func (m *mockRiot) ListMatchIDs(context.Context, string, int) ([]string, error) {
	return m.ids, nil
}

func (m *mockRiot) GetMatch(_ context.Context, id string) (json.RawMessage, error) {
	b, ok := m.matches[id]
	if !ok {
		return nil, fmt.Errorf("no such match: %s", id)
	}
	return b, nil
}

func (m *mockRiot) GetTimeline(_ context.Context, id string) (json.RawMessage, error) {
	b, ok := m.timelines[id]
	if !ok {
		return nil, fmt.Errorf("no such timeline: %s", id)
	}
	return b, nil
}

var _ riot.Client = (*mockRiot)(nil)

// mockLLM records the last request and returns a fixed reply.
type mockLLM struct {
	lastReq anthropic.MessageRequest
	reply   string
}

func (m *mockLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.lastReq = req
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: m.reply}},
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929"},
		Fetch:     config.FetchConfig{Concurrency: 2},
		Compact: config.CompactConfig{
			MaxChampions:       12,
			MaxItems:           6,
			MaxDuos:            6,
			DropZeroObjectives: true,
		},
	}
}

func testMatch(matchID, puuid, champion string, win bool) model.Match {
	return model.Match{
		Metadata: model.MatchMetadata{MatchID: matchID},
		Info: model.MatchInfo{
			GameCreation: 1717000000000,
			GameDuration: 1800,
			GameVersion:  "14.10.1",
			PlatformID:   "NA1",
			QueueID:      420,
			Participants: []model.Participant{
				{
					PUUID:        puuid,
					TeamID:       100,
					ChampionName: champion,
					TeamPosition: "TOP",
					Win:          win,
					TimePlayed:   1800,
					Kills:        5, Deaths: 3, Assists: 7,
					TotalMinionsKilled:          180,
					GoldEarned:                  12000,
					TotalDamageDealtToChampions: 20000,
				},
				{
					PUUID:        "mate-1",
					TeamID:       100,
					ChampionName: "Thresh",
					SummonerName: "MateOne",
					Win:          win,
					Kills:        3,
				},
			},
			Teams: []model.Team{
				{TeamID: 100, Win: win},
				{TeamID: 200, Win: !win},
			},
		},
	}
}

func seedMatch(t *testing.T, st *memStore, puuid, year string, m model.Match) {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	gz, err := gzipBytes(raw)
	require.NoError(t, err)

	key := store.MatchKey(puuid, year, m.Metadata.MatchID)
	require.NoError(t, st.PutObject(context.Background(), key, gz, "gzip"))
	require.NoError(t, st.PutIndexEntry(context.Background(),
		model.IndexEntryFromMatch(&m, puuid, year, key, "")))
}

func TestFetchSeason(t *testing.T) {
	st := newMemStore()
	existing := testMatch("NA1_1", "player-1", "Darius", true)
	raw, _ := json.Marshal(existing)
	gz, _ := gzipBytes(raw)
	st.objects[store.MatchKey("player-1", "2025", "NA1_1")] = gz

	fresh, _ := json.Marshal(testMatch("NA1_2", "player-1", "Garen", false))
	rc := &mockRiot{
		puuid:   "player-1",
		ids:     []string{"NA1_1", "NA1_2"},
		matches: map[string]json.RawMessage{"NA1_2": fresh},
	}

	p := New(testConfig(), st, rc, nil)
	summary, err := p.FetchSeason(context.Background(), "Player#NA1", 2025, 0)
	require.NoError(t, err)

	assert.Equal(t, "player-1", summary.PUUID)
	assert.Equal(t, 2, summary.Listed)
	assert.Equal(t, 1, summary.SkippedExisting)
	assert.Equal(t, 1, summary.Downloaded)
	assert.Equal(t, 0, summary.Failed)

	key := store.MatchKey("player-1", "2025", "NA1_2")
	assert.Equal(t, "gzip", st.encodings[key])

	entry, ok := st.index["player-1/2025#NA1_2"]
	require.True(t, ok)
	assert.Equal(t, "Garen", entry.Champion)
	assert.Equal(t, "NA1", entry.Platform)
	assert.Equal(t, key, entry.ObjectKey)
}

func TestFetchSeasonCountsFailures(t *testing.T) {
	st := newMemStore()
	rc := &mockRiot{
		puuid:   "player-1",
		ids:     []string{"NA1_gone"},
		matches: map[string]json.RawMessage{},
	}

	p := New(testConfig(), st, rc, nil)
	summary, err := p.FetchSeason(context.Background(), "player-1", 2025, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Listed)
	assert.Equal(t, 0, summary.Downloaded)
	assert.Equal(t, 1, summary.Failed)
}

func TestComputeKPIs(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	seedMatch(t, st, "player-1", "2025", testMatch("NA1_1", "player-1", "Darius", true))
	seedMatch(t, st, "player-1", "2025", testMatch("NA1_2", "player-1", "Darius", false))

	// Indexed but the blob is gone.
	require.NoError(t, st.PutIndexEntry(ctx, model.MatchIndexEntry{
		PUUID: "player-1", Year: "2025", MatchID: "NA1_3",
		ObjectKey: store.MatchKey("player-1", "2025", "NA1_3"),
	}))

	// Blob exists but the player is not in it.
	seedMatch(t, st, "player-1", "2025", testMatch("NA1_4", "someone-else", "Lux", true))

	p := New(testConfig(), st, nil, nil)
	result, err := p.ComputeKPIs(ctx, "player-1", "2025", 0)
	require.NoError(t, err)

	assert.Equal(t, 4, result.MatchesListed)
	assert.Equal(t, 2, result.GamesUsed)
	assert.Equal(t, 1, result.Skips[model.SkipBlobMissing])
	assert.Equal(t, 1, result.Skips[model.SkipParticipantNotFound])
	assert.Equal(t, store.KpiKey("player-1", "2025"), result.KpiKey)

	require.Len(t, st.completed, 1)

	var envelope model.KpiEnvelope
	require.NoError(t, json.Unmarshal(st.objects[result.KpiKey], &envelope))
	assert.Equal(t, "player-1", envelope.PUUID)
	assert.Equal(t, "2025", envelope.Year)

	kpis, ok := envelope.Kpis.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), kpis["games"])
	assert.InDelta(t, 0.5, kpis["winrate"], 1e-9)
}

func TestComputeKPIsLimit(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()

	seedMatch(t, st, "player-1", "2025", testMatch("NA1_1", "player-1", "Darius", true))
	seedMatch(t, st, "player-1", "2025", testMatch("NA1_2", "player-1", "Darius", false))
	seedMatch(t, st, "player-1", "2025", testMatch("NA1_3", "player-1", "Darius", false))

	p := New(testConfig(), st, nil, nil)
	result, err := p.ComputeKPIs(ctx, "player-1", "2025", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.MatchesListed)
	assert.Equal(t, 2, result.GamesUsed)
}

func TestComputeKPIsEmptySeason(t *testing.T) {
	st := newMemStore()

	p := New(testConfig(), st, nil, nil)
	result, err := p.ComputeKPIs(context.Background(), "player-1", "2025", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, result.MatchesListed)
	assert.Equal(t, 0, result.GamesUsed)

	var envelope model.KpiEnvelope
	require.NoError(t, json.Unmarshal(st.objects[result.KpiKey], &envelope))
	kpis, ok := envelope.Kpis.(map[string]any)
	require.True(t, ok)
	assert.Empty(t, kpis)
}

func seedKpis(t *testing.T, st *memStore, puuid, year string) {
	t.Helper()
	envelope := map[string]any{
		"puuid": puuid,
		"year":  year,
		"kpis": map[string]any{
			"games":   42,
			"winrate": 0.55,
			"top_champions": []any{
				map[string]any{"name": "Darius", "games": 20},
			},
		},
	}
	body, err := json.Marshal(envelope)
	require.NoError(t, err)
	st.objects[store.KpiKey(puuid, year)] = body
}

func TestCoach(t *testing.T) {
	st := newMemStore()
	seedKpis(t, st, "player-1", "2025")

	llm := &mockLLM{reply: "## Summary\n- solid season\n"}
	p := New(testConfig(), st, nil, llm)

	report, err := p.Coach(context.Background(), "player-1", "2025")
	require.NoError(t, err)
	assert.Equal(t, "## Summary\n- solid season", report)

	assert.Equal(t, "claude-sonnet-4-5-20250929", llm.lastReq.Model)
	assert.Equal(t, int64(2000), llm.lastReq.MaxTokens)
	require.NotNil(t, llm.lastReq.Temperature)
	assert.InDelta(t, 0.5, *llm.lastReq.Temperature, 1e-9)

	require.Len(t, llm.lastReq.Messages, 1)
	prompt := llm.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "League of Legends coach")
	assert.Contains(t, prompt, "KPI JSON (slice)")
	assert.Contains(t, prompt, "Darius")
}

func TestRecap(t *testing.T) {
	st := newMemStore()
	seedKpis(t, st, "player-1", "2025")

	llm := &mockLLM{reply: `{"title":"Season of Darius","summary":"42 games.","strengths":["laning"],"improvements":["vision"],"awards":[{"name":"Dopa Award","reason":"cs/min"}]}`}
	p := New(testConfig(), st, nil, llm)

	recap, err := p.Recap(context.Background(), "player-1", "2025")
	require.NoError(t, err)

	assert.Equal(t, "Season of Darius", recap.Title)
	assert.Equal(t, []string{"laning"}, recap.Strengths)
	require.Len(t, recap.Awards, 1)
	assert.Equal(t, "Dopa Award", recap.Awards[0].Name)

	assert.Equal(t, int64(600), llm.lastReq.MaxTokens)
	require.NotNil(t, llm.lastReq.Temperature)
	assert.InDelta(t, 0.2, *llm.lastReq.Temperature, 1e-9)
	assert.Contains(t, llm.lastReq.System, "STRICT JSON")

	var stored model.Recap
	require.NoError(t, json.Unmarshal(st.objects[store.RecapKey("player-1", "2025")], &stored))
	assert.Equal(t, "Season of Darius", stored.Title)
}

func TestRecapFallbackWrapsText(t *testing.T) {
	st := newMemStore()
	seedKpis(t, st, "player-1", "2025")

	llm := &mockLLM{reply: "I had trouble producing JSON, sorry."}
	p := New(testConfig(), st, nil, llm)

	recap, err := p.Recap(context.Background(), "player-1", "2025")
	require.NoError(t, err)

	assert.Equal(t, "Your Year in LoL", recap.Title)
	assert.Equal(t, "I had trouble producing JSON, sorry.", recap.Summary)
	assert.Empty(t, recap.Strengths)
	assert.Empty(t, recap.Awards)
}

func TestParseRecapFenced(t *testing.T) {
	recap := parseRecap("```json\n{\"title\":\"T\",\"summary\":\"S\"}\n```")
	assert.Equal(t, "T", recap.Title)
	assert.Equal(t, "S", recap.Summary)
	assert.NotNil(t, recap.Strengths)
}

func TestGzipRoundTrip(t *testing.T) {
	gz, err := gzipBytes([]byte(`{"a":1}`))
	require.NoError(t, err)

	out, err := gunzipBytes(gz)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out))

	// Plain JSON passes through untouched.
	out, err = gunzipBytes([]byte(`{"b":2}`))
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(out))
}

func TestFormatRunSummary(t *testing.T) {
	s := FormatRunSummary(&model.RunResult{
		MatchesListed: 1200,
		GamesUsed:     1100,
		Skips:         map[model.SkipReason]int{model.SkipBlobMissing: 100},
	})
	assert.Equal(t, "aggregated 1,100 of 1,200 matches (100 skipped)", s)
}
