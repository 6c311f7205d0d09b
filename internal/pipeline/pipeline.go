// Package pipeline holds the season workflow: fetch raw matches, derive
// per-match features, aggregate season KPIs, and generate reports.
package pipeline

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/riftworks/recap-cli/internal/config"
	"github.com/riftworks/recap-cli/internal/model"
	"github.com/riftworks/recap-cli/internal/store"
	"github.com/riftworks/recap-cli/pkg/anthropic"
	"github.com/riftworks/recap-cli/pkg/riot"
)

// Pipeline wires the season workflow to its collaborators.
type Pipeline struct {
	cfg   *config.Config
	store store.Store
	riot  riot.Client
	llm   anthropic.Client
}

// New creates a Pipeline. The riot and llm clients may be nil for
// operations that do not use them.
func New(cfg *config.Config, st store.Store, riotClient riot.Client, llmClient anthropic.Client) *Pipeline {
	return &Pipeline{cfg: cfg, store: st, riot: riotClient, llm: llmClient}
}

// FetchSummary reports what one FetchSeason call did.
type FetchSummary struct {
	PUUID           string
	Listed          int
	Downloaded      int
	SkippedExisting int
	Failed          int
	TimelinesStored int
}

// ResolvePlayer turns a player argument into a PUUID. A "GameName#TAG"
// Riot ID is resolved through the account API; anything else is assumed to
// already be a PUUID.
func (p *Pipeline) ResolvePlayer(ctx context.Context, player string) (string, error) {
	if strings.Contains(player, "#") {
		return p.riot.ResolvePUUID(ctx, player)
	}
	return player, nil
}

// FetchSeason downloads the player's matches for one calendar year into
// the object store and indexes them. Already-stored matches are skipped
// unless fetch.force is set. A positive limit caps how many of the listed
// matches are considered.
func (p *Pipeline) FetchSeason(ctx context.Context, player string, year, limit int) (*FetchSummary, error) {
	puuid, err := p.ResolvePlayer(ctx, player)
	if err != nil {
		return nil, err
	}
	yearStr := strconv.Itoa(year)

	ids, err := p.riot.ListMatchIDs(ctx, puuid, year)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	summary := &FetchSummary{PUUID: puuid, Listed: len(ids)}

	toFetch := make([]string, 0, len(ids))
	for _, id := range ids {
		if !p.cfg.Fetch.Force {
			exists, err := p.store.ObjectExists(ctx, store.MatchKey(puuid, yearStr, id))
			if err != nil {
				return nil, err
			}
			if exists {
				summary.SkippedExisting++
				continue
			}
		}
		toFetch = append(toFetch, id)
	}

	docs, failed := riot.FetchMatches(ctx, p.riot, toFetch, p.cfg.Fetch.Concurrency)
	summary.Failed = failed

	for _, doc := range docs {
		key := store.MatchKey(puuid, yearStr, doc.MatchID)
		gz, err := gzipBytes(doc.Body)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: gzip match %s", doc.MatchID)
		}
		if err := p.store.PutObject(ctx, key, gz, "gzip"); err != nil {
			return nil, err
		}
		summary.Downloaded++

		timelineKey := ""
		if p.cfg.Fetch.IncludeTimelines {
			tl, err := p.riot.GetTimeline(ctx, doc.MatchID)
			if err != nil {
				zap.L().Warn("pipeline: timeline fetch failed",
					zap.String("match_id", doc.MatchID),
					zap.Error(err),
				)
			} else {
				timelineKey = store.TimelineKey(puuid, yearStr, doc.MatchID)
				tlgz, err := gzipBytes(tl)
				if err != nil {
					return nil, eris.Wrapf(err, "pipeline: gzip timeline %s", doc.MatchID)
				}
				if err := p.store.PutObject(ctx, timelineKey, tlgz, "gzip"); err != nil {
					return nil, err
				}
				summary.TimelinesStored++
			}
		}

		var m model.Match
		entry := model.MatchIndexEntry{
			PUUID:     puuid,
			Year:      yearStr,
			MatchID:   doc.MatchID,
			Platform:  "unknown",
			ObjectKey: key,
		}
		if err := json.Unmarshal(doc.Body, &m); err != nil {
			zap.L().Warn("pipeline: match document did not parse, indexing shell entry",
				zap.String("match_id", doc.MatchID),
				zap.Error(err),
			)
		} else {
			entry = model.IndexEntryFromMatch(&m, puuid, yearStr, key, timelineKey)
		}
		if err := p.store.PutIndexEntry(ctx, entry); err != nil {
			return nil, err
		}
	}

	zap.L().Info("pipeline: season fetched",
		zap.String("puuid", puuid),
		zap.Int("year", year),
		zap.Int("listed", summary.Listed),
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("skipped_existing", summary.SkippedExisting),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// ComputeKPIs derives features from every stored match of the season,
// aggregates them, and persists the KPI document. Unusable matches are
// tallied as skips, never errors. A season with zero usable matches still
// writes an envelope with an empty kpis object. A positive limit caps how
// many indexed matches are read.
func (p *Pipeline) ComputeKPIs(ctx context.Context, puuid, year string, limit int) (*model.RunResult, error) {
	run, err := p.store.CreateRun(ctx, puuid, year)
	if err != nil {
		return nil, err
	}

	result, err := p.computeKPIs(ctx, puuid, year, limit)
	if err != nil {
		failed := &model.RunResult{Error: err.Error()}
		if result != nil {
			failed.MatchesListed = result.MatchesListed
			failed.Skips = result.Skips
		}
		if cerr := p.store.CompleteRun(ctx, run.ID, failed); cerr != nil {
			zap.L().Error("pipeline: failed to record run failure", zap.Error(cerr))
		}
		return nil, err
	}

	if err := p.store.CompleteRun(ctx, run.ID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) computeKPIs(ctx context.Context, puuid, year string, limit int) (*model.RunResult, error) {
	refs, err := p.store.ListMatchRefs(ctx, puuid, year)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}

	result := &model.RunResult{
		MatchesListed: len(refs),
		Skips:         make(map[model.SkipReason]int),
	}

	records := make([]model.FeatureRecord, 0, len(refs))
	for _, ref := range refs {
		key := ref.ObjectKey
		if key == "" {
			key = store.MatchKey(puuid, year, ref.MatchID)
		}

		blob, err := p.store.GetObject(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			result.Skips[model.SkipBlobMissing]++
			zap.L().Warn("pipeline: indexed match has no blob",
				zap.String("match_id", ref.MatchID),
				zap.String("key", key),
			)
			continue
		}
		if err != nil {
			return result, err
		}

		raw, err := gunzipBytes(blob)
		if err != nil {
			result.Skips[model.SkipBlobUnreadable]++
			zap.L().Warn("pipeline: match blob unreadable",
				zap.String("match_id", ref.MatchID),
				zap.Error(err),
			)
			continue
		}

		var m model.Match
		if err := json.Unmarshal(raw, &m); err != nil {
			result.Skips[model.SkipBlobUnreadable]++
			zap.L().Warn("pipeline: match blob did not parse",
				zap.String("match_id", ref.MatchID),
				zap.Error(err),
			)
			continue
		}

		rec := Extract(&m, puuid)
		if rec == nil {
			result.Skips[model.SkipParticipantNotFound]++
			continue
		}
		records = append(records, *rec)
	}

	envelope := model.KpiEnvelope{PUUID: puuid, Year: year}
	if doc := Aggregate(records); doc != nil {
		envelope.Kpis = doc
	} else {
		envelope.Kpis = map[string]any{}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return result, eris.Wrap(err, "pipeline: marshal kpi envelope")
	}

	key := store.KpiKey(puuid, year)
	if err := p.store.PutObject(ctx, key, body, ""); err != nil {
		return result, err
	}

	result.GamesUsed = len(records)
	result.KpiKey = key

	zap.L().Info("pipeline: kpis computed",
		zap.String("puuid", puuid),
		zap.String("year", year),
		zap.Int("matches_listed", result.MatchesListed),
		zap.Int("games_used", result.GamesUsed),
		zap.String("kpi_key", key),
	)
	return result, nil
}

// Coach generates the free-form coaching report from the stored KPI
// document.
func (p *Pipeline) Coach(ctx context.Context, puuid, year string) (string, error) {
	doc, err := p.LoadKpis(ctx, puuid, year)
	if err != nil {
		return "", err
	}
	return p.CoachDocument(ctx, doc)
}

// CoachDocument generates a coaching report from an already loaded KPI
// document, for callers that hold the JSON themselves.
func (p *Pipeline) CoachDocument(ctx context.Context, doc map[string]any) (string, error) {
	compacted := p.compact(doc)

	prompt, err := coachPrompt(compacted)
	if err != nil {
		return "", err
	}

	temp := coachTemperature
	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Anthropic.Model,
		MaxTokens:   coachMaxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "coach")

	return strings.TrimSpace(resp.Text()), nil
}

// Recap generates and persists the strict-JSON season recap. Output that
// fails to parse as JSON is wrapped into a degraded recap rather than
// failing.
func (p *Pipeline) Recap(ctx context.Context, puuid, year string) (*model.Recap, error) {
	compacted, err := p.loadCompactKpis(ctx, puuid, year)
	if err != nil {
		return nil, err
	}

	prompt, err := recapPrompt(compacted)
	if err != nil {
		return nil, err
	}

	temp := recapTemperature
	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.cfg.Anthropic.Model,
		MaxTokens:   recapMaxTokens,
		System:      recapSystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(p.cfg.Anthropic.Model, "recap")

	recap := parseRecap(resp.Text())

	body, err := json.Marshal(recap)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal recap")
	}
	if err := p.store.PutObject(ctx, store.RecapKey(puuid, year), body, ""); err != nil {
		return nil, err
	}
	return recap, nil
}

// LoadKpis returns the stored KPI envelope as a generic document.
func (p *Pipeline) LoadKpis(ctx context.Context, puuid, year string) (map[string]any, error) {
	blob, err := p.store.GetObject(ctx, store.KpiKey(puuid, year))
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse kpi document")
	}
	return doc, nil
}

func (p *Pipeline) loadCompactKpis(ctx context.Context, puuid, year string) (map[string]any, error) {
	doc, err := p.LoadKpis(ctx, puuid, year)
	if err != nil {
		return nil, err
	}
	return p.compact(doc), nil
}

func (p *Pipeline) compact(doc map[string]any) map[string]any {
	return Compact(doc, CompactOptions{
		KeepChampions:      p.cfg.Compact.MaxChampions,
		KeepItems:          p.cfg.Compact.MaxItems,
		KeepDuos:           p.cfg.Compact.MaxDuos > 0,
		DropZeroObjectives: p.cfg.Compact.DropZeroObjectives,
	})
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gunzipBytes decompresses a stored blob; plain JSON passes through so
// blobs written without compression still read back.
func gunzipBytes(b []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != 0x1f || b[1] != 0x8b {
		return b, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
