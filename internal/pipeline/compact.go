package pipeline

import "sort"

// Compactor caps: requested keep counts are clamped to these.
const (
	maxCompactChampions = 12
	maxCompactItems     = 6
)

var headlineFields = []string{
	"games", "winrate", "avg_game_time_min",
	"kill_participation_mean", "damage_share_mean", "cs_per_min_mean",
	"vision_pm_mean", "gold_per_min_mean", "dmg_per_min_mean",
	"objective_contrib_mean", "objective_damage_pm_mean",
	"first_blood_rate_self", "favorite_damage_type",
}

var objectiveFields = []string{
	"turrets_killed_total", "dragons_killed_total", "barons_killed_total",
	"heralds_killed_total", "grubs_killed_total", "objective_damage_total",
}

var conditionalFields = []string{
	"when_team_first_blood", "when_first_tower", "when_first_dragon",
	"when_first_baron", "when_first_herald",
}

var itemFields = []string{"favorite_items", "best_items", "worst_items"}

var duoFields = []string{"duo_most_played", "duo_best", "duo_worst"}

var splitFields = []string{"split_ranked_solo_duo", "split_ranked_flex", "split_normals"}

// CompactOptions controls how aggressively Compact trims the document.
type CompactOptions struct {
	KeepChampions      int
	KeepItems          int
	KeepDuos           bool
	DropZeroObjectives bool
}

// DefaultCompactOptions are sized so the compacted slice fits the model
// input budget with the standard prompt.
func DefaultCompactOptions() CompactOptions {
	return CompactOptions{
		KeepChampions: maxCompactChampions,
		KeepItems:     maxCompactItems,
		KeepDuos:      true,
	}
}

// Compact slims a KPI document to a bounded subset suitable as model
// input. It accepts either a bare document or the persisted envelope
// (unwrapped via its "kpis" field), tolerates missing or malformed fields,
// and never fails: fields absent from the input are absent from the
// output. A pure projection; no values are recomputed.
func Compact(doc map[string]any, opts CompactOptions) map[string]any {
	k := doc
	if inner, ok := doc["kpis"].(map[string]any); ok {
		k = inner
	}
	if k == nil {
		return map[string]any{}
	}

	keepChamps := min(opts.KeepChampions, maxCompactChampions)
	keepItems := min(opts.KeepItems, maxCompactItems)

	out := make(map[string]any)

	for _, fld := range headlineFields {
		if v, ok := k[fld]; ok {
			out[fld] = v
		}
	}

	for _, fld := range objectiveFields {
		v, ok := k[fld]
		if !ok {
			continue
		}
		if opts.DropZeroObjectives && isZero(v) {
			continue
		}
		out[fld] = v
	}

	for _, fld := range conditionalFields {
		if m, ok := k[fld].(map[string]any); ok {
			out[fld] = map[string]any{
				"games":   m["games"],
				"winrate": m["winrate"],
			}
		}
	}

	if v, ok := k["top_champions"]; ok {
		out["top_champions"] = topNByGames(v, keepChamps)
	}
	if v, ok := k["role_distribution"]; ok {
		out["role_distribution"] = v
	}
	if v, ok := k["champion_winrates"]; ok {
		out["champion_winrates"] = topNByGames(v, keepChamps)
	}

	for _, fld := range itemFields {
		if v, ok := k[fld].([]any); ok {
			out[fld] = topNByGames(v, keepItems)
		}
	}

	if opts.KeepDuos {
		for _, fld := range duoFields {
			if v, ok := k[fld]; ok {
				out[fld] = v
			}
		}
	}

	for _, fld := range splitFields {
		if v, ok := k[fld]; ok {
			out[fld] = v
		}
	}

	return out
}

// topNByGames re-sorts a list by its entries' "games" field descending and
// truncates to n. Entries without a readable games count sort as zero;
// non-list values pass through untouched.
func topNByGames(v any, n int) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	sorted := make([]any, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return gamesOf(sorted[i]) > gamesOf(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func gamesOf(v any) float64 {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	switch g := m["games"].(type) {
	case float64:
		return g
	case int:
		return float64(g)
	default:
		return 0
	}
}

func isZero(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return x == 0
	case int:
		return x == 0
	case bool:
		return !x
	default:
		return false
	}
}
