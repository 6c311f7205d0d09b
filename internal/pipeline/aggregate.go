package pipeline

import (
	"sort"

	"github.com/riftworks/recap-cli/internal/model"
)

// Ranking limits and minimum sample sizes.
const (
	topChampions     = 5
	topChampionRates = 20
	topFavoriteItems = 10
	topRatedItems    = 5
	minItemGames     = 10
	minDuoGames      = 5
)

// Queue buckets for split stats. ARAM (450) is deliberately in no bucket.
var (
	queuesRankedSoloDuo = map[int]bool{420: true}
	queuesRankedFlex    = map[int]bool{440: true}
	queuesNormals       = map[int]bool{400: true, 430: true, 490: true}
)

// Aggregate folds per-match feature rows into the season KPI document.
// A pure, deterministic fold: aggregate values are order-independent, and
// ranked lists break count ties by first-encounter order (stable sort).
// Returns nil for an empty input, never an error.
func Aggregate(records []model.FeatureRecord) *model.KpiDocument {
	if len(records) == 0 {
		return nil
	}
	n := float64(len(records))

	mean := func(get func(*model.FeatureRecord) float64) float64 {
		var sum float64
		for i := range records {
			sum += get(&records[i])
		}
		return safeDiv(sum, n)
	}
	sumInt := func(get func(*model.FeatureRecord) int) int {
		var sum int
		for i := range records {
			sum += get(&records[i])
		}
		return sum
	}

	wins := sumInt(func(r *model.FeatureRecord) int { return r.Win })
	timePlayedMean := mean(func(r *model.FeatureRecord) float64 { return float64(r.TimePlayedSec) })
	objDamageMean := mean(func(r *model.FeatureRecord) float64 { return float64(r.ObjectiveDamage) })

	doc := &model.KpiDocument{
		Games:   len(records),
		Winrate: safeDiv(float64(wins), n),

		KillParticipationMean: mean(func(r *model.FeatureRecord) float64 { return r.KillParticipation }),
		DamageShareMean:       mean(func(r *model.FeatureRecord) float64 { return r.DamageShare }),
		CSPerMinMean:          mean(func(r *model.FeatureRecord) float64 { return r.CSPerMin }),
		VisionPerMinMean:      mean(func(r *model.FeatureRecord) float64 { return r.VisionPerMin }),
		ObjectiveContribMean:  mean(func(r *model.FeatureRecord) float64 { return r.ObjectiveContrib }),
		GoldPerMinMean:        mean(func(r *model.FeatureRecord) float64 { return r.GoldPerMin }),
		DamagePerMinMean:      mean(func(r *model.FeatureRecord) float64 { return r.DamagePerMin }),
		DamageTakenPMMean:     mean(func(r *model.FeatureRecord) float64 { return r.DamageTakenPM }),

		TurretsKilledTotal:   sumInt(func(r *model.FeatureRecord) int { return r.TurretKills }),
		DragonsKilledTotal:   sumInt(func(r *model.FeatureRecord) int { return r.DragonsKilled }),
		BaronsKilledTotal:    sumInt(func(r *model.FeatureRecord) int { return r.BaronsKilled }),
		HeraldsKilledTotal:   sumInt(func(r *model.FeatureRecord) int { return r.HeraldsKilled }),
		GrubsKilledTotal:     sumInt(func(r *model.FeatureRecord) int { return r.GrubsKilled }),
		ObjectiveDamageTotal: sumInt(func(r *model.FeatureRecord) int { return r.ObjectiveDamage }),

		// Ratio of means, not mean of per-match ratios.
		ObjectiveDamagePMMean: objDamageMean / max(timePlayedMean/60.0, 1e-9),

		FirstBloodRateSelf: mean(func(r *model.FeatureRecord) float64 {
			if r.FirstBloodInvolved {
				return 1
			}
			return 0
		}),
		AvgGameTimeMin: timePlayedMean / 60.0,
	}

	doc.FavoriteDamageType = favoriteDamageType(records)
	doc.TopChampions, doc.ChampionWinrates = championStats(records)
	doc.RoleDistribution = roleDistribution(records)
	doc.FavoriteItems, doc.BestItems, doc.WorstItems = itemStats(records)
	doc.FavoriteSummonerSpell, doc.FlashCastsTotal = spellStats(records)
	doc.FlashCastsPerGame = safeDiv(float64(doc.FlashCastsTotal), n)
	doc.DuoMostPlayed, doc.DuoBest, doc.DuoWorst = duoStats(records)

	doc.SplitRankedSoloDuo = subsetWinrate(records, func(r *model.FeatureRecord) bool { return queuesRankedSoloDuo[r.QueueID] })
	doc.SplitRankedFlex = subsetWinrate(records, func(r *model.FeatureRecord) bool { return queuesRankedFlex[r.QueueID] })
	doc.SplitNormals = subsetWinrate(records, func(r *model.FeatureRecord) bool { return queuesNormals[r.QueueID] })

	doc.WhenFirstBloodSelf = subsetWinrate(records, func(r *model.FeatureRecord) bool { return r.FirstBloodInvolved })
	doc.WhenTeamFirstBlood = subsetWinrate(records, func(r *model.FeatureRecord) bool { return r.TeamFirstBlood })
	doc.WhenFirstTower = subsetWinrate(records, func(r *model.FeatureRecord) bool { return r.TeamFirstTower })
	doc.WhenFirstDragon = subsetWinrate(records, func(r *model.FeatureRecord) bool { return r.TeamFirstDragon })
	doc.WhenFirstBaron = subsetWinrate(records, func(r *model.FeatureRecord) bool { return r.TeamFirstBaron })
	doc.WhenFirstHerald = subsetWinrate(records, func(r *model.FeatureRecord) bool { return r.TeamFirstHerald })

	// Gold swings need the timeline pass; emitted as nulls for now.
	doc.LargestGoldLead = nil
	doc.LargestGoldDeficit = nil

	return doc
}

func favoriteDamageType(records []model.FeatureRecord) *string {
	var phys, magic, tru int
	for i := range records {
		phys += records[i].PhysToChamps
		magic += records[i].MagicToChamps
		tru += records[i].TrueToChamps
	}
	if phys+magic+tru == 0 {
		return nil
	}
	fav := "PHYSICAL"
	best := phys
	if magic > best {
		fav, best = "MAGIC", magic
	}
	if tru > best {
		fav = "TRUE"
	}
	return &fav
}

// counter accumulates keyed tallies while remembering first-encounter
// order, so count ties rank in the order the key was first seen.
type counter[K comparable] struct {
	order  []K
	counts map[K]int
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]int)}
}

func (c *counter[K]) add(key K, delta int) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += delta
}

// ranked returns keys sorted by count descending, ties in encounter order.
func (c *counter[K]) ranked() []K {
	out := make([]K, len(c.order))
	copy(out, c.order)
	sort.SliceStable(out, func(i, j int) bool {
		return c.counts[out[i]] > c.counts[out[j]]
	})
	return out
}

type winLoss struct {
	games int
	wins  int

	fbSelfGames int
	fbSelfWins  int
	teamFBGames int
	teamFBWins  int
}

func championStats(records []model.FeatureRecord) ([]model.ChampionGames, []model.ChampionWinrate) {
	played := newCounter[string]()
	byChamp := make(map[string]*winLoss)
	var order []string

	for i := range records {
		r := &records[i]
		if r.Champion != "" {
			played.add(r.Champion, 1)
		}

		name := r.Champion
		if name == "" {
			name = "Unknown"
		}
		wl, ok := byChamp[name]
		if !ok {
			wl = &winLoss{}
			byChamp[name] = wl
			order = append(order, name)
		}
		wl.games++
		wl.wins += r.Win
		if r.FirstBloodInvolved {
			wl.fbSelfGames++
			wl.fbSelfWins += r.Win
		}
		if r.TeamFirstBlood {
			wl.teamFBGames++
			wl.teamFBWins += r.Win
		}
	}

	rankedNames := played.ranked()
	top := make([]model.ChampionGames, 0, topChampions)
	for _, name := range rankedNames {
		if len(top) == topChampions {
			break
		}
		top = append(top, model.ChampionGames{Name: name, Games: played.counts[name]})
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byChamp[order[i]].games > byChamp[order[j]].games
	})
	rates := make([]model.ChampionWinrate, 0, min(topChampionRates, len(order)))
	for _, name := range order {
		if len(rates) == topChampionRates {
			break
		}
		wl := byChamp[name]
		cw := model.ChampionWinrate{
			Name:    name,
			Games:   wl.games,
			Wins:    wl.wins,
			Winrate: safeDiv(float64(wl.wins), float64(wl.games)),
		}
		if wl.fbSelfGames > 0 {
			v := safeDiv(float64(wl.fbSelfWins), float64(wl.fbSelfGames))
			cw.WinrateWhenFBSelf = &v
		}
		if wl.teamFBGames > 0 {
			v := safeDiv(float64(wl.teamFBWins), float64(wl.teamFBGames))
			cw.WinrateWhenTeamFB = &v
		}
		rates = append(rates, cw)
	}
	return top, rates
}

func roleDistribution(records []model.FeatureRecord) []model.RoleGames {
	roles := newCounter[model.RoleName]()
	for i := range records {
		role := records[i].Role
		if role == "" {
			role = model.RoleUnknown
		}
		roles.add(role, 1)
	}
	out := make([]model.RoleGames, 0, len(roles.order))
	for _, role := range roles.ranked() {
		out = append(out, model.RoleGames{Role: role, Games: roles.counts[role]})
	}
	return out
}

func itemStats(records []model.FeatureRecord) ([]model.ItemGames, []model.ItemStat, []model.ItemStat) {
	games := newCounter[int]()
	wins := make(map[int]int)
	for i := range records {
		for _, it := range records[i].ItemsFinal {
			games.add(it, 1)
			wins[it] += records[i].Win
		}
	}

	favorites := make([]model.ItemGames, 0, topFavoriteItems)
	for _, it := range games.ranked() {
		if len(favorites) == topFavoriteItems {
			break
		}
		favorites = append(favorites, model.ItemGames{ItemID: it, Games: games.counts[it]})
	}

	// Best/worst by win rate over items with enough sample. When fewer
	// than 2*topRatedItems items qualify the two lists overlap; expected.
	var ranked []model.ItemStat
	for _, it := range games.order {
		g := games.counts[it]
		if g < minItemGames {
			continue
		}
		w := wins[it]
		ranked = append(ranked, model.ItemStat{
			ItemID:  it,
			Games:   g,
			Wins:    w,
			Winrate: safeDiv(float64(w), float64(g)),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Winrate > ranked[j].Winrate })

	best := ranked[:min(topRatedItems, len(ranked))]
	worst := ranked[max(0, len(ranked)-topRatedItems):]
	return favorites, best, worst
}

func spellStats(records []model.FeatureRecord) (*int, int) {
	spells := newCounter[int]()
	var flashTotal int
	for i := range records {
		if records[i].Spell1 != 0 {
			spells.add(records[i].Spell1, 1)
		}
		if records[i].Spell2 != 0 {
			spells.add(records[i].Spell2, 1)
		}
		flashTotal += records[i].FlashCasts
	}
	ranked := spells.ranked()
	if len(ranked) == 0 {
		return nil, flashTotal
	}
	fav := ranked[0]
	return &fav, flashTotal
}

func duoStats(records []model.FeatureRecord) (mostPlayed, best, worst *model.DuoStat) {
	type duoAcc struct {
		games int
		wins  int
		name  string
	}
	byMate := make(map[string]*duoAcc)
	var order []string

	for i := range records {
		r := &records[i]
		for _, mate := range r.Teammates {
			acc, ok := byMate[mate]
			if !ok {
				acc = &duoAcc{}
				byMate[mate] = acc
				order = append(order, mate)
			}
			acc.games++
			acc.wins += r.Win
			if name := r.TeammateNames[mate]; name != "" {
				acc.name = name
			}
		}
	}
	if len(order) == 0 {
		return nil, nil, nil
	}

	stats := make([]model.DuoStat, 0, len(order))
	for _, mate := range order {
		acc := byMate[mate]
		name := acc.name
		if name == "" {
			name = "Unknown"
		}
		stats = append(stats, model.DuoStat{
			MatePUUID: mate,
			Name:      name,
			Games:     acc.games,
			Wins:      acc.wins,
			Winrate:   safeDiv(float64(acc.wins), float64(acc.games)),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Games > stats[j].Games })
	mostPlayed = &stats[0]

	for i := range stats {
		d := &stats[i]
		if d.Games < minDuoGames {
			continue
		}
		if best == nil || d.Winrate > best.Winrate {
			best = d
		}
		if worst == nil || d.Winrate < worst.Winrate {
			worst = d
		}
	}
	return mostPlayed, best, worst
}

func subsetWinrate(records []model.FeatureRecord, pred func(*model.FeatureRecord) bool) model.QueueSplit {
	var games, wins int
	for i := range records {
		if pred(&records[i]) {
			games++
			wins += records[i].Win
		}
	}
	split := model.QueueSplit{Games: games}
	if games > 0 {
		wr := safeDiv(float64(wins), float64(games))
		split.Winrate = &wr
	}
	return split
}
