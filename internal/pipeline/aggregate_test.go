package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftworks/recap-cli/internal/model"
)

func rec(champ string, role model.RoleName, queueID int, win bool) model.FeatureRecord {
	w := 0
	if win {
		w = 1
	}
	return model.FeatureRecord{
		Champion:      champ,
		Role:          role,
		QueueID:       queueID,
		Win:           w,
		TimePlayedSec: 1800,
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Nil(t, Aggregate(nil))
	assert.Nil(t, Aggregate([]model.FeatureRecord{}))
}

func TestAggregateSeason(t *testing.T) {
	records := []model.FeatureRecord{
		rec("Darius", model.RoleTop, 420, true),
		rec("Darius", model.RoleTop, 420, false),
		rec("Lee Sin", model.RoleJungle, 440, true),
	}
	records[0].CSPerMin = 8.0
	records[1].CSPerMin = 6.0
	records[2].CSPerMin = 4.0
	records[0].ObjectiveDamage = 600
	records[1].ObjectiveDamage = 1200
	records[2].ObjectiveDamage = 900

	doc := Aggregate(records)
	require.NotNil(t, doc)

	assert.Equal(t, 3, doc.Games)
	assert.InDelta(t, 2.0/3.0, doc.Winrate, 1e-9)
	assert.InDelta(t, 6.0, doc.CSPerMinMean, 1e-9)
	assert.InDelta(t, 30.0, doc.AvgGameTimeMin, 1e-9)
	assert.Equal(t, 2700, doc.ObjectiveDamageTotal)

	// Ratio of means: mean damage 900 over mean 30 minutes.
	assert.InDelta(t, 30.0, doc.ObjectiveDamagePMMean, 1e-9)

	require.Len(t, doc.TopChampions, 2)
	assert.Equal(t, model.ChampionGames{Name: "Darius", Games: 2}, doc.TopChampions[0])
	assert.Equal(t, model.ChampionGames{Name: "Lee Sin", Games: 1}, doc.TopChampions[1])

	require.Len(t, doc.RoleDistribution, 2)
	assert.Equal(t, model.RoleGames{Role: model.RoleTop, Games: 2}, doc.RoleDistribution[0])
	assert.Equal(t, model.RoleGames{Role: model.RoleJungle, Games: 1}, doc.RoleDistribution[1])

	assert.Equal(t, 2, doc.SplitRankedSoloDuo.Games)
	require.NotNil(t, doc.SplitRankedSoloDuo.Winrate)
	assert.InDelta(t, 0.5, *doc.SplitRankedSoloDuo.Winrate, 1e-9)

	assert.Equal(t, 1, doc.SplitRankedFlex.Games)
	require.NotNil(t, doc.SplitRankedFlex.Winrate)
	assert.InDelta(t, 1.0, *doc.SplitRankedFlex.Winrate, 1e-9)

	assert.Equal(t, 0, doc.SplitNormals.Games)
	assert.Nil(t, doc.SplitNormals.Winrate)

	assert.Nil(t, doc.LargestGoldLead)
	assert.Nil(t, doc.LargestGoldDeficit)
}

func TestAggregateARAMOutsideSplits(t *testing.T) {
	doc := Aggregate([]model.FeatureRecord{rec("Ziggs", model.RoleARAM, 450, true)})
	require.NotNil(t, doc)

	assert.Equal(t, 0, doc.SplitRankedSoloDuo.Games)
	assert.Equal(t, 0, doc.SplitRankedFlex.Games)
	assert.Equal(t, 0, doc.SplitNormals.Games)
	assert.Nil(t, doc.SplitNormals.Winrate)
}

func TestAggregateOrderIndependence(t *testing.T) {
	records := []model.FeatureRecord{
		rec("Darius", model.RoleTop, 420, true),
		rec("Garen", model.RoleTop, 420, false),
		rec("Lee Sin", model.RoleJungle, 440, true),
		rec("Lux", model.RoleMiddle, 430, false),
	}
	for i := range records {
		records[i].KillParticipation = float64(i) * 0.1
	}

	a := Aggregate(records)

	shuffled := make([]model.FeatureRecord, len(records))
	copy(shuffled, records)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	b := Aggregate(shuffled)

	assert.Equal(t, a.Games, b.Games)
	assert.InDelta(t, a.Winrate, b.Winrate, 1e-12)
	assert.InDelta(t, a.KillParticipationMean, b.KillParticipationMean, 1e-12)
	assert.InDelta(t, a.AvgGameTimeMin, b.AvgGameTimeMin, 1e-12)
	assert.Equal(t, a.SplitRankedSoloDuo, b.SplitRankedSoloDuo)
}

func TestChampionWinrateConditionals(t *testing.T) {
	records := []model.FeatureRecord{
		rec("Darius", model.RoleTop, 420, true),
		rec("Darius", model.RoleTop, 420, false),
		rec("Darius", model.RoleTop, 420, true),
	}
	records[0].FirstBloodInvolved = true // win with first blood
	records[1].TeamFirstBlood = true     // loss with team first blood
	records[2].TeamFirstBlood = true     // win with team first blood

	doc := Aggregate(records)
	require.Len(t, doc.ChampionWinrates, 1)

	cw := doc.ChampionWinrates[0]
	assert.Equal(t, "Darius", cw.Name)
	assert.Equal(t, 3, cw.Games)
	assert.Equal(t, 2, cw.Wins)

	require.NotNil(t, cw.WinrateWhenFBSelf)
	assert.InDelta(t, 1.0, *cw.WinrateWhenFBSelf, 1e-9)
	require.NotNil(t, cw.WinrateWhenTeamFB)
	assert.InDelta(t, 0.5, *cw.WinrateWhenTeamFB, 1e-9)
}

func TestChampionWinrateConditionalsNullWithoutSample(t *testing.T) {
	doc := Aggregate([]model.FeatureRecord{rec("Garen", model.RoleTop, 420, true)})
	require.Len(t, doc.ChampionWinrates, 1)
	assert.Nil(t, doc.ChampionWinrates[0].WinrateWhenFBSelf)
	assert.Nil(t, doc.ChampionWinrates[0].WinrateWhenTeamFB)
}

func TestUnnamedChampionBucketsAsUnknown(t *testing.T) {
	records := []model.FeatureRecord{
		rec("", model.RoleUnknown, 420, true),
		rec("Darius", model.RoleTop, 420, false),
	}
	doc := Aggregate(records)

	// Blank names never rank in top champions but do get a winrate row.
	require.Len(t, doc.TopChampions, 1)
	assert.Equal(t, "Darius", doc.TopChampions[0].Name)

	names := make([]string, 0, len(doc.ChampionWinrates))
	for _, cw := range doc.ChampionWinrates {
		names = append(names, cw.Name)
	}
	assert.Contains(t, names, "Unknown")
}

func TestItemMinSample(t *testing.T) {
	var records []model.FeatureRecord
	// Item 3031 in all 10 games, item 6672 in only 9.
	for i := 0; i < 10; i++ {
		r := rec("Jinx", model.RoleBottom, 420, i < 6)
		r.ItemsFinal = []int{3031}
		if i < 9 {
			r.ItemsFinal = append(r.ItemsFinal, 6672)
			r.Win = 1
		}
		records = append(records, r)
	}

	doc := Aggregate(records)

	require.Len(t, doc.FavoriteItems, 2)
	assert.Equal(t, model.ItemGames{ItemID: 3031, Games: 10}, doc.FavoriteItems[0])
	assert.Equal(t, model.ItemGames{ItemID: 6672, Games: 9}, doc.FavoriteItems[1])

	// Only 3031 reaches the 10-game floor for rated lists.
	require.Len(t, doc.BestItems, 1)
	assert.Equal(t, 3031, doc.BestItems[0].ItemID)
	require.Len(t, doc.WorstItems, 1)
	assert.Equal(t, 3031, doc.WorstItems[0].ItemID)
}

func TestWorstItemsAreTailOfRanking(t *testing.T) {
	var records []model.FeatureRecord
	items := []int{1001, 1002, 1003, 1004, 1005, 1006, 1007}
	for g := 0; g < 10; g++ {
		for idx, it := range items {
			// Item idx wins in idx games out of 10: distinct winrates.
			r := rec("Jinx", model.RoleBottom, 420, g < idx)
			r.ItemsFinal = []int{it}
			records = append(records, r)
		}
	}

	doc := Aggregate(records)

	require.Len(t, doc.BestItems, 5)
	assert.Equal(t, 1007, doc.BestItems[0].ItemID)
	require.Len(t, doc.WorstItems, 5)
	assert.Equal(t, 1001, doc.WorstItems[4].ItemID)

	// Seven qualifying items: the five-item lists overlap in the middle.
	assert.Equal(t, doc.BestItems[4].ItemID, doc.WorstItems[2].ItemID)
}

func TestFavoriteDamageType(t *testing.T) {
	r1 := rec("Lux", model.RoleMiddle, 420, true)
	r1.MagicToChamps = 30000
	r1.PhysToChamps = 5000
	doc := Aggregate([]model.FeatureRecord{r1})
	require.NotNil(t, doc.FavoriteDamageType)
	assert.Equal(t, "MAGIC", *doc.FavoriteDamageType)

	doc = Aggregate([]model.FeatureRecord{rec("Lux", model.RoleMiddle, 420, true)})
	assert.Nil(t, doc.FavoriteDamageType)
}

func TestSpellStats(t *testing.T) {
	r1 := rec("Lux", model.RoleMiddle, 420, true)
	r1.Spell1, r1.Spell2, r1.FlashCasts = 4, 14, 7
	r2 := rec("Lux", model.RoleMiddle, 420, false)
	r2.Spell1, r2.Spell2, r2.FlashCasts = 4, 12, 5

	doc := Aggregate([]model.FeatureRecord{r1, r2})
	require.NotNil(t, doc.FavoriteSummonerSpell)
	assert.Equal(t, 4, *doc.FavoriteSummonerSpell)
	assert.Equal(t, 12, doc.FlashCastsTotal)
	assert.InDelta(t, 6.0, doc.FlashCastsPerGame, 1e-9)
}

func TestDuoStats(t *testing.T) {
	var records []model.FeatureRecord
	// mate-a: 5 games, 4 wins. mate-b: 5 games, 1 win. mate-c: 4 games.
	for i := 0; i < 5; i++ {
		r := rec("Jinx", model.RoleBottom, 420, i < 4)
		r.Teammates = []string{"mate-a"}
		r.TeammateNames = map[string]string{"mate-a": "Alice"}
		records = append(records, r)
	}
	for i := 0; i < 5; i++ {
		r := rec("Jinx", model.RoleBottom, 420, i < 1)
		r.Teammates = []string{"mate-b"}
		r.TeammateNames = map[string]string{"mate-b": "Bob"}
		records = append(records, r)
	}
	for i := 0; i < 4; i++ {
		r := rec("Jinx", model.RoleBottom, 420, true)
		r.Teammates = []string{"mate-c"}
		records = append(records, r)
	}

	doc := Aggregate(records)

	require.NotNil(t, doc.DuoMostPlayed)
	assert.Equal(t, "mate-a", doc.DuoMostPlayed.MatePUUID)
	assert.Equal(t, "Alice", doc.DuoMostPlayed.Name)
	assert.Equal(t, 5, doc.DuoMostPlayed.Games)

	require.NotNil(t, doc.DuoBest)
	assert.Equal(t, "mate-a", doc.DuoBest.MatePUUID)
	require.NotNil(t, doc.DuoWorst)
	assert.Equal(t, "mate-b", doc.DuoWorst.MatePUUID)
}

func TestDuoStatsBelowMinSample(t *testing.T) {
	var records []model.FeatureRecord
	for i := 0; i < 4; i++ {
		r := rec("Jinx", model.RoleBottom, 420, true)
		r.Teammates = []string{"mate-a"}
		records = append(records, r)
	}

	doc := Aggregate(records)
	require.NotNil(t, doc.DuoMostPlayed)
	assert.Nil(t, doc.DuoBest)
	assert.Nil(t, doc.DuoWorst)
}

func TestDuoStatsNoTeammates(t *testing.T) {
	doc := Aggregate([]model.FeatureRecord{rec("Jinx", model.RoleBottom, 420, true)})
	assert.Nil(t, doc.DuoMostPlayed)
	assert.Nil(t, doc.DuoBest)
	assert.Nil(t, doc.DuoWorst)
}
