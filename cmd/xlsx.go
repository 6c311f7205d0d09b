package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/riftworks/recap-cli/internal/model"
)

// exportXlsx writes the KPI envelope as a workbook: one overview sheet of
// scalar metrics plus sheets for champions, items and duos.
func exportXlsx(path string, envelope map[string]any) error {
	raw, err := json.Marshal(envelope)
	if err != nil {
		return eris.Wrap(err, "re-marshal envelope")
	}
	var typed struct {
		PUUID string            `json:"puuid"`
		Year  string            `json:"year"`
		Kpis  model.KpiDocument `json:"kpis"`
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return eris.Wrap(err, "decode envelope")
	}
	k := typed.Kpis

	file := xlsx.NewFile()

	overview, err := file.AddSheet("Overview")
	if err != nil {
		return eris.Wrap(err, "add overview sheet")
	}
	addKV := func(name string, value any) {
		row := overview.AddRow()
		row.AddCell().Value = name
		switch v := value.(type) {
		case int:
			row.AddCell().SetInt(v)
		case float64:
			row.AddCell().SetFloat(v)
		case string:
			row.AddCell().Value = v
		default:
			row.AddCell().Value = fmt.Sprint(v)
		}
	}

	addKV("puuid", typed.PUUID)
	addKV("year", typed.Year)
	addKV("games", k.Games)
	addKV("winrate", k.Winrate)
	addKV("avg_game_time_min", k.AvgGameTimeMin)
	addKV("kill_participation_mean", k.KillParticipationMean)
	addKV("damage_share_mean", k.DamageShareMean)
	addKV("cs_per_min_mean", k.CSPerMinMean)
	addKV("vision_pm_mean", k.VisionPerMinMean)
	addKV("gold_per_min_mean", k.GoldPerMinMean)
	addKV("dmg_per_min_mean", k.DamagePerMinMean)
	addKV("dmg_taken_pm_mean", k.DamageTakenPMMean)
	addKV("objective_contrib_mean", k.ObjectiveContribMean)
	addKV("objective_damage_total", k.ObjectiveDamageTotal)
	addKV("turrets_killed_total", k.TurretsKilledTotal)
	addKV("dragons_killed_total", k.DragonsKilledTotal)
	addKV("barons_killed_total", k.BaronsKilledTotal)
	addKV("heralds_killed_total", k.HeraldsKilledTotal)
	addKV("grubs_killed_total", k.GrubsKilledTotal)
	addKV("first_blood_rate_self", k.FirstBloodRateSelf)
	addKV("flash_casts_total", k.FlashCastsTotal)
	addKV("flash_casts_per_game", k.FlashCastsPerGame)
	if k.FavoriteDamageType != nil {
		addKV("favorite_damage_type", *k.FavoriteDamageType)
	}
	if k.FavoriteSummonerSpell != nil {
		addKV("favorite_summoner_spell", *k.FavoriteSummonerSpell)
	}

	champs, err := file.AddSheet("Champions")
	if err != nil {
		return eris.Wrap(err, "add champions sheet")
	}
	header := champs.AddRow()
	for _, h := range []string{"champion", "games", "wins", "winrate", "winrate_when_fb_self", "winrate_when_team_fb"} {
		header.AddCell().Value = h
	}
	for _, cw := range k.ChampionWinrates {
		row := champs.AddRow()
		row.AddCell().Value = cw.Name
		row.AddCell().SetInt(cw.Games)
		row.AddCell().SetInt(cw.Wins)
		row.AddCell().SetFloat(cw.Winrate)
		addOptFloat(row, cw.WinrateWhenFBSelf)
		addOptFloat(row, cw.WinrateWhenTeamFB)
	}

	items, err := file.AddSheet("Items")
	if err != nil {
		return eris.Wrap(err, "add items sheet")
	}
	header = items.AddRow()
	for _, h := range []string{"list", "itemId", "games", "wins", "winrate"} {
		header.AddCell().Value = h
	}
	for _, ig := range k.FavoriteItems {
		row := items.AddRow()
		row.AddCell().Value = "favorite"
		row.AddCell().SetInt(ig.ItemID)
		row.AddCell().SetInt(ig.Games)
	}
	for _, list := range []struct {
		name  string
		stats []model.ItemStat
	}{{"best", k.BestItems}, {"worst", k.WorstItems}} {
		for _, is := range list.stats {
			row := items.AddRow()
			row.AddCell().Value = list.name
			row.AddCell().SetInt(is.ItemID)
			row.AddCell().SetInt(is.Games)
			row.AddCell().SetInt(is.Wins)
			row.AddCell().SetFloat(is.Winrate)
		}
	}

	duos, err := file.AddSheet("Duos")
	if err != nil {
		return eris.Wrap(err, "add duos sheet")
	}
	header = duos.AddRow()
	for _, h := range []string{"slot", "name", "mate_puuid", "games", "wins", "winrate"} {
		header.AddCell().Value = h
	}
	duoRows := map[string]*model.DuoStat{
		"most_played": k.DuoMostPlayed,
		"best":        k.DuoBest,
		"worst":       k.DuoWorst,
	}
	slots := make([]string, 0, len(duoRows))
	for slot := range duoRows {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		d := duoRows[slot]
		if d == nil {
			continue
		}
		row := duos.AddRow()
		row.AddCell().Value = slot
		row.AddCell().Value = d.Name
		row.AddCell().Value = d.MatePUUID
		row.AddCell().SetInt(d.Games)
		row.AddCell().SetInt(d.Wins)
		row.AddCell().SetFloat(d.Winrate)
	}

	return eris.Wrapf(file.Save(path), "save %s", path)
}

func addOptFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}
