package model

// KpiDocument is the season-level aggregate for one player and one year.
// Field names are the persisted contract: the recap and coach generators
// read this document by name, so they must not change.
type KpiDocument struct {
	Games   int     `json:"games"`
	Winrate float64 `json:"winrate"`

	KillParticipationMean float64 `json:"kill_participation_mean"`
	DamageShareMean       float64 `json:"damage_share_mean"`
	CSPerMinMean          float64 `json:"cs_per_min_mean"`
	VisionPerMinMean      float64 `json:"vision_pm_mean"`
	ObjectiveContribMean  float64 `json:"objective_contrib_mean"`
	GoldPerMinMean        float64 `json:"gold_per_min_mean"`
	DamagePerMinMean      float64 `json:"dmg_per_min_mean"`
	DamageTakenPMMean     float64 `json:"dmg_taken_pm_mean"`

	TurretsKilledTotal    int     `json:"turrets_killed_total"`
	DragonsKilledTotal    int     `json:"dragons_killed_total"`
	BaronsKilledTotal     int     `json:"barons_killed_total"`
	HeraldsKilledTotal    int     `json:"heralds_killed_total"`
	GrubsKilledTotal      int     `json:"grubs_killed_total"`
	ObjectiveDamageTotal  int     `json:"objective_damage_total"`
	ObjectiveDamagePMMean float64 `json:"objective_damage_pm_mean"`

	FirstBloodRateSelf float64 `json:"first_blood_rate_self"`
	AvgGameTimeMin     float64 `json:"avg_game_time_min"`

	FavoriteDamageType *string `json:"favorite_damage_type"`

	TopChampions     []ChampionGames `json:"top_champions"`
	RoleDistribution []RoleGames     `json:"role_distribution"`

	FavoriteItems []ItemGames `json:"favorite_items"`
	BestItems     []ItemStat  `json:"best_items"`
	WorstItems    []ItemStat  `json:"worst_items"`

	FavoriteSummonerSpell *int    `json:"favorite_summoner_spell"`
	FlashCastsTotal       int     `json:"flash_casts_total"`
	FlashCastsPerGame     float64 `json:"flash_casts_per_game"`

	DuoMostPlayed *DuoStat `json:"duo_most_played"`
	DuoBest       *DuoStat `json:"duo_best"`
	DuoWorst      *DuoStat `json:"duo_worst"`

	SplitRankedSoloDuo QueueSplit `json:"split_ranked_solo_duo"`
	SplitRankedFlex    QueueSplit `json:"split_ranked_flex"`
	SplitNormals       QueueSplit `json:"split_normals"`

	ChampionWinrates []ChampionWinrate `json:"champion_winrates"`

	WhenFirstBloodSelf QueueSplit `json:"when_fb_self"`
	WhenTeamFirstBlood QueueSplit `json:"when_team_first_blood"`
	WhenFirstTower     QueueSplit `json:"when_first_tower"`
	WhenFirstDragon    QueueSplit `json:"when_first_dragon"`
	WhenFirstBaron     QueueSplit `json:"when_first_baron"`
	WhenFirstHerald    QueueSplit `json:"when_first_herald"`

	// Timeline-derived gold swings; reserved, always null until the
	// timeline pass lands.
	LargestGoldLead    *GoldSwing `json:"largest_gold_lead"`
	LargestGoldDeficit *GoldSwing `json:"largest_gold_deficit"`
}

// ChampionGames ranks a champion by games played.
type ChampionGames struct {
	Name  string `json:"name"`
	Games int    `json:"games"`
}

// RoleGames counts games in one normalized role.
type RoleGames struct {
	Role  RoleName `json:"role"`
	Games int      `json:"games"`
}

// ItemGames ranks an item by games it appeared in the final build.
type ItemGames struct {
	ItemID int `json:"itemId"`
	Games  int `json:"games"`
}

// ItemStat is an item with its win rate over the games it was built.
type ItemStat struct {
	ItemID  int     `json:"itemId"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`
}

// DuoStat is the co-play record with one recurring teammate.
type DuoStat struct {
	MatePUUID string  `json:"mate_puuid"`
	Name      string  `json:"name"`
	Games     int     `json:"games"`
	Wins      int     `json:"wins"`
	Winrate   float64 `json:"winrate"`
}

// QueueSplit is a (games, winrate) pair for a subset of matches. Winrate
// is null when the subset is empty.
type QueueSplit struct {
	Games   int      `json:"games"`
	Winrate *float64 `json:"winrate"`
}

// ChampionWinrate is the per-champion record with conditional win rates.
// The conditionals are null when the champion has no qualifying games.
type ChampionWinrate struct {
	Name              string   `json:"name"`
	Games             int      `json:"games"`
	Wins              int      `json:"wins"`
	Winrate           float64  `json:"winrate"`
	WinrateWhenFBSelf *float64 `json:"winrate_when_fb_self"`
	WinrateWhenTeamFB *float64 `json:"winrate_when_team_fb"`
}

// GoldSwing locates the largest gold lead or deficit of the season.
type GoldSwing struct {
	MatchID string `json:"match_id"`
	DateISO string `json:"date_iso"`
	Gold    int    `json:"gold"`
}

// KpiEnvelope is the persisted KPI object: kpis/{puuid}/{year}.json.
type KpiEnvelope struct {
	PUUID string `json:"puuid"`
	Year  string `json:"year"`
	Kpis  any    `json:"kpis"`
}

// Recap is the strict-JSON season recap produced by the model.
type Recap struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Awards       []Award  `json:"awards"`
}

// Award is one named award with the model's one-line justification.
type Award struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}
