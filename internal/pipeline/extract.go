package pipeline

import (
	"github.com/riftworks/recap-cli/internal/model"
)

// minuteFloor guards the per-minute rate denominators against zero-length
// games.
const minuteFloor = 0.0001

// spellFlash is the Flash summoner spell id.
const spellFlash = 4

// Item ids excluded from build statistics: trinkets and common consumables.
// Boots are deliberately kept.
var ignoredItems = map[int]bool{
	// trinkets
	3340: true, 3363: true, 3364: true,
	// consumables
	2003: true, 2010: true, 2031: true, 2033: true,
	2138: true, 2139: true, 2140: true,
}

// safeDiv divides n by d, returning 0 when the denominator is zero.
func safeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// Extract converts one raw match into the flat feature row for the target
// player. Returns nil when the player is not in the match; that is the only
// failure mode and it is a soft skip, never an error.
func Extract(m *model.Match, puuid string) *model.FeatureRecord {
	info := m.Info

	var me *model.Participant
	for i := range info.Participants {
		if info.Participants[i].PUUID == puuid {
			me = &info.Participants[i]
			break
		}
	}
	if me == nil {
		return nil
	}

	durationSec := info.GameDuration
	if durationSec == 0 {
		durationSec = me.TimePlayed
	}
	mins := float64(durationSec) / 60.0
	if mins == 0 {
		mins = minuteFloor
	}

	var team []*model.Participant
	for i := range info.Participants {
		if info.Participants[i].TeamID == me.TeamID {
			team = append(team, &info.Participants[i])
		}
	}

	var teamKills, teamDamage int
	var teamDragonMax, teamBaronMax, teamHeraldMax int
	for _, p := range team {
		teamKills += p.Kills
		teamDamage += p.TotalDamageDealtToChampions
		teamDragonMax = max(teamDragonMax, p.Challenges.DragonTakedowns)
		teamBaronMax = max(teamBaronMax, p.Challenges.BaronTakedowns)
		teamHeraldMax = max(teamHeraldMax, p.Challenges.RiftHeraldTakedowns)
	}
	myObjectives := me.Challenges.DragonTakedowns + me.Challenges.BaronTakedowns + me.Challenges.RiftHeraldTakedowns
	// Denominator is the per-type team maximum, summed across types: the
	// team's best-case objective participation, not its total takedowns.
	teamObjectiveBest := teamDragonMax + teamBaronMax + teamHeraldMax

	cs := me.TotalMinionsKilled + me.NeutralMinionsKilled

	var teamObj model.Objectives
	for _, t := range info.Teams {
		if t.TeamID == me.TeamID {
			teamObj = t.Objectives
			break
		}
	}

	teammates := make([]string, 0, len(team))
	teammateNames := make(map[string]string, len(team))
	for _, p := range team {
		if p.PUUID == "" {
			continue
		}
		teammateNames[p.PUUID] = p.DisplayName()
		if p.PUUID != puuid {
			teammates = append(teammates, p.PUUID)
		}
	}

	var items []int
	for _, it := range me.Items() {
		if it != 0 && !ignoredItems[it] {
			items = append(items, it)
		}
	}

	var flashCasts int
	if me.Summoner1ID == spellFlash {
		flashCasts += me.Summoner1Casts
	}
	if me.Summoner2ID == spellFlash {
		flashCasts += me.Summoner2Casts
	}

	timePlayedSec := me.TimePlayed
	if timePlayedSec == 0 {
		timePlayedSec = info.GameDuration
	}

	win := 0
	if me.Win {
		win = 1
	}

	fbSelf := me.FirstBloodKill || me.FirstBloodAssist

	return &model.FeatureRecord{
		MatchID:        m.Metadata.MatchID,
		QueueID:        info.QueueID,
		TimePlayedSec:  timePlayedSec,
		Win:            win,
		GameCreationMS: info.GameCreation,
		GameVersion:    info.GameVersion,
		Champion:       me.ChampionName,
		Role:           NormalizeRole(me.TeamPosition, me.Lane, me.Role, info.QueueID),

		KillParticipation: safeDiv(float64(me.Kills+me.Assists), float64(teamKills)),
		DamageShare:       safeDiv(float64(me.TotalDamageDealtToChampions), float64(teamDamage)),
		CSPerMin:          safeDiv(float64(cs), mins),
		VisionPerMin:      safeDiv(float64(me.VisionScore), mins),
		ObjectiveContrib:  safeDiv(float64(myObjectives), float64(teamObjectiveBest)),

		Kills:         me.Kills,
		Deaths:        me.Deaths,
		Assists:       me.Assists,
		KDA:           float64(me.Kills+me.Assists) / float64(max(me.Deaths, 1)),
		GoldPerMin:    safeDiv(float64(me.GoldEarned), mins),
		DamagePerMin:  safeDiv(float64(me.TotalDamageDealtToChampions), mins),
		DamageTakenPM: safeDiv(float64(me.TotalDamageTaken), mins),
		HealShieldPM:  safeDiv(float64(me.TotalHealsOnTeammates+me.TotalDamageShieldedOnTeammates), mins),
		VisionWards:   me.VisionWardsBoughtInGame,
		WardsKilled:   me.WardsKilled,
		SoloKills:     me.Challenges.SoloKills,
		DoubleKills:   me.DoubleKills,
		TripleKills:   me.TripleKills,
		QuadraKills:   me.QuadraKills,
		PentaKills:    me.PentaKills,

		PhysToChamps:  me.PhysicalDamageDealtToChampions,
		MagicToChamps: me.MagicDamageDealtToChampions,
		TrueToChamps:  me.TrueDamageDealtToChampions,

		TurretKills:     me.TurretKills,
		DragonsKilled:   me.DragonKills,
		BaronsKilled:    me.BaronKills,
		HeraldsKilled:   me.RiftHeraldKills,
		GrubsKilled:     me.Challenges.GrubKills(),
		ObjectiveDamage: me.DamageDealtToObjectives,

		FirstBloodInvolved: fbSelf,
		TeamFirstBlood:     teamObj.Champion.First,
		TeamFirstTower:     teamObj.Tower.First,
		TeamFirstDragon:    teamObj.Dragon.First,
		TeamFirstBaron:     teamObj.Baron.First,
		TeamFirstHerald:    teamObj.RiftHerald.First,

		ItemsFinal:    items,
		Spell1:        me.Summoner1ID,
		Spell2:        me.Summoner2ID,
		FlashCasts:    flashCasts,
		Teammates:     teammates,
		TeammateNames: teammateNames,
	}
}
