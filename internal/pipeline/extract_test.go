package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftworks/recap-cli/internal/model"
)

func extractFixture() model.Match {
	return model.Match{
		Metadata: model.MatchMetadata{MatchID: "NA1_100"},
		Info: model.MatchInfo{
			GameCreation: 1717000000000,
			GameDuration: 1800,
			GameVersion:  "14.10.1",
			PlatformID:   "NA1",
			QueueID:      420,
			Participants: []model.Participant{
				{
					PUUID:        "me",
					TeamID:       100,
					ChampionName: "Ahri",
					TeamPosition: "MIDDLE",
					SummonerName: "MeIRL",
					Win:          true,
					TimePlayed:   1800,
					Kills:        4, Deaths: 0, Assists: 6,
					TotalMinionsKilled:   150,
					NeutralMinionsKilled: 30,
					VisionScore:          24,
					GoldEarned:           12000,

					TotalDamageDealtToChampions: 20000,
					MagicDamageDealtToChampions: 18000,
					DamageDealtToObjectives:     4500,

					FirstBloodAssist: true,

					Item0: 3031, Item1: 3340, Item2: 2003,
					Item3: 3047, Item4: 0, Item5: 0, Item6: 3363,

					Summoner1ID: 4, Summoner1Casts: 5,
					Summoner2ID: 14, Summoner2Casts: 3,

					Challenges: model.Challenges{
						DragonTakedowns: 2,
						BaronTakedowns:  1,
						SoloKills:       2,
						VoidgrubKills:   3,
					},
				},
				{
					PUUID:          "mate-1",
					TeamID:         100,
					RiotIDGameName: "Mate",
					ChampionName:   "Thresh",
					Kills:          6,

					TotalDamageDealtToChampions: 10000,

					Challenges: model.Challenges{
						DragonTakedowns:     3,
						RiftHeraldTakedowns: 1,
					},
				},
				{
					PUUID:        "enemy-1",
					TeamID:       200,
					ChampionName: "Zed",
					Kills:        20,

					TotalDamageDealtToChampions: 50000,
				},
			},
			Teams: []model.Team{
				{
					TeamID: 100,
					Win:    true,
					Objectives: model.Objectives{
						Champion:   model.Objective{First: true},
						Dragon:     model.Objective{First: true},
						RiftHerald: model.Objective{First: true},
					},
				},
				{TeamID: 200},
			},
		},
	}
}

func TestExtractPlayerMissing(t *testing.T) {
	m := extractFixture()
	assert.Nil(t, Extract(&m, "not-in-this-match"))
}

func TestExtract(t *testing.T) {
	m := extractFixture()
	r := Extract(&m, "me")
	require.NotNil(t, r)

	assert.Equal(t, "NA1_100", r.MatchID)
	assert.Equal(t, 420, r.QueueID)
	assert.Equal(t, 1, r.Win)
	assert.Equal(t, "Ahri", r.Champion)
	assert.Equal(t, model.RoleMiddle, r.Role)
	assert.Equal(t, int64(1800), r.TimePlayedSec)

	// Kill participation counts only the player's own team's kills.
	assert.InDelta(t, 1.0, r.KillParticipation, 1e-9)
	assert.InDelta(t, 20000.0/30000.0, r.DamageShare, 1e-9)
	assert.InDelta(t, 6.0, r.CSPerMin, 1e-9)
	assert.InDelta(t, 24.0/30.0, r.VisionPerMin, 1e-9)
	assert.InDelta(t, 400.0, r.GoldPerMin, 1e-9)

	// Zero deaths divide by one, not by zero.
	assert.InDelta(t, 10.0, r.KDA, 1e-9)

	// Objective contribution: own takedowns (2+1+0) over the summed
	// per-type team maxima (3+1+1).
	assert.InDelta(t, 3.0/5.0, r.ObjectiveContrib, 1e-9)

	assert.True(t, r.FirstBloodInvolved)
	assert.True(t, r.TeamFirstBlood)
	assert.False(t, r.TeamFirstTower)
	assert.True(t, r.TeamFirstDragon)
	assert.False(t, r.TeamFirstBaron)
	assert.True(t, r.TeamFirstHerald)

	// Trinkets, consumables and empty slots are dropped; boots stay.
	assert.Equal(t, []int{3031, 3047}, r.ItemsFinal)

	assert.Equal(t, 4, r.Spell1)
	assert.Equal(t, 14, r.Spell2)
	assert.Equal(t, 5, r.FlashCasts)

	assert.Equal(t, 3, r.GrubsKilled)
	assert.Equal(t, 2, r.SoloKills)

	assert.Equal(t, []string{"mate-1"}, r.Teammates)
	assert.Equal(t, "MeIRL", r.TeammateNames["me"])
	assert.Equal(t, "Mate", r.TeammateNames["mate-1"])
}

func TestExtractFlashOnSecondSpellSlot(t *testing.T) {
	m := extractFixture()
	m.Info.Participants[0].Summoner1ID = 14
	m.Info.Participants[0].Summoner1Casts = 9
	m.Info.Participants[0].Summoner2ID = 4
	m.Info.Participants[0].Summoner2Casts = 6

	r := Extract(&m, "me")
	require.NotNil(t, r)
	assert.Equal(t, 6, r.FlashCasts)
}

func TestExtractZeroObjectiveDenominator(t *testing.T) {
	m := extractFixture()
	for i := range m.Info.Participants {
		m.Info.Participants[i].Challenges = model.Challenges{}
	}

	r := Extract(&m, "me")
	require.NotNil(t, r)
	assert.Equal(t, 0.0, r.ObjectiveContrib)
}

func TestExtractDurationFallbacks(t *testing.T) {
	m := extractFixture()
	m.Info.GameDuration = 0

	r := Extract(&m, "me")
	require.NotNil(t, r)
	// gameDuration falls back to the player's timePlayed.
	assert.Equal(t, int64(1800), r.TimePlayedSec)
	assert.InDelta(t, 6.0, r.CSPerMin, 1e-9)

	m.Info.Participants[0].TimePlayed = 0
	r = Extract(&m, "me")
	require.NotNil(t, r)
	// With no duration at all, the minute floor keeps rates finite.
	assert.Equal(t, int64(0), r.TimePlayedSec)
	assert.InDelta(t, 180.0/minuteFloor, r.CSPerMin, 1e-3)
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 0.0, safeDiv(5, 0))
	assert.Equal(t, 2.5, safeDiv(5, 2))
}
