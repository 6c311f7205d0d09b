package model

// RoleName is the canonical 6-way role bucket plus the unknown sentinel.
type RoleName string

const (
	RoleTop     RoleName = "TOP"
	RoleJungle  RoleName = "JUNGLE"
	RoleMiddle  RoleName = "MIDDLE"
	RoleBottom  RoleName = "BOTTOM"
	RoleSupport RoleName = "SUPPORT"
	RoleARAM    RoleName = "ARAM"
	RoleUnknown RoleName = "UNKNOWN"
)

// SkipReason explains why a match produced no FeatureRecord. Skips are
// tallied by the pipeline driver; they are never errors.
type SkipReason string

const (
	SkipParticipantNotFound SkipReason = "participant_not_found"
	SkipBlobMissing         SkipReason = "blob_missing"
	SkipBlobUnreadable      SkipReason = "blob_unreadable"
)

// FeatureRecord is the flat per-match feature row the aggregator consumes.
// One record per (match, target player); transient, never persisted.
type FeatureRecord struct {
	MatchID        string   `json:"match_id"`
	QueueID        int      `json:"queueId"`
	TimePlayedSec  int64    `json:"time_played_sec"`
	Win            int      `json:"win"`
	GameCreationMS int64    `json:"game_creation_ms"`
	GameVersion    string   `json:"game_version"`
	Champion       string   `json:"champion"`
	Role           RoleName `json:"role"`

	KillParticipation float64 `json:"kill_participation"`
	DamageShare       float64 `json:"damage_share"`
	CSPerMin          float64 `json:"cs_per_min"`
	VisionPerMin      float64 `json:"vision_pm"`
	ObjectiveContrib  float64 `json:"objective_contrib"`

	Kills           int     `json:"kills"`
	Deaths          int     `json:"deaths"`
	Assists         int     `json:"assists"`
	KDA             float64 `json:"kda"`
	GoldPerMin      float64 `json:"gold_per_min"`
	DamagePerMin    float64 `json:"dmg_per_min"`
	DamageTakenPM   float64 `json:"dmg_taken_pm"`
	HealShieldPM    float64 `json:"heal_shield_pm"`
	VisionWards     int     `json:"vision_wards"`
	WardsKilled     int     `json:"wards_killed"`
	SoloKills       int     `json:"solo_kills"`
	DoubleKills     int     `json:"double_kills"`
	TripleKills     int     `json:"triple_kills"`
	QuadraKills     int     `json:"quadra_kills"`
	PentaKills      int     `json:"penta_kills"`
	PhysToChamps    int     `json:"phys_to_champs"`
	MagicToChamps   int     `json:"magic_to_champs"`
	TrueToChamps    int     `json:"true_to_champs"`
	TurretKills     int     `json:"turret_kills"`
	DragonsKilled   int     `json:"dragons_killed"`
	BaronsKilled    int     `json:"barons_killed"`
	HeraldsKilled   int     `json:"heralds_killed"`
	GrubsKilled     int     `json:"grubs_killed"`
	ObjectiveDamage int     `json:"objective_damage"`

	FirstBloodInvolved bool `json:"fb_involved"`
	TeamFirstBlood     bool `json:"team_first_blood"`
	TeamFirstTower     bool `json:"team_first_tower"`
	TeamFirstDragon    bool `json:"team_first_dragon"`
	TeamFirstBaron     bool `json:"team_first_baron"`
	TeamFirstHerald    bool `json:"team_first_herald"`

	ItemsFinal    []int             `json:"items_final"`
	Spell1        int               `json:"spell1"`
	Spell2        int               `json:"spell2"`
	FlashCasts    int               `json:"flash_casts"`
	Teammates     []string          `json:"teammates"`
	TeammateNames map[string]string `json:"teammate_names"`
}
