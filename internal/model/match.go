package model

// Match is a raw Riot Match-V5 document as fetched from the API and stored
// gzipped in the object store. Only the fields the pipeline reads are
// declared; everything else round-trips through the blob untouched.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

// MatchMetadata identifies the match.
type MatchMetadata struct {
	MatchID string `json:"matchId"`
}

// MatchInfo carries game-level metadata plus the ten participant rows.
type MatchInfo struct {
	GameCreation int64         `json:"gameCreation"`
	GameDuration int64         `json:"gameDuration"`
	GameVersion  string        `json:"gameVersion"`
	PlatformID   string        `json:"platformId"`
	QueueID      int           `json:"queueId"`
	Participants []Participant `json:"participants"`
	Teams        []Team        `json:"teams"`
}

// Participant is one player's row inside a match. Missing fields decode to
// their zero values, so downstream code never checks for presence.
type Participant struct {
	PUUID          string `json:"puuid"`
	TeamID         int    `json:"teamId"`
	ChampionName   string `json:"championName"`
	TeamPosition   string `json:"teamPosition"`
	Lane           string `json:"lane"`
	Role           string `json:"role"`
	Win            bool   `json:"win"`
	TimePlayed     int64  `json:"timePlayed"`
	RiotIDGameName string `json:"riotIdGameName"`
	SummonerName   string `json:"summonerName"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	TotalMinionsKilled   int `json:"totalMinionsKilled"`
	NeutralMinionsKilled int `json:"neutralMinionsKilled"`
	VisionScore          int `json:"visionScore"`
	GoldEarned           int `json:"goldEarned"`

	TotalDamageDealtToChampions    int `json:"totalDamageDealtToChampions"`
	PhysicalDamageDealtToChampions int `json:"physicalDamageDealtToChampions"`
	MagicDamageDealtToChampions    int `json:"magicDamageDealtToChampions"`
	TrueDamageDealtToChampions     int `json:"trueDamageDealtToChampions"`
	TotalDamageTaken               int `json:"totalDamageTaken"`
	TotalHealsOnTeammates          int `json:"totalHealsOnTeammates"`
	TotalDamageShieldedOnTeammates int `json:"totalDamageShieldedOnTeammates"`
	DamageDealtToObjectives        int `json:"damageDealtToObjectives"`

	VisionWardsBoughtInGame int `json:"visionWardsBoughtInGame"`
	WardsKilled             int `json:"wardsKilled"`

	DoubleKills int `json:"doubleKills"`
	TripleKills int `json:"tripleKills"`
	QuadraKills int `json:"quadraKills"`
	PentaKills  int `json:"pentaKills"`

	TurretKills     int `json:"turretKills"`
	DragonKills     int `json:"dragonKills"`
	BaronKills      int `json:"baronKills"`
	RiftHeraldKills int `json:"riftHeraldKills"`

	FirstBloodKill   bool `json:"firstBloodKill"`
	FirstBloodAssist bool `json:"firstBloodAssist"`

	Item0 int `json:"item0"`
	Item1 int `json:"item1"`
	Item2 int `json:"item2"`
	Item3 int `json:"item3"`
	Item4 int `json:"item4"`
	Item5 int `json:"item5"`
	Item6 int `json:"item6"` // trinket slot

	Summoner1ID    int `json:"summoner1Id"`
	Summoner2ID    int `json:"summoner2Id"`
	Summoner1Casts int `json:"summoner1Casts"`
	Summoner2Casts int `json:"summoner2Casts"`

	Challenges Challenges `json:"challenges"`
}

// Challenges holds the challenge-derived counters the aggregation uses.
type Challenges struct {
	DragonTakedowns     int `json:"dragonTakedowns"`
	BaronTakedowns      int `json:"baronTakedowns"`
	RiftHeraldTakedowns int `json:"riftHeraldTakedowns"`
	SoloKills           int `json:"soloKills"`

	// The void grub counter has gone by several names across patches.
	VoidgrubKills     int `json:"voidgrubKills"`
	VoidGrubKills     int `json:"voidGrubKills"`
	VoidMonstersKille int `json:"voidMonstersKilled"`
}

// GrubKills returns the first non-zero void grub counter.
func (c Challenges) GrubKills() int {
	if c.VoidgrubKills != 0 {
		return c.VoidgrubKills
	}
	if c.VoidGrubKills != 0 {
		return c.VoidGrubKills
	}
	return c.VoidMonstersKille
}

// Items returns the seven item slots in order.
func (p Participant) Items() [7]int {
	return [7]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

// DisplayName returns the best available name for the participant.
func (p Participant) DisplayName() string {
	if p.RiotIDGameName != "" {
		return p.RiotIDGameName
	}
	if p.SummonerName != "" {
		return p.SummonerName
	}
	return "Unknown"
}

// Team is the per-side summary row, carrying the first-objective flags.
type Team struct {
	TeamID     int        `json:"teamId"`
	Win        bool       `json:"win"`
	Objectives Objectives `json:"objectives"`
}

// Objectives groups the per-objective summaries for one team.
type Objectives struct {
	Champion   Objective `json:"champion"`
	Tower      Objective `json:"tower"`
	Dragon     Objective `json:"dragon"`
	Baron      Objective `json:"baron"`
	RiftHerald Objective `json:"riftHerald"`
}

// Objective records whether the team took the objective first and how many.
type Objective struct {
	First bool `json:"first"`
	Kills int  `json:"kills"`
}
