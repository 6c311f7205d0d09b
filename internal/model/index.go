package model

// MatchIndexEntry is one row of the secondary match index, keyed by
// (puuid, "{year}#{matchId}") so a player's season lists with one prefix
// query.
type MatchIndexEntry struct {
	PUUID        string `json:"puuid"`
	Year         string `json:"year"`
	MatchID      string `json:"match_id"`
	Platform     string `json:"platform"`
	Patch        string `json:"patch"`
	QueueID      int    `json:"queue_id"`
	GameCreation int64  `json:"game_creation"`
	DurationSec  int64  `json:"duration_sec"`
	Champion     string `json:"champion"`
	Role         string `json:"role"`
	ObjectKey    string `json:"object_key,omitempty"`
	TimelineKey  string `json:"timeline_key,omitempty"`
}

// SortKey returns the index sort key for the entry.
func (e MatchIndexEntry) SortKey() string {
	return e.Year + "#" + e.MatchID
}

// MatchRef points at a stored raw match blob.
type MatchRef struct {
	MatchID   string `json:"match_id"`
	ObjectKey string `json:"object_key"`
}

// IndexEntryFromMatch builds an index row from a raw match document.
func IndexEntryFromMatch(m *Match, puuid, year, objectKey, timelineKey string) MatchIndexEntry {
	entry := MatchIndexEntry{
		PUUID:        puuid,
		Year:         year,
		MatchID:      m.Metadata.MatchID,
		Platform:     m.Info.PlatformID,
		Patch:        m.Info.GameVersion,
		QueueID:      m.Info.QueueID,
		GameCreation: m.Info.GameCreation,
		DurationSec:  m.Info.GameDuration,
		ObjectKey:    objectKey,
		TimelineKey:  timelineKey,
	}
	if entry.Platform == "" {
		entry.Platform = "unknown"
	}
	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		if p.PUUID == puuid {
			if entry.DurationSec == 0 {
				entry.DurationSec = p.TimePlayed
			}
			entry.Champion = p.ChampionName
			if p.TeamPosition != "" {
				entry.Role = p.TeamPosition
			} else {
				entry.Role = p.Role
			}
			break
		}
	}
	return entry
}
