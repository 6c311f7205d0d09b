package pipeline

import (
	"strings"

	"github.com/riftworks/recap-cli/internal/model"
)

// queueARAM is the ARAM queue id; those games get their own role bucket.
const queueARAM = 450

// teamPositionRoles maps the modern teamPosition field onto canonical
// roles. UTILITY is normalized to SUPPORT here.
var teamPositionRoles = map[string]model.RoleName{
	"TOP":     model.RoleTop,
	"JUNGLE":  model.RoleJungle,
	"MIDDLE":  model.RoleMiddle,
	"BOTTOM":  model.RoleBottom,
	"UTILITY": model.RoleSupport,
}

// NormalizeRole buckets a participant into one canonical role. It prefers
// teamPosition and falls back to the legacy lane/role pair on older match
// documents.
func NormalizeRole(teamPosition, lane, role string, queueID int) model.RoleName {
	if queueID == queueARAM {
		return model.RoleARAM
	}

	if tp := strings.ToUpper(teamPosition); tp != "" {
		if r, ok := teamPositionRoles[tp]; ok {
			return r
		}
		return model.RoleUnknown
	}

	lane = strings.ToUpper(lane)
	role = strings.ToUpper(role)

	switch lane {
	case "MID":
		lane = "MIDDLE"
	case "BOT", "ADC":
		lane = "BOTTOM"
	}

	switch lane {
	case "TOP":
		return model.RoleTop
	case "JUNGLE":
		return model.RoleJungle
	case "MIDDLE":
		return model.RoleMiddle
	case "BOTTOM":
		// Bot lane holds two players; the legacy role field tells the
		// support apart from the carry.
		if role == "DUO_SUPPORT" || role == "SUPPORT" {
			return model.RoleSupport
		}
		return model.RoleBottom
	}

	// No usable lane; the role field alone still hints at bot lane.
	switch role {
	case "DUO_SUPPORT", "SUPPORT":
		return model.RoleSupport
	case "DUO_CARRY", "CARRY":
		return model.RoleBottom
	}

	return model.RoleUnknown
}
