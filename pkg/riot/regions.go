package riot

// platformByRegion maps user-facing region shorthands onto Riot platform
// ids.
var platformByRegion = map[string]string{
	"na": "na1", "na1": "na1",
	"br": "br1", "br1": "br1",
	"lan": "la1", "la1": "la1",
	"las": "la2", "la2": "la2",
	"euw": "euw1", "euw1": "euw1",
	"eune": "eun1", "eun1": "eun1",
	"tr": "tr1", "tr1": "tr1",
	"ru": "ru",
	"kr": "kr",
	"jp": "jp1", "jp1": "jp1",
	"oce": "oc1", "oc1": "oc1",
	"ph": "ph2", "ph2": "ph2",
	"sg": "sg2", "sg2": "sg2",
	"th": "th2", "th2": "th2",
	"tw": "tw2", "tw2": "tw2",
	"vn": "vn2", "vn2": "vn2",
}

// Platform resolves a region shorthand to its platform id. The second
// return is false for an unknown region.
func Platform(region string) (string, bool) {
	p, ok := platformByRegion[region]
	return p, ok
}

// Cluster returns the regional routing cluster for a platform id. Account
// and match endpoints are served per cluster, not per platform.
func Cluster(platform string) string {
	switch platform {
	case "na1", "br1", "la1", "la2":
		return "americas"
	case "euw1", "eun1", "tr1", "ru":
		return "europe"
	case "kr", "jp1":
		return "asia"
	case "oc1", "ph2", "sg2", "th2", "tw2", "vn2":
		return "sea"
	default:
		return "americas"
	}
}
