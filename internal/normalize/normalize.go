// Package normalize canonicalizes user-entered line names and service types
// so that history lookups, color inference, and autofill all match on the
// same spelling. Normalization is pure and total: unknown names pass through
// unchanged and no call can fail.
package normalize

// lineAliases rewrites compound or ambiguous line names to their canonical
// form. Matching is exact, never substring: a name that merely contains an
// alias must not be rewritten.
var lineAliases = map[string]string{
	"京浜東北線・根岸線":       "京浜東北・根岸線",
	"根岸線・京浜東北線":       "京浜東北・根岸線",
	"東海道線（上野東京ライン）": "東海道線",
	"埼京線・川越線":          "埼京線",
}

// localsPreserving lists canonical line names whose all-stops service is
// genuinely labelled 各駅停車 rather than 普通. On every other line an
// all-stops entry is displayed as 普通.
var localsPreserving = map[string]bool{
	"京浜東北・根岸線":   true,
	"山手線":            true,
	"中央・総武線各駅停車": true,
}

const (
	allStops = "各駅停車"
	ordinary = "普通"
)

// Line returns the canonical form of a line name.
func Line(lineName string) string {
	if canonical, ok := lineAliases[lineName]; ok {
		return canonical
	}
	return lineName
}

// Normalize canonicalizes a (line name, service type) pair.
// The line alias rewrite runs first: the locals-preserving check is against
// the canonical name, not the user's spelling.
func Normalize(lineName, serviceType string) (string, string) {
	lineName = Line(lineName)
	if serviceType == allStops && !localsPreserving[lineName] {
		serviceType = ordinary
	}
	return lineName, serviceType
}
