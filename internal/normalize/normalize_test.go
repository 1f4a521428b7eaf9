package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/rail-log/backend/internal/normalize"
)

func TestNormalize_AliasWithLocalsPreserved(t *testing.T) {
	line, service := normalize.Normalize("京浜東北線・根岸線", "各駅停車")

	assert.Equal(t, "京浜東北・根岸線", line)
	// The canonical line is locals-preserving, so 各駅停車 survives.
	assert.Equal(t, "各駅停車", service)
}

func TestNormalize_AllStopsRewrittenOnOtherLines(t *testing.T) {
	line, service := normalize.Normalize("東海道線", "各駅停車")

	assert.Equal(t, "東海道線", line)
	assert.Equal(t, "普通", service)
}

func TestNormalize_UnknownPairIsIdentity(t *testing.T) {
	cases := [][2]string{
		{"りんかい線", "快速"},
		{"東急東横線", "Fライナー特急"},
		{"名鉄名古屋本線", "特急"},
		{"", ""},
	}
	for _, c := range cases {
		line, service := normalize.Normalize(c[0], c[1])
		assert.Equal(t, c[0], line)
		assert.Equal(t, c[1], service)
	}
}

func TestNormalize_AliasMatchIsExactNotSubstring(t *testing.T) {
	// Contains an alias as a substring but is not itself an alias.
	line, _ := normalize.Normalize("JR京浜東北線・根岸線直通", "普通")

	assert.Equal(t, "JR京浜東北線・根岸線直通", line)
}

func TestNormalize_AliasRunsBeforeLocalsCheck(t *testing.T) {
	// The raw spelling is not in the locals-preserving set; only the
	// canonical spelling is. If the rewrite order were inverted the
	// service would collapse to 普通.
	_, service := normalize.Normalize("根岸線・京浜東北線", "各駅停車")

	assert.Equal(t, "各駅停車", service)
}
