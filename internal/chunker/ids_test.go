package chunker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

func TestIDBase_PrefersSourceID(t *testing.T) {
	doc := domain.Document{
		SourceID: "59/2020/QH14",
		Name:     "Law on Enterprises",
	}

	assert.Equal(t, "59_2020_qh14", idBase(doc))
}

func TestIDBase_FallsBackToNameProjection(t *testing.T) {
	doc := domain.Document{
		Name: "Law on Enterprises",
	}

	assert.Equal(t, "lawonenterprises", idBase(doc))
}

func TestIDBase_NameProjectionTruncated(t *testing.T) {
	doc := domain.Document{
		Name: "Circular guiding the implementation of tax administration",
	}

	got := idBase(doc)
	assert.LessOrEqual(t, len(got), 24)
	assert.Equal(t, "circularguidingtheimplem", got)
}

func TestIDBase_TypeYearFallback(t *testing.T) {
	effective := time.Date(2020, 12, 5, 0, 0, 0, 0, time.UTC)
	doc := domain.Document{
		Type:          domain.TypeDecree,
		EffectiveDate: &effective,
	}

	assert.Equal(t, "decree2020", idBase(doc))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "80_2021_tt_btc", sanitize("80/2021/TT-BTC"))
	assert.Equal(t, "abc_def", sanitize("  ABC--def  "))
	assert.Equal(t, "", sanitize("///"))
}
