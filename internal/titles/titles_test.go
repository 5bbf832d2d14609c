package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

func TestNewResolver_LoadsEmbeddedAsset(t *testing.T) {
	resolver, err := NewResolver()

	require.NoError(t, err)
	assert.Greater(t, resolver.Version(), 0)
}

func TestResolve_MatchIsCaseInsensitive(t *testing.T) {
	resolver, err := NewResolver()
	require.NoError(t, err)

	entry, ok := resolver.Resolve("LAW-ON-ENTERPRISES-2020.txt")

	require.True(t, ok)
	assert.Equal(t, "Law on Enterprises", entry.Title)
	assert.Equal(t, "59/2020/QH14", entry.SourceID)
}

func TestResolve_NoMatch(t *testing.T) {
	resolver, err := NewResolver()
	require.NoError(t, err)

	_, ok := resolver.Resolve("random-readme.md")

	assert.False(t, ok)
}

func TestFallbackTitle(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"tax-guidance_2023.txt", "Tax guidance 2023"},
		{"/tmp/docs/some-file.txt", "Some file"},
		{"plain", "Plain"},
		{"...", "Untitled document"},
		{"", "Untitled document"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FallbackTitle(tc.filename), tc.filename)
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, domain.TypeLaw, TypeOf("law"))
	assert.Equal(t, domain.TypeDecree, TypeOf("Decree"))
	assert.Equal(t, domain.TypeCircular, TypeOf("circular"))
	assert.Equal(t, domain.TypeGeneric, TypeOf("unknown"))
	assert.Equal(t, domain.TypeGeneric, TypeOf(""))
}
