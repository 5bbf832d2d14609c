package normaliser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// prose builds a block of plausible statute prose of at least n runes.
func prose(n int) string {
	var sb strings.Builder
	for sb.Len() < n {
		sb.WriteString("The enterprise has the obligation to comply with the provisions of this document. ")
	}
	return sb.String()
}

func TestNormalise_CRLFToLF(t *testing.T) {
	raw := "First line.\r\nSecond line.\r\n" + prose(100)

	got, err := Normalise(raw)

	require.NoError(t, err)
	assert.NotContains(t, got, "\r")
	assert.Contains(t, got, "First line.\nSecond line.")
}

func TestNormalise_RemovesPageNumberLines(t *testing.T) {
	raw := prose(100) + "\n- 12 -\n" + prose(100) + "\nPage 4\n" + prose(100)

	got, err := Normalise(raw)

	require.NoError(t, err)
	assert.NotContains(t, got, "- 12 -")
	assert.NotContains(t, got, "Page 4")
}

func TestNormalise_KeepsNumbersInsideProse(t *testing.T) {
	raw := prose(100) + "\nA fine of 12 million applies under this provision.\n" + prose(100)

	got, err := Normalise(raw)

	require.NoError(t, err)
	assert.Contains(t, got, "A fine of 12 million")
}

func TestNormalise_RemovesFootnoteMarkers(t *testing.T) {
	raw := "The tax rate[1] applies to all goods[23] and services. " + prose(100)

	got, err := Normalise(raw)

	require.NoError(t, err)
	assert.NotContains(t, got, "[1]")
	assert.NotContains(t, got, "[23]")
	assert.Contains(t, got, "The tax rate applies")
}

func TestNormalise_CollapsesBlankRuns(t *testing.T) {
	raw := prose(100) + "\n\n\n\n\n" + prose(100)

	got, err := Normalise(raw)

	require.NoError(t, err)
	assert.NotContains(t, got, "\n\n\n")
}

func TestNormalise_FormFeedBecomesNewline(t *testing.T) {
	raw := prose(100) + "\fNext page content here. " + prose(100)

	got, err := Normalise(raw)

	require.NoError(t, err)
	assert.NotContains(t, got, "\f")
	assert.Contains(t, got, "Next page content here.")
}

func TestNormalise_EmptyInput(t *testing.T) {
	_, err := Normalise("   \n\t  ")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnprocessable))
}

func TestNormalise_TooLittleContent(t *testing.T) {
	_, err := Normalise("short text")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnprocessable))
}

func TestNormalise_SparseScanOutputRejected(t *testing.T) {
	// A scanned-image PDF yields mostly whitespace with scattered runes.
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		sb.WriteString("x")
		sb.WriteString(strings.Repeat(" ", 40))
		sb.WriteString("\n")
	}

	_, err := Normalise(sb.String())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnprocessable))
}

func TestNormalise_DensePlainTextAccepted(t *testing.T) {
	got, err := Normalise(prose(500))

	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
