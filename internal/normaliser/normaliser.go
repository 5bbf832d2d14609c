// Package normaliser cleans extracted statute text before segmentation.
// It strips scan artifacts and flags documents whose extracted text is too
// sparse to be real prose (typically scanned-image PDFs).
package normaliser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// MinDensity is the minimum ratio of non-whitespace runes to total runes
// below which a document is rejected as unprocessable.
const MinDensity = 0.25

// MinContentRunes is the minimum number of non-whitespace runes a document
// must contain after cleaning.
const MinContentRunes = 80

var (
	// Page-number lines left behind by text extraction ("3", "- 12 -", "Page 4").
	pageNumberLine = regexp.MustCompile(`(?mi)^\s*(?:-\s*)?(?:page\s+)?\d{1,4}(?:\s*-)?\s*$`)

	// Footnote markers embedded in prose ("[1]", "[23]").
	footnoteMarker = regexp.MustCompile(`\[\d{1,3}\]`)

	// Runs of three or more blank lines.
	blankRun = regexp.MustCompile(`\n{3,}`)

	// Trailing whitespace on each line.
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalise cleans raw extracted text and validates that it is plausibly a
// text document rather than a scanned image.
func Normalise(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("empty extraction: %w", domain.ErrUnprocessable)
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripControl(text)
	text = pageNumberLine.ReplaceAllString(text, "")
	text = footnoteMarker.ReplaceAllString(text, "")
	text = trailingSpace.ReplaceAllString(text, "")
	text = blankRun.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if err := checkDensity(raw, text); err != nil {
		return "", err
	}

	return text, nil
}

// stripControl removes control characters other than newline and tab.
// Form feeds are page breaks in extracted PDFs and become newlines.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\f':
			return '\n'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

// checkDensity rejects documents whose non-whitespace density is implausibly
// low. A text PDF of a statute is dense prose; a scanned image yields mostly
// whitespace and page furniture.
func checkDensity(raw, cleaned string) error {
	content := 0
	for _, r := range cleaned {
		if !unicode.IsSpace(r) {
			content++
		}
	}

	if content < MinContentRunes {
		return fmt.Errorf("only %d content runes after cleaning: %w", content, domain.ErrUnprocessable)
	}

	total := 0
	for range raw {
		total++
	}
	if total == 0 {
		return fmt.Errorf("empty extraction: %w", domain.ErrUnprocessable)
	}

	density := float64(content) / float64(total)
	if density < MinDensity {
		return fmt.Errorf("content density %.2f below %.2f: %w", density, MinDensity, domain.ErrUnprocessable)
	}

	return nil
}
