package chunker

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
)

// maxNameProjection caps the length of the document-name id base.
const maxNameProjection = 24

// idBase derives the document part of every chunk id, in priority order:
// the official source number, a truncated alphanumeric projection of the
// document name, or a type+year fallback.
func idBase(doc domain.Document) string {
	if doc.SourceID != "" {
		return sanitize(doc.SourceID)
	}

	if proj := project(doc.Name); proj != "" {
		return proj
	}

	year := doc.IngestedAt.Year()
	if doc.EffectiveDate != nil {
		year = doc.EffectiveDate.Year()
	}
	if year <= 1 {
		// Zero time.Time reports year 1.
		year = time.Now().Year()
	}
	return fmt.Sprintf("%s%d", doc.Type, year)
}

// chunkID builds the deterministic chunk id. Every level is present even
// when no clause or point exists for the span: omitting a level is the
// most common cause of silent id collisions between articles whose split
// happens to produce the same prefix. The per-run sequence number is the
// final disambiguator.
func (b *Builder) chunkID(base string, art domain.Article, clause, point string) string {
	artPart := fmt.Sprintf("art%d", art.Ordinal)

	clausePart := "c0"
	if clause != "" {
		clausePart = "c" + sanitize(clause)
	}

	pointPart := "p0"
	if point != "" {
		pointPart = "p" + sanitize(point)
	}

	seq := b.seq.Add(1)
	return strings.Join([]string{base, artPart, clausePart, pointPart, fmt.Sprintf("%d", seq)}, "_")
}

// sanitize replaces every non-alphanumeric rune with an underscore and
// collapses runs.
func sanitize(s string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && sb.Len() > 0 {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_")
}

// project reduces a document name to its alphanumeric runes, truncated.
func project(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			if sb.Len() >= maxNameProjection {
				break
			}
		}
	}
	return sb.String()
}
