package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
	"github.com/custodia-labs/lexsearch-cli/internal/titles"
)

// sourceIDPattern matches an official statute number embedded in a
// filename, e.g. "59-2020-QH14" or "126_2020_ND-CP".
var sourceIDPattern = regexp.MustCompile(`(\d{1,4})[-_.](\d{4})[-_.]([A-Za-z][A-Za-z0-9-]{1,12})`)

// typeKeywords maps filename fragments to document types.
// Checked in order; the first hit wins.
var typeKeywords = []struct {
	fragment string
	docType  domain.DocumentType
}{
	{"circular", domain.TypeCircular},
	{"thong-tu", domain.TypeCircular},
	{"decree", domain.TypeDecree},
	{"nghi-dinh", domain.TypeDecree},
	{"law", domain.TypeLaw},
	{"luat", domain.TypeLaw},
}

// resolveIdentity derives a document's identity from its filename: the
// canonical title via the lookup asset, the official number via pattern
// matching, and the type via filename keywords. Every fallback is logged
// so gaps in the asset are observable rather than silently degrading
// retrieval quality.
func resolveIdentity(resolver *titles.Resolver, filename string) domain.Document {
	doc := domain.Document{
		Filename: filename,
		Type:     typeFromFilename(filename),
		Status:   domain.StatusActive,
	}

	if entry, ok := resolver.Resolve(filename); ok {
		doc.Name = entry.Title
		if entry.SourceID != "" {
			doc.SourceID = entry.SourceID
		}
		if entry.Type != "" {
			doc.Type = titles.TypeOf(entry.Type)
		}
		if entry.Status == string(domain.StatusSuperseded) {
			doc.Status = domain.StatusSuperseded
		}
		if entry.Effective != "" {
			if t, err := time.Parse("2006-01-02", entry.Effective); err == nil {
				doc.EffectiveDate = &t
			}
		}
	} else {
		doc.Name = titles.FallbackTitle(filename)
		logger.Warn("no title entry for %q, falling back to %q", filename, doc.Name)
	}

	if doc.SourceID == "" {
		doc.SourceID = extractSourceID(filename)
	}

	return doc
}

// extractSourceID pulls the official statute number out of a filename and
// normalizes it to the "number/year/suffix" citation form.
func extractSourceID(filename string) string {
	m := sourceIDPattern.FindStringSubmatch(filename)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", m[1], m[2], strings.ToUpper(m[3]))
}

// typeFromFilename classifies a document by filename keywords.
func typeFromFilename(filename string) domain.DocumentType {
	name := strings.ToLower(filename)
	for _, kw := range typeKeywords {
		if strings.Contains(name, kw.fragment) {
			return kw.docType
		}
	}
	return domain.TypeGeneric
}
