// Package titles resolves source filenames to canonical document titles.
// The mapping lives in an embedded, versioned TOML asset rather than in
// string literals scattered through logic, so gaps are observable: a miss
// is logged and falls back to a filename-derived title.
package titles

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
)

//go:embed titles.toml
var assetTOML []byte

// Entry is one resolved document identity from the lookup asset.
type Entry struct {
	// Match is the lowercased filename substring that selects this entry.
	Match string `toml:"match"`

	// Title is the canonical document title.
	Title string `toml:"title"`

	// Type is the document type (law, decree, circular).
	Type string `toml:"type"`

	// SourceID is the official statute number, when known.
	SourceID string `toml:"source_id"`

	// Status marks superseded statutes. Defaults to active.
	Status string `toml:"status"`

	// Effective is the effective date in YYYY-MM-DD form, when known.
	Effective string `toml:"effective"`
}

// asset is the decoded lookup table.
type asset struct {
	Version int     `toml:"version"`
	Entries []Entry `toml:"entry"`
}

// Resolver answers filename-to-title lookups against one loaded asset.
type Resolver struct {
	version int
	entries []Entry
}

// NewResolver loads the embedded lookup asset.
func NewResolver() (*Resolver, error) {
	var a asset
	if err := toml.Unmarshal(assetTOML, &a); err != nil {
		return nil, fmt.Errorf("decoding titles asset: %w", err)
	}
	logger.Debug("loaded titles asset version %d with %d entries", a.Version, len(a.Entries))
	return &Resolver{version: a.Version, entries: a.Entries}, nil
}

// Version returns the asset version, for diagnostics.
func (r *Resolver) Version() int {
	return r.version
}

// Resolve finds the entry whose match substring occurs in the filename.
// The first matching entry wins; order in the asset is significant.
func (r *Resolver) Resolve(filename string) (*Entry, bool) {
	name := strings.ToLower(filename)
	for i := range r.entries {
		if r.entries[i].Match != "" && strings.Contains(name, r.entries[i].Match) {
			return &r.entries[i], true
		}
	}
	return nil, false
}

// FallbackTitle derives a readable title from a filename when no asset
// entry matches. Never returns an empty string: an empty document name
// corrupts retrieval relevance for every chunk of the document.
func FallbackTitle(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Untitled document"
	}
	return strings.ToUpper(base[:1]) + base[1:]
}

// TypeOf converts an asset type string to a domain type.
func TypeOf(s string) domain.DocumentType {
	switch strings.ToLower(s) {
	case "law":
		return domain.TypeLaw
	case "decree":
		return domain.TypeDecree
	case "circular":
		return domain.TypeCircular
	default:
		return domain.TypeGeneric
	}
}
