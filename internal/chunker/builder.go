// Package chunker turns the structural parse tree into retrieval chunks.
// Each article is emitted whole when short enough, or recursively split
// into clause and point chunks, every chunk carrying a deterministic id
// and a context-enriched embedding text.
package chunker

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
	"github.com/custodia-labs/lexsearch-cli/internal/segmenter"
)

// Default split thresholds in runes.
const (
	// DefaultArticleThreshold is the longest article emitted as one chunk.
	DefaultArticleThreshold = 1500

	// DefaultClauseThreshold is the longest clause emitted as one chunk.
	DefaultClauseThreshold = 800

	// DefaultIntroMaxLen is the longest clause intro that is prepended to
	// every point chunk derived from that clause. Longer intros become
	// their own chunk instead.
	DefaultIntroMaxLen = 300
)

// Builder converts articles into chunks. It holds the per-run monotonic
// counter that disambiguates ids, so one Builder serves exactly one
// ingestion run.
type Builder struct {
	seg      *segmenter.Segmenter
	tArticle int
	tClause  int
	introMax int
	seq      atomic.Uint64
}

// Option configures the builder.
type Option func(*Builder)

// WithArticleThreshold sets the article split threshold in runes.
func WithArticleThreshold(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.tArticle = n
		}
	}
}

// WithClauseThreshold sets the clause split threshold in runes.
func WithClauseThreshold(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.tClause = n
		}
	}
}

// NewBuilder creates a builder splitting with the given segmenter's markers.
func NewBuilder(seg *segmenter.Segmenter, opts ...Option) *Builder {
	b := &Builder{
		seg:      seg,
		tArticle: DefaultArticleThreshold,
		tClause:  DefaultClauseThreshold,
		introMax: DefaultIntroMaxLen,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build produces the flat, ordered chunk list for one document.
func (b *Builder) Build(doc domain.Document, chapters []domain.Chapter) []domain.Chunk {
	base := idBase(doc)
	var chunks []domain.Chunk

	for _, ch := range chapters {
		if ch.Preamble != "" {
			// Preamble text is chunked like an implicit article so the
			// statute's introductory clauses stay retrievable.
			pre := domain.Article{Content: ch.Preamble, Preamble: true}
			chunks = append(chunks, b.buildArticle(doc, base, ch, pre)...)
		}
		for _, art := range ch.Articles {
			chunks = append(chunks, b.buildArticle(doc, base, ch, art)...)
		}
	}

	logger.Debug("built %d chunks for %q", len(chunks), doc.Name)
	return chunks
}

// buildArticle emits one chunk for a short article, or recurses into
// clauses when the content exceeds the article threshold.
func (b *Builder) buildArticle(doc domain.Document, base string, ch domain.Chapter, art domain.Article) []domain.Chunk {
	if runeLen(art.Content) <= b.tArticle {
		return []domain.Chunk{b.newChunk(doc, base, ch, art, "", "", art.Content)}
	}

	intro, clauses := b.seg.SplitClauses(art.Content)
	if len(clauses) == 0 {
		// Unsplittable leaf over threshold: emitted whole rather than
		// silently truncated.
		logger.Debug("article %q exceeds threshold with no clause markers", art.Label)
		return []domain.Chunk{b.newChunk(doc, base, ch, art, "", "", art.Content)}
	}

	var chunks []domain.Chunk
	if intro != "" {
		chunks = append(chunks, b.newChunk(doc, base, ch, art, "", "", intro))
	}
	for _, cl := range clauses {
		chunks = append(chunks, b.buildClause(doc, base, ch, art, cl)...)
	}
	return chunks
}

// buildClause emits one chunk for a short clause, or recurses into points.
func (b *Builder) buildClause(doc domain.Document, base string, ch domain.Chapter, art domain.Article, cl domain.Clause) []domain.Chunk {
	display := cl.Marker + ". " + cl.Content

	if runeLen(cl.Content) <= b.tClause {
		return []domain.Chunk{b.newChunk(doc, base, ch, art, cl.Marker, "", display)}
	}

	intro, points := b.seg.SplitPoints(cl.Content)
	if len(points) == 0 {
		return []domain.Chunk{b.newChunk(doc, base, ch, art, cl.Marker, "", display)}
	}

	var chunks []domain.Chunk
	prepend := ""
	switch {
	case intro == "":
	case runeLen(intro) <= b.introMax:
		// A point such as "a) freedom to conduct business" is meaningless
		// without its governing sentence; carry the intro into every point.
		prepend = intro
	default:
		chunks = append(chunks, b.newChunk(doc, base, ch, art, cl.Marker, "", intro))
	}

	for _, pt := range points {
		text := pt.Marker + ") " + pt.Content
		if prepend != "" {
			text = prepend + "\n" + text
		}
		chunks = append(chunks, b.newChunk(doc, base, ch, art, cl.Marker, pt.Marker, text))
	}
	return chunks
}

// newChunk assembles one chunk: deterministic id, context-enriched
// embedding text, and flattened metadata.
func (b *Builder) newChunk(doc domain.Document, base string, ch domain.Chapter, art domain.Article, clause, point, text string) domain.Chunk {
	meta := domain.ChunkMetadata{
		DocName:      doc.Name,
		DocType:      doc.Type,
		SourceID:     doc.SourceID,
		Chapter:      ch.Label,
		Article:      art.Label,
		ArticleTitle: art.Title,
		Clause:       clause,
		Point:        point,
		Status:       doc.Status,
		Keywords:     strings.Join(Keywords(text), "|"),
	}
	if doc.EffectiveDate != nil {
		meta.EffectiveDate = doc.EffectiveDate.Format("2006-01-02")
	}

	return domain.Chunk{
		ID:               b.chunkID(base, art, clause, point),
		TextForEmbedding: b.contextText(meta, text),
		OriginalText:     text,
		Metadata:         meta,
	}
}

// contextText injects the chunk's full hierarchical context ahead of its
// raw content. Embedding models weight the leading tokens of a short
// passage most heavily, so the ordering is load-bearing: document name
// first, then chapter, article, clause, point, then the content.
func (b *Builder) contextText(meta domain.ChunkMetadata, text string) string {
	m := b.seg.Markers()

	parts := []string{meta.DocName}
	if meta.Chapter != "" {
		parts = append(parts, meta.Chapter)
	}
	if meta.Article != "" {
		label := meta.Article
		if meta.ArticleTitle != "" {
			label += ": " + meta.ArticleTitle
		}
		parts = append(parts, label)
	}
	if meta.Clause != "" {
		parts = append(parts, fmt.Sprintf(m.ClauseWord, meta.Clause))
	}
	if meta.Point != "" {
		parts = append(parts, fmt.Sprintf(m.PointWord, meta.Point))
	}
	parts = append(parts, text)

	return strings.Join(parts, ". ")
}

func runeLen(s string) int {
	return len([]rune(s))
}
