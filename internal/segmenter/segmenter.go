// Package segmenter splits normalized statute text into its structural
// units: Chapter, Article, Clause, and Point. Text preceding the first
// recognized unit at any level is preserved as a preamble unit rather than
// discarded.
package segmenter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/lexsearch-cli/internal/core/domain"
	"github.com/custodia-labs/lexsearch-cli/internal/logger"
)

// DefaultTitleMaxLen is the longest line that can be absorbed as an article
// title when the header line carries no inline title.
const DefaultTitleMaxLen = 120

// Segmenter performs recursive-descent structural parsing driven by a
// MarkerSet. It is pure and safe for concurrent use.
type Segmenter struct {
	markers     MarkerSet
	titleMaxLen int
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithMarkers sets the marker set. Defaults to English().
func WithMarkers(m MarkerSet) Option {
	return func(s *Segmenter) {
		s.markers = m
	}
}

// WithTitleMaxLen sets the title absorption threshold in runes.
func WithTitleMaxLen(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.titleMaxLen = n
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		markers:     English(),
		titleMaxLen: DefaultTitleMaxLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Markers returns the active marker set.
func (s *Segmenter) Markers() MarkerSet {
	return s.markers
}

// span is one header match inside a parent text: the capture groups of the
// header plus the content that runs to the next header at the same level.
type span struct {
	groups  []string
	content string
}

// findSpans locates every header match and slices the text between
// consecutive headers. The returned prefix is the text before the first
// header (the whole text when nothing matches).
func findSpans(text string, re *regexp.Regexp) (prefix string, spans []span) {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	prefix = text[:locs[0][0]]
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		groups := make([]string, 0, len(loc)/2)
		for g := 0; g < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, text[loc[g]:loc[g+1]])
		}

		spans = append(spans, span{
			groups:  groups,
			content: text[loc[1]:end],
		})
	}
	return prefix, spans
}

// Segment splits text into an ordered list of chapters, each holding its
// ordered articles. A document with no chapter markers produces a single
// implicit chapter; a chapter with no article markers keeps its full text
// as the chapter preamble.
func (s *Segmenter) Segment(text string) []domain.Chapter {
	prefix, chapterSpans := findSpans(text, s.markers.Chapter)

	if len(chapterSpans) == 0 {
		logger.Info("no chapter markers found, using implicit chapter")
		return []domain.Chapter{s.segmentChapter("", text)}
	}

	chapters := make([]domain.Chapter, 0, len(chapterSpans)+1)

	// Text before the first chapter header holds the statute's title and
	// citation clauses. Dropping it is a correctness bug, not trimming.
	if strings.TrimSpace(prefix) != "" {
		chapters = append(chapters, s.segmentChapter("", prefix))
	}

	for _, cs := range chapterSpans {
		label := fmt.Sprintf(s.markers.ChapterWord, strings.ToUpper(cs.groups[1]))
		if title := strings.TrimSpace(cs.groups[2]); title != "" {
			label += ": " + title
		}
		chapters = append(chapters, s.segmentChapter(label, cs.content))
	}

	return chapters
}

// segmentChapter splits one chapter span into articles.
func (s *Segmenter) segmentChapter(label, text string) domain.Chapter {
	prefix, articleSpans := findSpans(text, s.markers.Article)

	ch := domain.Chapter{Label: label}

	if len(articleSpans) == 0 {
		// Implicit article spanning the whole chapter.
		if strings.TrimSpace(text) != "" {
			logger.Info("no article markers in %q, using implicit article", displayLabel(label))
			ch.Preamble = strings.TrimSpace(text)
		}
		return ch
	}

	if strings.TrimSpace(prefix) != "" {
		ch.Preamble = strings.TrimSpace(prefix)
	}

	for _, as := range articleSpans {
		ch.Articles = append(ch.Articles, s.buildArticle(as))
	}
	return ch
}

// buildArticle assembles one article from its header match, absorbing a
// short following line as the title when the header carries none inline.
func (s *Segmenter) buildArticle(as span) domain.Article {
	ordinal, _ := strconv.Atoi(as.groups[1])

	art := domain.Article{
		Label:   fmt.Sprintf(s.markers.ArticleWord, as.groups[1]),
		Ordinal: ordinal,
		Title:   strings.TrimSpace(as.groups[2]),
	}

	content := as.content
	if art.Title == "" {
		if title, rest, ok := s.absorbTitle(content); ok {
			art.Title = title
			content = rest
		}
	}

	art.Content = strings.TrimSpace(content)
	return art
}

// absorbTitle inspects the first non-empty line of content as a candidate
// title. It is absorbed only when short, not clause-like, and not a full
// sentence, so a one-line article body is never misread as a title.
func (s *Segmenter) absorbTitle(content string) (title, rest string, ok bool) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len([]rune(trimmed)) >= s.titleMaxLen {
			return "", "", false
		}
		if s.markers.Clause.MatchString(line) || s.markers.Point.MatchString(line) {
			return "", "", false
		}
		// Titles do not terminate sentences or introduce lists.
		if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, ":") {
			return "", "", false
		}
		return trimmed, strings.Join(lines[i+1:], "\n"), true
	}
	return "", "", false
}

// SplitClauses splits article content into its numbered clauses. The
// returned intro is any text preceding the first clause marker. A content
// span with no clause markers returns the whole text as intro and no
// clauses.
func (s *Segmenter) SplitClauses(content string) (intro string, clauses []domain.Clause) {
	prefix, spans := findSpans(content, s.markers.Clause)
	intro = strings.TrimSpace(prefix)

	for _, cs := range spans {
		clauses = append(clauses, domain.Clause{
			Marker:  cs.groups[1],
			Content: strings.TrimSpace(cs.content),
		})
	}
	return intro, clauses
}

// SplitPoints splits clause content into its lettered points. The returned
// intro is the clause's governing sentence preceding the first point, e.g.
// "An enterprise has the following rights:".
func (s *Segmenter) SplitPoints(content string) (intro string, points []domain.Point) {
	prefix, spans := findSpans(content, s.markers.Point)
	intro = strings.TrimSpace(prefix)

	for _, ps := range spans {
		points = append(points, domain.Point{
			Marker:  ps.groups[1],
			Content: strings.TrimSpace(ps.content),
		})
	}
	return intro, points
}

// displayLabel substitutes a readable name for the implicit chapter.
func displayLabel(label string) string {
	if label == "" {
		return "document"
	}
	return label
}
