package domain

// UnitKind identifies a node in the structural parse tree.
type UnitKind string

// Structural unit kinds, from outermost to innermost.
const (
	UnitPreamble UnitKind = "preamble"
	UnitChapter  UnitKind = "chapter"
	UnitArticle  UnitKind = "article"
	UnitClause   UnitKind = "clause"
	UnitPoint    UnitKind = "point"
)

// Chapter is a chapter-level span of a statute.
// A document with no chapter markers produces a single implicit chapter
// with an empty label.
type Chapter struct {
	// Label is the chapter heading as matched (e.g. "Chapter I"), or empty
	// for the implicit chapter.
	Label string

	// Preamble is any text preceding the first article within this chapter.
	// Preserved rather than discarded: losing a statute's introductory
	// clauses is a correctness bug.
	Preamble string

	// Articles are the ordered article spans within this chapter.
	Articles []Article
}

// Article is an article-level span within a chapter.
type Article struct {
	// Label is the article heading as matched (e.g. "Article 13").
	Label string

	// Ordinal is the article number parsed from the label, or 0 when the
	// article is implicit (no article markers in the chapter).
	Ordinal int

	// Title is the article's title, when one follows the header. Optional.
	Title string

	// Content is everything from just after the header to just before the
	// next header at the same or higher level.
	Content string

	// Preamble marks an implicit article synthesized to hold text that
	// precedes the first recognized article.
	Preamble bool
}

// Clause is a numbered clause within an article ("1.", "2)").
type Clause struct {
	// Marker is the clause number as matched (e.g. "1").
	Marker string

	// Content is the clause body. Any introductory sentence preceding the
	// first point stays part of the body; SplitPoints separates it.
	Content string
}

// Point is a lettered point within a clause ("a)", "đ)").
type Point struct {
	// Marker is the point letter as matched (e.g. "a").
	Marker string

	// Content is the point body.
	Content string
}
