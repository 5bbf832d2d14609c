package segmenter

import "regexp"

// MarkerSet carries the compiled header patterns for one legal-drafting
// convention. The structural algorithm is language-independent; the marker
// grammar is the pluggable, language-specific parameter.
//
// All header patterns are line-anchored and require the level keyword, so
// numerals embedded in dates or cross-references ("pursuant to Article 5")
// are never mistaken for structural headers.
type MarkerSet struct {
	// Chapter matches a chapter header line. Group 1 is the numeral
	// (roman or arabic), group 2 any trailing title text.
	Chapter *regexp.Regexp

	// Article matches an article header line. Group 1 is the article
	// number, group 2 any inline title text.
	Article *regexp.Regexp

	// Clause matches a clause marker at the start of a line: an integer
	// followed by "." or ")" and at least one space. Group 1 is the number.
	Clause *regexp.Regexp

	// Point matches a point marker at the start of a line: a single
	// lowercase letter (including the language's extended alphabet)
	// followed by "." or ")" and at least one space. Group 1 is the letter.
	Point *regexp.Regexp

	// ChapterWord, ArticleWord, ClauseWord, and PointWord format a unit
	// label for metadata and context injection (e.g. "Article %s").
	ChapterWord string
	ArticleWord string
	ClauseWord  string
	PointWord   string
}

// English returns the marker set for English-drafted statutes.
// Recognizes word-form chapter numerals ("Chapter I", "Chapter 3") and
// numbered articles ("Article 13." / "Article 13:").
func English() MarkerSet {
	return MarkerSet{
		Chapter:     regexp.MustCompile(`(?mi)^[ \t]*chapter[ \t]+([IVXLCDM]+|\d+)\b[ \t]*[.:–-]?[ \t]*(.*)$`),
		Article:     regexp.MustCompile(`(?mi)^[ \t]*article[ \t]+(\d+)[ \t]*[.:]?[ \t]*(.*)$`),
		Clause:      regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[.)][ \t]+`),
		Point:       regexp.MustCompile(`(?m)^[ \t]*([a-z])[.)][ \t]+`),
		ChapterWord: "Chapter %s",
		ArticleWord: "Article %s",
		ClauseWord:  "Clause %s",
		PointWord:   "Point %s",
	}
}

// Vietnamese returns the marker set for Vietnamese-drafted statutes
// ("Chương I", "Điều 13."). The point pattern includes "đ", which follows
// "d" in the Vietnamese alphabet and appears in point lists.
func Vietnamese() MarkerSet {
	return MarkerSet{
		Chapter:     regexp.MustCompile(`(?mi)^[ \t]*chương[ \t]+([IVXLCDM]+|\d+)\b[ \t]*[.:–-]?[ \t]*(.*)$`),
		Article:     regexp.MustCompile(`(?mi)^[ \t]*điều[ \t]+(\d+)[ \t]*[.:]?[ \t]*(.*)$`),
		Clause:      regexp.MustCompile(`(?m)^[ \t]*(\d{1,3})[.)][ \t]+`),
		Point:       regexp.MustCompile(`(?m)^[ \t]*([a-zđ])[.)][ \t]+`),
		ChapterWord: "Chương %s",
		ArticleWord: "Điều %s",
		ClauseWord:  "Khoản %s",
		PointWord:   "Điểm %s",
	}
}

// ByName returns the marker set for a configured language name.
// Unknown names fall back to English.
func ByName(name string) MarkerSet {
	switch name {
	case "vi", "vietnamese":
		return Vietnamese()
	default:
		return English()
	}
}
