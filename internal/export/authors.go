package export

import (
	"fmt"
	"strings"
	"unicode"
)

// Author is one name split out of a record's free-form author string.
type Author struct {
	First string
	Last  string
}

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
}

// ParseAuthors splits a free-form author string into names.
//
// Recognized separators, in order of precedence:
//   - " and " (BibTeX): "LeCun, Yann and Bengio, Yoshua"
//   - ";" (IEEE Xplore): "K. He; X. Zhang"
//   - "," (Google Scholar): "Y LeCun, Y Bengio"
//
// Inside a BibTeX list a comma means "Last, First".
func ParseAuthors(s string) []Author {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var authors []Author
	switch {
	case strings.Contains(s, " and "):
		for _, name := range strings.Split(s, " and ") {
			if last, first, ok := strings.Cut(name, ","); ok {
				authors = appendAuthor(authors, strings.TrimSpace(first), strings.TrimSpace(last))
				continue
			}
			first, last := splitAuthorName(name)
			authors = appendAuthor(authors, first, last)
		}
	case strings.Contains(s, ";"):
		for _, name := range strings.Split(s, ";") {
			first, last := splitAuthorName(name)
			authors = appendAuthor(authors, first, last)
		}
	default:
		for _, name := range strings.Split(s, ",") {
			first, last := splitAuthorName(name)
			authors = appendAuthor(authors, first, last)
		}
	}
	return authors
}

func appendAuthor(authors []Author, first, last string) []Author {
	if last == "" {
		return authors
	}
	return append(authors, Author{First: first, Last: last})
}

// splitAuthorName splits a full name into first and last name.
//
// Known limitations:
// - Multi-part surnames (von Neumann, van der Waals) split incorrectly
// - Middle names are included in the first name
func splitAuthorName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	}

	// Keep a trailing suffix with the last name
	lastPart := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[lastPart] && len(parts) > 2 {
		last = parts[len(parts)-2] + " " + parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-2], " ")
		return first, last
	}

	last = parts[len(parts)-1]
	first = strings.Join(parts[:len(parts)-1], " ")
	return first, last
}

// CiteKey generates a citation key from the first author, year and title.
// Format: LastName + Year + suffix (e.g., "Zhang2018-vi"). A missing year
// becomes 9999.
func CiteKey(authors []Author, year *int, title string) string {
	lastName := "Unknown"
	if len(authors) > 0 {
		if s := sanitizeForCiteKey(authors[0].Last); s != "" {
			lastName = s
		}
	}

	y := 9999
	if year != nil {
		y = *year
	}

	return fmt.Sprintf("%s%d-%s", lastName, y, generateTitleSuffix(title))
}

// sanitizeForCiteKey removes non-alphanumeric characters.
func sanitizeForCiteKey(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

var stopWords = map[string]bool{"a": true, "an": true, "the": true, "of": true, "and": true, "in": true, "on": true, "for": true, "to": true, "with": true}

// generateTitleSuffix creates a 2-letter suffix from the title.
func generateTitleSuffix(title string) string {
	var suffix []rune
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if stopWords[word] {
			continue
		}
		r := []rune(word)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		suffix = append(suffix, r)
		if len(suffix) == 2 {
			break
		}
	}

	// Pad if needed
	for len(suffix) < 2 {
		suffix = append(suffix, 'x')
	}

	return string(suffix)
}

// uniqueKey returns base, or base-2, base-3, ... if base is already taken.
func uniqueKey(taken map[string]bool, base string) string {
	if !taken[base] {
		return base
	}
	// Start at 2: base is taken, so first duplicate becomes base-2
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
