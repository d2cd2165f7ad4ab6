package importer

import (
	"regexp"
	"strings"
)

var (
	// Entry start: @type{key, or @type(key,
	bibEntryStartRegex = regexp.MustCompile(`^@\s*(\w+)\s*[{(]\s*([^,\s]*)`)
	// Field start: name = (value follows)
	bibFieldStartRegex = regexp.MustCompile(`(?i)([a-z][\w:.-]*)\s*=\s*`)
)

// splitBibEntries cuts BibTeX text into one chunk per @-block. Text between
// blocks is dropped, as BibTeX itself ignores it. An "@" inside an entry body
// is replaced by atPlaceholder; an "@" that starts a line at the entry's top
// level begins a new entry even if the previous one never closed.
func splitBibEntries(text string) []string {
	var (
		chunks    []string
		cur       strings.Builder
		inEntry   bool
		opened    bool
		closer    rune
		depth     int
		lineStart bool
	)

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		inEntry, opened, depth = false, false, 0
	}
	start := func() {
		flush()
		inEntry = true
		cur.WriteRune('@')
	}

	for _, ch := range text {
		atLineStart := lineStart
		switch {
		case ch == '\n':
			lineStart = true
		case ch != ' ' && ch != '\t' && ch != '\r':
			lineStart = false
		}

		switch {
		case !inEntry:
			if ch == '@' {
				start()
			}
			continue

		case !opened:
			if ch == '@' {
				start()
				continue
			}
			cur.WriteRune(ch)
			switch ch {
			case '{':
				opened, closer, depth = true, '}', 1
			case '(':
				opened, closer, depth = true, ')', 0
			}
			continue
		}

		switch ch {
		case '@':
			if atLineStart && depth <= 1 {
				start()
				continue
			}
			cur.WriteRune(atPlaceholder)
			continue
		case '{':
			depth++
		case '}':
			depth--
		}
		cur.WriteRune(ch)

		if (closer == '}' && ch == '}' && depth == 0) || (closer == ')' && ch == ')' && depth == 0) {
			flush()
		}
	}
	flush()

	return chunks
}

// bibEntryHeader returns the entry type and cite key of a chunk.
func bibEntryHeader(chunk string) (kind, key string) {
	m := bibEntryStartRegex.FindStringSubmatch(chunk)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// scanBibFields extracts name = value pairs from an entry the parser
// rejected. Names are lowercased; the first occurrence of a name wins.
func scanBibFields(chunk string) map[string]string {
	fields := make(map[string]string)

	open := strings.IndexAny(chunk, "{(")
	if open < 0 {
		return fields
	}
	body := chunk[open+1:]

	pos := 0
	for pos < len(body) {
		loc := bibFieldStartRegex.FindStringSubmatchIndex(body[pos:])
		if loc == nil {
			break
		}
		name := strings.ToLower(body[pos+loc[2] : pos+loc[3]])
		value, end := readBibValue(body, pos+loc[1])
		if _, seen := fields[name]; !seen {
			fields[name] = value
		}
		pos = end
	}
	return fields
}

// readBibValue reads the value starting at s[i] and returns it with the
// index just past it. Braced and quoted values may nest braces; bare
// values end at a comma, closing delimiter or newline.
func readBibValue(s string, i int) (string, int) {
	if i >= len(s) {
		return "", len(s)
	}

	switch s[i] {
	case '{':
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[i+1 : j], j + 1
				}
			}
		}
		return s[i+1:], len(s)

	case '"':
		depth := 0
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '{':
				depth++
			case '}':
				depth--
			case '"':
				if depth == 0 {
					return s[i+1 : j], j + 1
				}
			}
		}
		return s[i+1:], len(s)
	}

	end := strings.IndexAny(s[i:], ",})\n")
	if end < 0 {
		return strings.TrimSpace(s[i:]), len(s)
	}
	return strings.TrimSpace(s[i : i+end]), i + end
}
