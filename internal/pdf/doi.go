// Package pdf pulls identifying metadata out of article PDFs so they can be
// looked up by DOI.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ScanPages is how many leading pages are searched; the DOI is almost
// always on the first.
const ScanPages = 3

// DOI pattern: 10.XXXX/... where XXXX is 4-9 digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Info is what could be recovered from a PDF. Either field may be empty.
type Info struct {
	Path  string `json:"path"`
	DOI   string `json:"doi"`
	Title string `json:"title,omitempty"`
}

// Inspect opens the PDF at path and extracts its DOI and a best-effort title
// (the first substantial line of page 1). A PDF without a DOI is not an
// error.
func Inspect(path string) (Info, error) {
	info := Info{Path: path}

	f, r, err := pdf.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	pages := min(ScanPages, r.NumPage())
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if i == 1 {
			info.Title = findTitle(text)
		}
		if doi := findDOI(text); doi != "" {
			info.DOI = doi
			break
		}
	}

	return info, nil
}

// ExtractDOI returns the first DOI found in the leading pages of a PDF, or
// "" if there is none.
func ExtractDOI(path string) (string, error) {
	info, err := Inspect(path)
	return info.DOI, err
}

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		// Remove trailing punctuation
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	// Must have something after the /
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// findTitle returns the first line long enough to be a title that is not a
// running header.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) && findDOI(line) == "" {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"),
		strings.Contains(lower, "copyright"),
		strings.Contains(lower, "volume") && strings.Contains(lower, "issue"),
		strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	}
	return false
}
