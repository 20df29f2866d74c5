package text

import (
	"regexp"
	"strings"
)

var (
	multiSpaceRe   = regexp.MustCompile(`[ \t]+`)
	pageNumberRe   = regexp.MustCompile(`\n\s*\d+\s*\n`)
	boilerplateRe  = regexp.MustCompile(`\n[^a-zA-Z0-9]*BibleProject[^a-zA-Z0-9]*\n`)
	unsafeFileRe   = regexp.MustCompile(`[\\/*?:"<>|]`)
	collapseFileRe = regexp.MustCompile(`[_\s]+`)
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"ﬁ", "fi", "ﬂ", "fl",
	"\r\n", "\n",
)

// Clean normalizes raw extracted text before chunking: curly quotes and
// ligatures from PDF extraction, collapsed whitespace, bare page-number
// lines and the site footer line that repeats on every study-note page.
func Clean(text string) string {
	text = quoteReplacer.Replace(text)
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = pageNumberRe.ReplaceAllString(text, "\n")
	text = boilerplateRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// CleanFilename makes a string safe to use as a file name in the temp
// download directory.
func CleanFilename(name string) string {
	clean := unsafeFileRe.ReplaceAllString(name, "_")
	clean = collapseFileRe.ReplaceAllString(clean, "_")
	return strings.Trim(strings.Trim(clean, "_"), " ")
}
