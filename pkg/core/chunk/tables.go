package chunk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tablePattern matches an entire <table>...</table> span, case-insensitive,
// across newlines. It is applied before any other block logic so a table's
// internal blank lines and headings never confuse the block scanner.
var tablePattern = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)

const (
	placeholderPrefix = "[[TABLE_BLOCK_"
	placeholderSuffix = "]]"
)

// extractTables replaces every <table>...</table> span in text with a
// unique placeholder token on its own line, returning the rewritten text
// and a map from placeholder token back to the original span (trimmed).
// A span is only extracted if goquery finds at least one <tr> inside it;
// a malformed or empty <table> tag is left as ordinary prose instead of
// being treated as an atomic chunk.
func extractTables(text string) (string, map[string]string) {
	tables := make(map[string]string)
	n := 0
	rewritten := tablePattern.ReplaceAllStringFunc(text, func(match string) string {
		if !hasTableRows(match) {
			return match
		}
		token := fmt.Sprintf("%s%d%s", placeholderPrefix, n, placeholderSuffix)
		tables[token] = strings.TrimSpace(match)
		n++
		return "\n" + token + "\n"
	})
	return rewritten, tables
}

// hasTableRows reports whether span parses as HTML containing at least
// one row, filtering out regex matches on a bare, content-free <table>
// tag.
func hasTableRows(span string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(span))
	if err != nil {
		return false
	}
	return doc.Find("tr").Length() > 0
}

// isTablePlaceholder reports whether a trimmed line is exactly one
// placeholder token emitted by extractTables.
func isTablePlaceholder(line string) bool {
	return strings.HasPrefix(line, placeholderPrefix) && strings.HasSuffix(line, placeholderSuffix)
}
