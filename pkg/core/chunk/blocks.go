package chunk

import (
	"regexp"
	"strings"
)

// blockKind enumerates the block types the scanner recognizes, after the
// table pre-pass has replaced <table>...</table> spans with placeholders.
type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockList
	blockQuote
	blockCode
	blockTablePlaceholder
)

// block is one unit of the left-to-right scan, before segmentation.
type block struct {
	kind  blockKind
	text  string // joined source lines, not yet trimmed
	level int    // heading level, 1-6; zero otherwise
	title string // heading title text, heading blocks only
}

var (
	headingLineRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	listLineRe    = regexp.MustCompile(`^([*+-]\s+|\d+\.\s+)`)
	quoteLineRe   = regexp.MustCompile(`^>\s?`)
)

// scanResult carries the block stream plus any non-fatal warnings raised
// while scanning (e.g. an unterminated code fence).
type scanResult struct {
	blocks   []block
	warnings []string
}

// scanBlocks performs the single left-to-right pass described by the
// block parser: blank lines flush the current buffer, headings and table
// placeholders force an immediate flush, and a fenced-code region
// suppresses every other rule until its matching close fence.
func scanBlocks(text string) scanResult {
	var res scanResult
	var buf []string
	bufKind := blockParagraph
	haveBuf := false

	flush := func() {
		if haveBuf && len(buf) > 0 {
			res.blocks = append(res.blocks, block{kind: bufKind, text: strings.Join(buf, "\n")})
		}
		buf = nil
		haveBuf = false
	}

	inCode := false
	var fence string

	lines := strings.Split(text, "\n")
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		stripped := strings.TrimSpace(line)

		if inCode {
			buf = append(buf, line)
			if strings.HasPrefix(stripped, fence) {
				inCode = false
				res.blocks = append(res.blocks, block{kind: blockCode, text: strings.Join(buf, "\n")})
				buf = nil
				haveBuf = false
			}
			continue
		}

		if strings.HasPrefix(stripped, "```") || strings.HasPrefix(stripped, "~~~") {
			flush()
			inCode = true
			fence = stripped[:3]
			buf = []string{line}
			haveBuf = true
			continue
		}

		if stripped == "" {
			flush()
			continue
		}

		if m := headingLineRe.FindStringSubmatch(stripped); m != nil {
			flush()
			res.blocks = append(res.blocks, block{
				kind:  blockHeading,
				text:  stripped,
				level: len(m[1]),
				title: strings.TrimSpace(m[2]),
			})
			continue
		}

		if isTablePlaceholder(stripped) {
			flush()
			res.blocks = append(res.blocks, block{kind: blockTablePlaceholder, text: stripped})
			continue
		}

		if listLineRe.MatchString(stripped) {
			if haveBuf && bufKind != blockList {
				flush()
			}
			bufKind = blockList
			haveBuf = true
			buf = append(buf, line)
			continue
		}

		if quoteLineRe.MatchString(stripped) {
			if haveBuf && bufKind != blockQuote {
				flush()
			}
			bufKind = blockQuote
			haveBuf = true
			buf = append(buf, line)
			continue
		}

		if haveBuf && bufKind != blockParagraph {
			flush()
		}
		bufKind = blockParagraph
		haveBuf = true
		buf = append(buf, line)
	}

	if inCode {
		res.warnings = append(res.warnings, "unterminated fenced code block, treated as paragraph")
		res.blocks = append(res.blocks, block{kind: blockParagraph, text: strings.Join(buf, "\n")})
	} else {
		flush()
	}

	return res
}
