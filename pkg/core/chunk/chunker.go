package chunk

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/earningscope/engine/pkg/core/ferr"
)

// Options controls chunk_file's two caller-supplied thresholds plus the
// keyword table used for classification.
type Options struct {
	MaxChars int
	MinChars int
	Rules    ClassificationRules
}

// Result is chunk_file's return value: the ordered chunks plus any
// non-fatal warnings raised while scanning (e.g. a missing fence close).
type Result struct {
	Chunks   []Chunk
	Warnings []string
}

func (o Options) withDefaults() Options {
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	if o.MinChars <= 0 {
		o.MinChars = DefaultMinChars
	}
	if o.Rules == nil {
		o.Rules = DefaultRules()
	}
	return o
}

// ChunkFile reads path and chunks its contents. Invalid UTF-8 fails fast
// with ferr.InvalidInput.
func ChunkFile(path string, opts Options, createdAt int64) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, ferr.New(ferr.NotFound, "chunk.ChunkFile", err)
	}
	return ChunkMarkdown(string(data), path, opts, createdAt)
}

// ChunkMarkdown is the pure core of chunk_file: equal bytes in, equal
// chunk sequence out, no filesystem access.
func ChunkMarkdown(text, filePath string, opts Options, createdAt int64) (Result, error) {
	if !utf8.ValidString(text) {
		return Result{}, ferr.New(ferr.InvalidInput, "chunk.ChunkMarkdown", nil)
	}
	opts = opts.withDefaults()

	safeText, tables := extractTables(text)
	scan := scanBlocks(safeText)

	b := &builder{
		opts:      opts,
		filePath:  truncateBytes(filePath, MaxFilePathBytes),
		createdAt: createdAt,
		tables:    tables,
		warnings:  scan.warnings,
	}
	for _, blk := range scan.blocks {
		b.handle(blk)
	}
	b.flush()

	if len(b.chunks) == 0 && len(b.stack) > 0 {
		b.emitHeadingOnly()
	}

	return Result{Chunks: b.chunks, Warnings: b.warnings}, nil
}

// builder accumulates blocks into chunks, carrying the heading stack and
// the packing buffer across blocks (a table or heading forces a flush;
// a blank line has already forced one during scanning).
type builder struct {
	opts      Options
	filePath  string
	createdAt int64
	tables    map[string]string
	warnings  []string

	stack []heading
	chunks []Chunk

	bufParts []string
	bufLen   int
}

func (b *builder) handle(blk block) {
	switch blk.kind {
	case blockHeading:
		b.flush()
		b.pushHeading(blk)
	case blockTablePlaceholder:
		b.flush()
		b.emitTable(blk)
	case blockCode:
		b.appendSegment(strings.Trim(blk.text, "\n"))
	default: // paragraph, list, quote
		for _, seg := range mergeShortSegments(segmentBody(blk.text, b.opts.MaxChars), b.opts.MinChars) {
			b.appendSegment(seg)
		}
	}
}

func (b *builder) pushHeading(blk block) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= blk.level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	b.stack = append(b.stack, heading{level: blk.level, title: blk.title, line: blk.text})
}

// appendSegment adds one already-packed segment to the running buffer,
// flushing first if it would overflow MaxChars or is itself oversized.
func (b *builder) appendSegment(seg string) {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return
	}
	segLen := utf8.RuneCountInString(seg)
	if segLen > b.opts.MaxChars {
		b.flush()
		b.bufParts = []string{seg}
		b.bufLen = segLen
		b.flush()
		return
	}
	if b.bufLen > 0 && b.bufLen+segLen+2 > b.opts.MaxChars {
		b.flush()
	}
	b.bufParts = append(b.bufParts, seg)
	b.bufLen += segLen + 2
}

func (b *builder) flush() {
	if len(b.bufParts) == 0 {
		return
	}
	body := strings.TrimSpace(strings.Join(b.bufParts, "\n\n"))
	b.bufParts = nil
	b.bufLen = 0
	if body == "" {
		return
	}
	b.emit(body, TypeOther, true)
}

func (b *builder) emitTable(blk block) {
	original, ok := b.tables[blk.text]
	if !ok {
		original = blk.text
	}
	text := truncateBytes(original, MaxChunkTextBytes)
	if len(text) < len(original) {
		b.warnings = append(b.warnings, "table chunk exceeded byte cap and was truncated")
	}
	b.emit(text, TypeTable, false)
}

// emit finalizes one chunk. When composeHeading is true the persisted
// text is the heading stack followed by the body; table chunks skip
// heading composition entirely.
func (b *builder) emit(body string, forcedType Type, composeHeading bool) {
	titlePath := make([]string, len(b.stack))
	headingLines := make([]string, len(b.stack))
	for i, h := range b.stack {
		titlePath[i] = h.title
		headingLines[i] = h.line
	}

	text := body
	isTable := forcedType == TypeTable
	if composeHeading && len(headingLines) > 0 {
		text = strings.Join(headingLines, "\n") + "\n\n" + body
	}
	text = truncateBytes(text, MaxChunkTextBytes)

	chunkType := Classify(b.opts.Rules, titlePath, text, isTable)

	title := ""
	level := 0
	if len(b.stack) > 0 {
		title = truncateBytes(b.stack[len(b.stack)-1].title, MaxTitleBytes)
		level = len(b.stack)
	}

	idx := len(b.chunks)
	b.chunks = append(b.chunks, Chunk{
		ChunkID:    truncateBytes(chunkIDFor(idx), MaxChunkIDBytes),
		Title:      title,
		TitleLevel: level,
		ChunkText:  text,
		ChunkType:  chunkType,
		ChunkIndex: idx,
		PageNumber: -1,
		FilePath:   b.filePath,
		CreatedAt:  b.createdAt,
	})
}

func (b *builder) emitHeadingOnly() {
	headingLines := make([]string, len(b.stack))
	titlePath := make([]string, len(b.stack))
	for i, h := range b.stack {
		headingLines[i] = h.line
		titlePath[i] = h.title
	}
	text := truncateBytes(strings.Join(headingLines, "\n"), MaxChunkTextBytes)
	b.chunks = append(b.chunks, Chunk{
		ChunkID:    chunkIDFor(0),
		Title:      truncateBytes(titlePath[len(titlePath)-1], MaxTitleBytes),
		TitleLevel: len(b.stack),
		ChunkText:  text,
		ChunkType:  TypeOther,
		ChunkIndex: 0,
		PageNumber: -1,
		FilePath:   b.filePath,
		CreatedAt:  b.createdAt,
	})
}

func chunkIDFor(index int) string {
	return "ck_" + strconv.Itoa(index)
}
