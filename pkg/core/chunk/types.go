// Package chunk turns a Markdown filing into an ordered sequence of
// retrievable, heading-aware chunks: headings form an inheritance stack,
// tables are preserved as atomic spans, and long prose is re-packed on
// sentence boundaries.
package chunk

// Byte caps for persisted chunk fields (compatibility-critical; never
// change without a new collection, see the vector store schema).
const (
	MaxChunkTextBytes = 8192
	MaxTitleBytes     = 512
	MaxChunkIDBytes   = 128
	MaxFilePathBytes  = 256
)

// Defaults mirror the ratio used by the ingestion pipeline this package
// replaces: a 600/200 split between pack size and minimum segment length.
const (
	DefaultMaxChars = 600
	DefaultMinChars = 200
)

// Type is the closed classification set a chunk is assigned on emission.
type Type string

const (
	TypeSummary              Type = "summary"
	TypeBusinessOverview     Type = "business_overview"
	TypeManagementDiscussion Type = "management_discussion"
	TypeFinancialAnalysis    Type = "financial_analysis"
	TypeCashflow             Type = "cashflow"
	TypeRisk                 Type = "risk"
	TypeGovernance           Type = "governance"
	TypeNotes                Type = "notes"
	TypeTable                Type = "table"
	TypeOther                Type = "other"
)

// Chunk is an atomic unit of retrievable text extracted from a filing,
// carrying its heading lineage and classification.
type Chunk struct {
	ChunkID      string `json:"chunk_id"`
	ReportID     string `json:"report_id"`
	CompanyName  string `json:"company_name"`
	CompanyCode  string `json:"company_code"`
	ReportPeriod string `json:"report_period"`
	Title        string `json:"title"`
	TitleLevel   int    `json:"title_level"`
	ChunkText    string `json:"chunk_text"`
	ChunkType    Type   `json:"chunk_type"`
	ChunkIndex   int    `json:"chunk_index"`
	PageNumber   int    `json:"page_number"`
	FilePath     string `json:"file_path"`
	CreatedAt    int64  `json:"created_at"`
}

// heading is one open entry in the title-inheritance stack.
type heading struct {
	level int
	title string
	line  string
}
