package vectorstore

import (
	"fmt"
	"strings"
)

// Filter builds an equality-and-conjunction filter expression over the
// collection's scalar fields, in the native predicate language both
// MilvusStore and MemStore understand.
type Filter struct {
	clauses []string
}

func NewFilter() *Filter { return &Filter{} }

func (f *Filter) CompanyCode(v string) *Filter  { return f.eq(fieldCompanyCode, v) }
func (f *Filter) CompanyName(v string) *Filter  { return f.eq(fieldCompanyName, v) }
func (f *Filter) ReportPeriod(v string) *Filter { return f.eq(fieldReportPeriod, v) }
func (f *Filter) ChunkType(v string) *Filter    { return f.eq(fieldChunkType, v) }
func (f *Filter) ReportID(v string) *Filter     { return f.eq(fieldReportID, v) }

func (f *Filter) eq(field, value string) *Filter {
	if value == "" {
		return f
	}
	f.clauses = append(f.clauses, fmt.Sprintf("%s == \"%s\"", field, escapeExprLiteral(value)))
	return f
}

func (f *Filter) String() string {
	return strings.Join(f.clauses, " AND ")
}
