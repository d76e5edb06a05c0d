package vectorstore

import (
	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/ferr"
)

// decodeResultSet converts one Milvus SearchResult (columnar output
// fields + per-row scores) into row-oriented Hits.
func decodeResultSet(res mclient.SearchResult) ([]Hit, error) {
	n := res.ResultCount
	hits := make([]Hit, n)

	strCol := func(name string) []string {
		for _, f := range res.Fields {
			if f.Name() == name {
				if c, ok := f.(*entity.ColumnVarChar); ok {
					return c.Data()
				}
			}
		}
		return nil
	}
	int32Col := func(name string) []int32 {
		for _, f := range res.Fields {
			if f.Name() == name {
				if c, ok := f.(*entity.ColumnInt32); ok {
					return c.Data()
				}
			}
		}
		return nil
	}
	int64Col := func(name string) []int64 {
		for _, f := range res.Fields {
			if f.Name() == name {
				if c, ok := f.(*entity.ColumnInt64); ok {
					return c.Data()
				}
			}
		}
		return nil
	}

	chunkIDs := strCol(fieldChunkID)
	reportIDs := strCol(fieldReportID)
	companyNames := strCol(fieldCompanyName)
	companyCodes := strCol(fieldCompanyCode)
	reportPeriods := strCol(fieldReportPeriod)
	titles := strCol(fieldTitle)
	titleLevels := int32Col(fieldTitleLevel)
	texts := strCol(fieldChunkText)
	types := strCol(fieldChunkType)
	indices := int32Col(fieldChunkIndex)
	pages := int32Col(fieldPageNumber)
	filePaths := strCol(fieldFilePath)
	createdAts := int64Col(fieldCreatedAt)

	if len(chunkIDs) != n || len(texts) != n {
		return nil, ferr.New(ferr.PermanentUpstream, "vectorstore.decodeResultSet", nil)
	}

	for i := 0; i < n; i++ {
		c := chunk.Chunk{
			ChunkID:      at(chunkIDs, i),
			ReportID:     at(reportIDs, i),
			CompanyName:  at(companyNames, i),
			CompanyCode:  at(companyCodes, i),
			ReportPeriod: at(reportPeriods, i),
			Title:        at(titles, i),
			ChunkText:    at(texts, i),
			ChunkType:    chunk.Type(at(types, i)),
			FilePath:     at(filePaths, i),
		}
		if titleLevels != nil {
			c.TitleLevel = int(titleLevels[i])
		}
		if indices != nil {
			c.ChunkIndex = int(indices[i])
		}
		if pages != nil {
			c.PageNumber = int(pages[i])
		}
		if createdAts != nil {
			c.CreatedAt = createdAts[i]
		}
		score := float64(0)
		if i < len(res.Scores) {
			score = float64(res.Scores[i])
		}
		hits[i] = Hit{Record: c, Score: score}
	}
	return hits, nil
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
