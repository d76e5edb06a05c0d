package vectorstore

import (
	"context"
	"fmt"
	"sort"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/earningscope/engine/pkg/core/chunk"
	"github.com/earningscope/engine/pkg/core/ferr"
	"github.com/earningscope/engine/pkg/core/logx"
)

const (
	fieldChunkID      = "chunk_id"
	fieldReportID     = "report_id"
	fieldCompanyName  = "company_name"
	fieldCompanyCode  = "company_code"
	fieldReportPeriod = "report_period"
	fieldTitle        = "title"
	fieldTitleLevel   = "title_level"
	fieldChunkText    = "chunk_text"
	fieldChunkType    = "chunk_type"
	fieldChunkIndex   = "chunk_index"
	fieldPageNumber   = "page_number"
	fieldFilePath     = "file_path"
	fieldCreatedAt    = "created_at"
	fieldEmbedding    = "embedding"
)

// MilvusStore implements Store over a live Milvus instance.
type MilvusStore struct {
	client     mclient.Client
	collection string
	dimension  int
}

// NewMilvusStore wraps an already-connected Milvus client. dimension is
// the deployment-level vector width; changing it requires a new
// collection.
func NewMilvusStore(c mclient.Client, dimension int) *MilvusStore {
	return &MilvusStore{client: c, collection: CollectionName, dimension: dimension}
}

func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return ferr.New(ferr.TransientUpstream, "vectorstore.EnsureCollection", err)
	}
	if !exists {
		schema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("earnings report chunks with their embeddings").
			WithField(entity.NewField().WithName(fieldChunkID).WithDataType(entity.FieldTypeVarChar).WithIsPrimaryKey(true).WithMaxLength(chunk.MaxChunkIDBytes)).
			WithField(entity.NewField().WithName(fieldReportID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(256)).
			WithField(entity.NewField().WithName(fieldCompanyName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(256)).
			WithField(entity.NewField().WithName(fieldCompanyCode).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(fieldReportPeriod).WithDataType(entity.FieldTypeVarChar).WithMaxLength(16)).
			WithField(entity.NewField().WithName(fieldTitle).WithDataType(entity.FieldTypeVarChar).WithMaxLength(chunk.MaxTitleBytes)).
			WithField(entity.NewField().WithName(fieldTitleLevel).WithDataType(entity.FieldTypeInt32)).
			WithField(entity.NewField().WithName(fieldChunkText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(chunk.MaxChunkTextBytes)).
			WithField(entity.NewField().WithName(fieldChunkType).WithDataType(entity.FieldTypeVarChar).WithMaxLength(32)).
			WithField(entity.NewField().WithName(fieldChunkIndex).WithDataType(entity.FieldTypeInt32)).
			WithField(entity.NewField().WithName(fieldPageNumber).WithDataType(entity.FieldTypeInt32)).
			WithField(entity.NewField().WithName(fieldFilePath).WithDataType(entity.FieldTypeVarChar).WithMaxLength(chunk.MaxFilePathBytes)).
			WithField(entity.NewField().WithName(fieldCreatedAt).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dimension)))

		if err := s.client.CreateCollection(ctx, schema, 2); err != nil {
			return ferr.New(ferr.TransientUpstream, "vectorstore.EnsureCollection", err)
		}
		logx.Infof("vectorstore", "created collection %s (dim=%d)", s.collection, s.dimension)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, IndexM, IndexEFConstruction)
	if err != nil {
		return ferr.New(ferr.Internal, "vectorstore.EnsureCollection", err)
	}
	if err := s.client.CreateIndex(ctx, s.collection, fieldEmbedding, idx, true); err != nil {
		return ferr.New(ferr.TransientUpstream, "vectorstore.EnsureCollection", err)
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return ferr.New(ferr.TransientUpstream, "vectorstore.EnsureCollection", err)
	}
	return nil
}

func (s *MilvusStore) Insert(ctx context.Context, chunks []chunk.Chunk, vectors [][]float64) error {
	if err := validateLengths(chunks, vectors); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	n := len(chunks)
	chunkIDs := make([]string, n)
	reportIDs := make([]string, n)
	companyNames := make([]string, n)
	companyCodes := make([]string, n)
	reportPeriods := make([]string, n)
	titles := make([]string, n)
	titleLevels := make([]int32, n)
	texts := make([]string, n)
	types := make([]string, n)
	indices := make([]int32, n)
	pages := make([]int32, n)
	filePaths := make([]string, n)
	createdAts := make([]int64, n)

	for i, c := range chunks {
		chunkIDs[i] = truncateBytes(c.ChunkID, chunk.MaxChunkIDBytes)
		reportIDs[i] = c.ReportID
		companyNames[i] = c.CompanyName
		companyCodes[i] = c.CompanyCode
		reportPeriods[i] = c.ReportPeriod
		titles[i] = truncateBytes(c.Title, chunk.MaxTitleBytes)
		titleLevels[i] = int32(c.TitleLevel)
		texts[i] = truncateBytes(c.ChunkText, chunk.MaxChunkTextBytes)
		types[i] = string(c.ChunkType)
		indices[i] = int32(c.ChunkIndex)
		pages[i] = int32(c.PageNumber)
		filePaths[i] = truncateBytes(c.FilePath, chunk.MaxFilePathBytes)
		createdAts[i] = c.CreatedAt
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldChunkID, chunkIDs),
		entity.NewColumnVarChar(fieldReportID, reportIDs),
		entity.NewColumnVarChar(fieldCompanyName, companyNames),
		entity.NewColumnVarChar(fieldCompanyCode, companyCodes),
		entity.NewColumnVarChar(fieldReportPeriod, reportPeriods),
		entity.NewColumnVarChar(fieldTitle, titles),
		entity.NewColumnInt32(fieldTitleLevel, titleLevels),
		entity.NewColumnVarChar(fieldChunkText, texts),
		entity.NewColumnVarChar(fieldChunkType, types),
		entity.NewColumnInt32(fieldChunkIndex, indices),
		entity.NewColumnInt32(fieldPageNumber, pages),
		entity.NewColumnVarChar(fieldFilePath, filePaths),
		entity.NewColumnInt64(fieldCreatedAt, createdAts),
		entity.NewColumnFloatVector(fieldEmbedding, s.dimension, toFloat32Matrix(vectors)),
	}

	if _, err := s.client.Insert(ctx, s.collection, "", columns...); err != nil {
		return ferr.New(ferr.TransientUpstream, "vectorstore.Insert", err)
	}
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return ferr.New(ferr.TransientUpstream, "vectorstore.Insert", err)
	}
	return nil
}

func (s *MilvusStore) Search(ctx context.Context, queryVector []float64, k int, filterExpr string) ([]Hit, error) {
	vectors := []entity.Vector{entity.FloatVector(toFloat32(queryVector))}
	sp, err := entity.NewIndexHNSWSearchParam(IndexEFConstruction)
	if err != nil {
		return nil, ferr.New(ferr.Internal, "vectorstore.Search", err)
	}

	outputFields := []string{
		fieldChunkID, fieldReportID, fieldCompanyName, fieldCompanyCode, fieldReportPeriod,
		fieldTitle, fieldTitleLevel, fieldChunkText, fieldChunkType, fieldChunkIndex,
		fieldPageNumber, fieldFilePath, fieldCreatedAt,
	}

	results, err := s.client.Search(ctx, s.collection, nil, filterExpr, outputFields, vectors, fieldEmbedding, entity.COSINE, k, sp)
	if err != nil {
		return nil, ferr.New(ferr.TransientUpstream, "vectorstore.Search", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	hits, err := decodeResultSet(results[0])
	if err != nil {
		return nil, err
	}

	// Results are ordered by descending cosine similarity by the index
	// itself; ties are broken by ascending chunk_index for determinism.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.ChunkIndex < hits[j].Record.ChunkIndex
	})
	return hits, nil
}

func (s *MilvusStore) DeleteReport(ctx context.Context, reportID string) error {
	expr := fmt.Sprintf("%s == \"%s\"", fieldReportID, escapeExprLiteral(reportID))
	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return ferr.New(ferr.TransientUpstream, "vectorstore.DeleteReport", err)
	}
	return nil
}

func escapeExprLiteral(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat32Matrix(m [][]float64) [][]float32 {
	out := make([][]float32, len(m))
	for i, row := range m {
		out[i] = toFloat32(row)
	}
	return out
}
