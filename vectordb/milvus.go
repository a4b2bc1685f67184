package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/config"
	"github.com/ShamanBV/shaman-assistant/schema"
)

const (
	fieldID        = "id"
	fieldContent   = "content"
	fieldMetadata  = "metadata"
	fieldVector    = "vector"
	fieldCreatedAt = "created_at"

	defaultContentMaxLength = 8192
	hnswM                   = 16
	hnswEfConstruction      = 200
	hnswEfSearch            = 64
)

// MilvusProvider stores documents in milvus collections, one collection per
// knowledge source. Vectors are indexed with HNSW under the COSINE metric,
// so search scores are cosine similarities.
type MilvusProvider struct {
	client           client.Client
	dim              int
	contentMaxLength int

	mu      sync.Mutex
	ensured map[string]bool
}

// NewMilvusProvider connects to milvus and returns a provider for vectors
// of the given dimension.
func NewMilvusProvider(cfg *config.VectorDBConfig, dim int) (*MilvusProvider, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("milvus provider requires host")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("milvus provider requires a positive vector dimension, got %d", dim)
	}
	port := cfg.Port
	if port == 0 {
		port = 19530
	}

	c, err := client.NewClient(context.Background(), client.Config{
		Address:  fmt.Sprintf("%s:%d", cfg.Host, port),
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("create milvus client failed, err: %w", err)
	}

	maxLen := cfg.ContentMaxLength
	if maxLen <= 0 {
		maxLen = defaultContentMaxLength
	}

	logger.Infof("milvus client connected, address: %s:%d, database: %s", cfg.Host, port, cfg.Database)

	return &MilvusProvider{
		client:           c,
		dim:              dim,
		contentMaxLength: maxLen,
		ensured:          make(map[string]bool),
	}, nil
}

// EnsureCollection creates, indexes and loads the collection if missing.
func (p *MilvusProvider) EnsureCollection(ctx context.Context, collection string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ensured[collection] {
		return nil
	}

	has, err := p.client.HasCollection(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection %s failed, err: %w", collection, err)
	}

	if !has {
		collSchema := &entity.Schema{
			CollectionName: collection,
			Description:    "knowledge base documents",
			Fields: []*entity.Field{
				{
					Name:       fieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{
						"max_length": "64",
					},
				},
				{
					Name:     fieldContent,
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": strconv.Itoa(p.contentMaxLength),
					},
				},
				{
					Name:     fieldMetadata,
					DataType: entity.FieldTypeJSON,
				},
				{
					Name:     fieldCreatedAt,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:     fieldVector,
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": strconv.Itoa(p.dim),
					},
				},
			},
		}

		if err := p.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection %s failed, err: %w", collection, err)
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEfConstruction)
		if err != nil {
			return fmt.Errorf("build hnsw index failed, err: %w", err)
		}
		if err := p.client.CreateIndex(ctx, collection, fieldVector, idx, false); err != nil {
			return fmt.Errorf("create index on %s failed, err: %w", collection, err)
		}
		logger.Infof("milvus collection created, collection: %s, dim: %d", collection, p.dim)
	}

	if err := p.client.LoadCollection(ctx, collection, false); err != nil {
		return fmt.Errorf("load collection %s failed, err: %w", collection, err)
	}

	p.ensured[collection] = true
	return nil
}

// AddDocs upserts documents into the collection.
func (p *MilvusProvider) AddDocs(ctx context.Context, collection string, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := p.EnsureCollection(ctx, collection); err != nil {
		return err
	}

	ids := make([]string, len(docs))
	contents := make([]string, len(docs))
	metadatas := make([][]byte, len(docs))
	createdAts := make([]int64, len(docs))
	vectors := make([][]float32, len(docs))

	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document id is required")
		}
		if len(doc.Vector) != p.dim {
			return fmt.Errorf("document %s vector dimension %d does not match %d", doc.ID, len(doc.Vector), p.dim)
		}
		meta, err := json.Marshal(metadataOrEmpty(doc.Metadata))
		if err != nil {
			return fmt.Errorf("marshal metadata for %s failed, err: %w", doc.ID, err)
		}
		ids[i] = doc.ID
		contents[i] = truncateRunes(doc.Content, p.contentMaxLength)
		metadatas[i] = meta
		createdAts[i] = docCreatedAt(doc)
		vectors[i] = doc.Vector
	}

	_, err := p.client.Upsert(ctx, collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnJSONBytes(fieldMetadata, metadatas),
		entity.NewColumnInt64(fieldCreatedAt, createdAts),
		entity.NewColumnFloatVector(fieldVector, p.dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("upsert %d docs into %s failed, err: %w", len(docs), collection, err)
	}

	if err := p.client.Flush(ctx, collection, false); err != nil {
		return fmt.Errorf("flush collection %s failed, err: %w", collection, err)
	}
	return nil
}

// GetDocs returns the documents with the given ids, skipping unknown ids.
func (p *MilvusProvider) GetDocs(ctx context.Context, collection string, ids []string) ([]schema.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	has, err := p.client.HasCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("check collection %s failed, err: %w", collection, err)
	}
	if !has {
		return nil, nil
	}

	rs, err := p.client.Query(ctx, collection, nil, idInExpr(ids),
		[]string{fieldID, fieldContent, fieldMetadata, fieldCreatedAt})
	if err != nil {
		return nil, fmt.Errorf("query docs from %s failed, err: %w", collection, err)
	}
	return docsFromResultSet(rs)
}

// SearchDocs returns the nearest documents to the query vector.
func (p *MilvusProvider) SearchDocs(ctx context.Context, collection string, vector []float32, options schema.SearchOptions) ([]schema.SearchResult, error) {
	if len(vector) != p.dim {
		return nil, fmt.Errorf("query vector dimension %d does not match %d", len(vector), p.dim)
	}
	topK := options.TopK
	if topK <= 0 {
		topK = 10
	}

	sp, err := entity.NewIndexHNSWSearchParam(hnswEfSearch)
	if err != nil {
		return nil, fmt.Errorf("build search param failed, err: %w", err)
	}

	searchResults, err := p.client.Search(ctx, collection, []string{}, "",
		[]string{fieldID, fieldContent, fieldMetadata, fieldCreatedAt},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldVector, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search collection %s failed, err: %w", collection, err)
	}

	results := make([]schema.SearchResult, 0, topK)
	for _, sr := range searchResults {
		idCol := sr.Fields.GetColumn(fieldID)
		contentCol := sr.Fields.GetColumn(fieldContent)
		metaCol := sr.Fields.GetColumn(fieldMetadata)
		createdCol := sr.Fields.GetColumn(fieldCreatedAt)
		if idCol == nil || contentCol == nil {
			continue
		}
		for i := 0; i < sr.ResultCount; i++ {
			score := float64(sr.Scores[i])
			if score < options.Threshold {
				continue
			}

			id, err := idCol.GetAsString(i)
			if err != nil {
				return nil, fmt.Errorf("read id column failed, err: %w", err)
			}
			content, err := contentCol.GetAsString(i)
			if err != nil {
				return nil, fmt.Errorf("read content column failed, err: %w", err)
			}

			doc := schema.Document{
				ID:       id,
				Content:  content,
				Metadata: decodeMetadataColumn(metaCol, i),
			}
			if createdCol != nil {
				if ts, err := createdCol.GetAsInt64(i); err == nil && ts > 0 {
					doc.CreatedAt = time.Unix(ts, 0).UTC()
				}
			}
			results = append(results, schema.SearchResult{
				Document:  doc,
				Relevance: score,
			})
		}
	}
	return results, nil
}

// ListDocs returns up to limit documents.
func (p *MilvusProvider) ListDocs(ctx context.Context, collection string, limit int) ([]schema.Document, error) {
	has, err := p.client.HasCollection(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("check collection %s failed, err: %w", collection, err)
	}
	if !has {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	rs, err := p.client.Query(ctx, collection, nil, fmt.Sprintf(`%s != ""`, fieldID),
		[]string{fieldID, fieldContent, fieldMetadata, fieldCreatedAt},
		client.WithLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("list docs from %s failed, err: %w", collection, err)
	}
	return docsFromResultSet(rs)
}

// DeleteDocs removes documents by id.
func (p *MilvusProvider) DeleteDocs(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.client.Delete(ctx, collection, "", idInExpr(ids)); err != nil {
		return fmt.Errorf("delete %d docs from %s failed, err: %w", len(ids), collection, err)
	}
	return nil
}

// Count returns the number of documents, 0 for a missing collection.
func (p *MilvusProvider) Count(ctx context.Context, collection string) (int64, error) {
	has, err := p.client.HasCollection(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("check collection %s failed, err: %w", collection, err)
	}
	if !has {
		return 0, nil
	}

	stats, err := p.client.GetCollectionStatistics(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("get statistics for %s failed, err: %w", collection, err)
	}
	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse row_count for %s failed, err: %w", collection, err)
	}
	return count, nil
}

// Close releases the milvus connection.
func (p *MilvusProvider) Close() error {
	return p.client.Close()
}

func idInExpr(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return fmt.Sprintf("%s in [%s]", fieldID, strings.Join(quoted, ", "))
}

func docsFromResultSet(rs client.ResultSet) ([]schema.Document, error) {
	idCol := rs.GetColumn(fieldID)
	if idCol == nil {
		return nil, nil
	}
	contentCol := rs.GetColumn(fieldContent)
	metaCol := rs.GetColumn(fieldMetadata)
	createdCol := rs.GetColumn(fieldCreatedAt)

	docs := make([]schema.Document, 0, idCol.Len())
	for i := 0; i < idCol.Len(); i++ {
		id, err := idCol.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("read id column failed, err: %w", err)
		}
		doc := schema.Document{ID: id}
		if contentCol != nil {
			if content, err := contentCol.GetAsString(i); err == nil {
				doc.Content = content
			}
		}
		doc.Metadata = decodeMetadataColumn(metaCol, i)
		if createdCol != nil {
			if ts, err := createdCol.GetAsInt64(i); err == nil && ts > 0 {
				doc.CreatedAt = time.Unix(ts, 0).UTC()
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeMetadataColumn(col entity.Column, idx int) map[string]any {
	if col == nil {
		return nil
	}
	raw, err := col.Get(idx)
	if err != nil {
		return nil
	}
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return meta
}

func metadataOrEmpty(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}

func docCreatedAt(doc schema.Document) int64 {
	if doc.CreatedAt.IsZero() {
		return time.Now().Unix()
	}
	return doc.CreatedAt.Unix()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
