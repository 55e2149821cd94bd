package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// dbtx is the subset of *pgxpool.Pool (or pgx.Tx) used by PostgresStore.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pinger is implemented by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// PostgresConfig names the table and search function of a Supabase-style
// pgvector schema.
type PostgresConfig struct {
	// Table receives inserted chunks (default: documents). It must have
	// content text, metadata jsonb and embedding vector columns.
	Table string

	// QueryName is the SQL function used for similarity search
	// (default: match_documents). It is called as fn(query_embedding, match_count)
	// and must return id, content, metadata and similarity ordered by
	// descending similarity.
	QueryName string
}

// PostgresStore implements VectorStore on Postgres with the pgvector
// extension. It does not own the connection pool.
type PostgresStore struct {
	// db executes statements against the pool.
	db dbtx

	// insertSQL is the prepared INSERT statement text for the configured table.
	insertSQL string

	// searchSQL is the SELECT over the configured match function.
	searchSQL string
}

// NewPostgresStore constructs a PostgresStore over db. Identifiers from cfg
// are quoted, so they may contain any characters valid in Postgres names.
func NewPostgresStore(db dbtx, cfg PostgresConfig) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres: db must not be nil")
	}
	if cfg.Table == "" {
		cfg.Table = "documents"
	}
	if cfg.QueryName == "" {
		cfg.QueryName = "match_documents"
	}

	table := pgx.Identifier{cfg.Table}.Sanitize()
	fn := pgx.Identifier{cfg.QueryName}.Sanitize()

	return &PostgresStore{
		db:        db,
		insertSQL: fmt.Sprintf(`INSERT INTO %s (content, metadata, embedding) VALUES ($1, $2, $3)`, table),
		searchSQL: fmt.Sprintf(`SELECT id, content, metadata, similarity FROM %s($1, $2)`, fn),
	}, nil
}

// Insert writes one chunk row. Metadata is stored as jsonb.
func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	meta := rec.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode metadata: %w: %w", ErrVectorStore, err)
	}

	if _, err := s.db.Exec(ctx, s.insertSQL, rec.Content, metaJSON, pgvector.NewVector(rec.Embedding)); err != nil {
		return fmt.Errorf("postgres: insert failed: %w: %w", ErrVectorStore, err)
	}
	return nil
}

// SimilaritySearch calls the configured match function and returns up to k rows.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, queryEmbedding []float32, k int) ([]Document, error) {
	rows, err := s.db.Query(ctx, s.searchSQL, pgvector.NewVector(queryEmbedding), k)
	if err != nil {
		return nil, fmt.Errorf("postgres: search failed: %w: %w", ErrVectorStore, err)
	}
	defer rows.Close()

	docs := make([]Document, 0, k)
	for rows.Next() {
		var (
			id         int64
			content    string
			metaJSON   []byte
			similarity float64
		)
		if err := rows.Scan(&id, &content, &metaJSON, &similarity); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan row: %w: %w", ErrVectorStore, err)
		}
		docs = append(docs, Document{
			ID:       strconv.FormatInt(id, 10),
			Content:  content,
			Metadata: decodeMetadata(metaJSON),
			Score:    float32(similarity),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: search failed: %w: %w", ErrVectorStore, err)
	}

	return docs, nil
}

// Ping checks connectivity when the underlying handle supports it.
func (s *PostgresStore) Ping(ctx context.Context) error {
	p, ok := s.db.(pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

// decodeMetadata flattens a jsonb object into string values. Non-string
// values are rendered as their JSON text.
func decodeMetadata(raw []byte) map[string]string {
	out := make(map[string]string)
	if len(raw) == 0 {
		return out
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return out
	}
	for k, v := range m {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case nil:
		default:
			b, _ := json.Marshal(tv)
			out[k] = string(b)
		}
	}
	return out
}
