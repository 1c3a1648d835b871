package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/garnizeh/jobpulse/internal/db"
)

// Embedder turns text into a fixed-length vector. It is the boundary to the
// external embedding provider; the production implementation is pkg/ollama.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Collection is a named set of embedded documents persisted in SQLite.
// It offers the provider contract the index builds on: add raw text at
// insertion time, get nearest-neighbor candidates with document, metadata
// and a scalar distance at query time.
type Collection struct {
	conn     *db.DB
	embedder Embedder
	name     string
	logger   *slog.Logger
}

// Candidate is one nearest-neighbor result, ranked by distance ascending.
type Candidate struct {
	ID       string
	Document string
	Metadata map[string]any
	Distance float64
}

func NewCollection(conn *db.DB, embedder Embedder, name string, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{conn: conn, embedder: embedder, name: name, logger: logger}
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.conn.QueryRow(ctx, `SELECT COUNT(*) FROM vector_documents WHERE collection = ?`, c.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// IDs returns the set of document ids currently stored.
func (c *Collection) IDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := c.conn.QueryRows(ctx, `SELECT id FROM vector_documents WHERE collection = ?`, c.name)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// Add embeds and stores a batch of documents. ids, documents and metadatas
// must be parallel slices.
func (c *Collection) Add(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched batch lengths: %d ids, %d documents, %d metadatas", len(ids), len(documents), len(metadatas))
	}

	for i, id := range ids {
		vec, err := c.embedder.Embed(ctx, documents[i])
		if err != nil {
			return fmt.Errorf("embed document %s: %w", id, err)
		}

		metaJSON, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("marshal metadata %s: %w", id, err)
		}

		if _, err := c.conn.Exec(ctx, `INSERT OR REPLACE INTO vector_documents
			(id, collection, document, metadata, embedding, created)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, c.name, documents[i], string(metaJSON), encodeVector(vec), time.Now().UTC().UnixMilli()); err != nil {
			return fmt.Errorf("store document %s: %w", id, err)
		}
	}

	return nil
}

// GetDocument returns the stored document text for an id.
func (c *Collection) GetDocument(ctx context.Context, id string) (string, bool, error) {
	var doc string
	err := c.conn.QueryRow(ctx, `SELECT document FROM vector_documents WHERE collection = ? AND id = ?`, c.name, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc, true, nil
}

// Query embeds the text and returns up to n candidates matching the where
// filter, nearest first. The scan is brute force over the collection;
// acceptable for a file-backed, single-process index.
func (c *Collection) Query(ctx context.Context, text string, n int, where Where) ([]Candidate, error) {
	if n <= 0 {
		return nil, nil
	}

	queryVec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := c.conn.QueryRows(ctx, `SELECT id, document, metadata, embedding FROM vector_documents WHERE collection = ?`, c.name)
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var (
			id, doc, metaJSON string
			blob              []byte
		)
		if err := rows.Scan(&id, &doc, &metaJSON, &blob); err != nil {
			return nil, err
		}

		var meta map[string]any
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshal metadata %s: %w", id, err)
		}
		if !where.empty() && !where.matches(meta) {
			continue
		}

		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode vector %s: %w", id, err)
		}

		candidates = append(candidates, Candidate{
			ID:       id,
			Document: doc,
			Metadata: meta,
			Distance: cosineDistance(queryVec, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates, nil
}

// AllMetadata returns every stored metadata bag. O(total documents); meant
// for diagnostics only.
func (c *Collection) AllMetadata(ctx context.Context) ([]map[string]any, error) {
	rows, err := c.conn.QueryRows(ctx, `SELECT metadata FROM vector_documents WHERE collection = ?`, c.name)
	if err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var metaJSON string
		if err := rows.Scan(&metaJSON); err != nil {
			return nil, err
		}
		var meta map[string]any
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// DeleteAll removes every document in the collection.
func (c *Collection) DeleteAll(ctx context.Context) error {
	if _, err := c.conn.Exec(ctx, `DELETE FROM vector_documents WHERE collection = ?`, c.name); err != nil {
		return fmt.Errorf("delete collection %s: %w", c.name, err)
	}
	c.logger.Info("vector collection cleared", "collection", c.name)
	return nil
}
