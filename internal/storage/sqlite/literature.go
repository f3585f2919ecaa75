package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
)

type LiteratureRepo struct {
	db *sql.DB
}

func NewLiteratureRepo(db *sql.DB) *LiteratureRepo {
	return &LiteratureRepo{db: db}
}

// SaveDocument stores a document and its chunks in one transaction.
// Chunk embeddings may be nil when ingestion runs without an embedding
// backend; such chunks are still reachable through keyword search.
func (r *LiteratureRepo) SaveDocument(ctx context.Context, doc core.LiteratureDocument, chunks []core.LiteratureChunk) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO literature (title, title_local, source, journal, year, url, slug) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Title, doc.TitleLocal, doc.Source, doc.Journal, doc.Year, doc.URL, doc.Slug,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	docID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, chunk := range chunks {
		cres, err := tx.ExecContext(ctx,
			`INSERT INTO literature_chunks (document_id, chunk_index, content) VALUES (?, ?, ?)`,
			docID, chunk.Index, chunk.Content,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert chunk: %w", err)
		}

		if len(chunk.Embedding) == 0 {
			continue
		}

		chunkID, err := cres.LastInsertId()
		if err != nil {
			return 0, err
		}
		vecBlob, err := serializeVector(chunk.Embedding)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO literature_vec (rowid, embedding) VALUES (?, ?)`,
			chunkID, vecBlob,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert chunk vector: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return docID, nil
}

// SearchVector performs nearest-neighbor search over chunk embeddings.
func (r *LiteratureRepo) SearchVector(ctx context.Context, vector []float32, limit int) ([]core.LiteratureHit, error) {
	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			d.id, d.title, d.title_local, d.source, d.journal, d.year, d.url, d.slug,
			c.content, v.distance
		FROM literature_vec v
		JOIN literature_chunks c ON c.id = v.rowid
		JOIN literature d ON d.id = c.document_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var hits []core.LiteratureHit
	for rows.Next() {
		var hit core.LiteratureHit
		var distance float64
		if err := rows.Scan(
			&hit.Document.ID, &hit.Document.Title, &hit.Document.TitleLocal,
			&hit.Document.Source, &hit.Document.Journal, &hit.Document.Year,
			&hit.Document.URL, &hit.Document.Slug,
			&hit.Content, &distance,
		); err != nil {
			return nil, err
		}
		hit.Similarity = distanceToSimilarity(distance)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// SearchKeyword is the FTS5 fallback used when no embedding backend is
// configured. Similarity is estimated from rank position.
func (r *LiteratureRepo) SearchKeyword(ctx context.Context, queryText string, limit int) ([]core.LiteratureHit, error) {
	match := ftsQuery(queryText)
	if match == "" {
		return nil, nil
	}

	query := `
		SELECT
			d.id, d.title, d.title_local, d.source, d.journal, d.year, d.url, d.slug,
			c.content
		FROM literature_fts f
		JOIN literature_chunks c ON c.id = f.rowid
		JOIN literature d ON d.id = c.document_id
		WHERE literature_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, match, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	defer rows.Close()

	var hits []core.LiteratureHit
	for rows.Next() {
		var hit core.LiteratureHit
		if err := rows.Scan(
			&hit.Document.ID, &hit.Document.Title, &hit.Document.TitleLocal,
			&hit.Document.Source, &hit.Document.Journal, &hit.Document.Year,
			&hit.Document.URL, &hit.Document.Slug,
			&hit.Content,
		); err != nil {
			return nil, err
		}
		hit.Similarity = 0.5 - 0.05*float64(len(hits))
		if hit.Similarity < 0.1 {
			hit.Similarity = 0.1
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// ftsQuery quotes each term so user input cannot inject FTS5 operators.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " OR ")
}
